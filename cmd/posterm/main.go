// Command posterm is a till client for the POS API. The cart and session
// live in local storage between invocations:
//
//	posterm login -user cashier -password ...
//	posterm products
//	posterm add <productId>
//	posterm qty <productId> <n>
//	posterm checkout [Cash|Credit]
//	posterm watch
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"apexpos/backend/internal/cart"
	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/logging"
	"apexpos/backend/internal/realtime"
	"apexpos/backend/internal/terminal"
)

var printer = message.NewPrinter(language.English)

func main() {
	server := flag.String("server", getEnv("POSTERM_SERVER", "http://localhost:5000"), "POS API base url")
	stateDir := flag.String("state", getEnv("POSTERM_STATE_DIR", defaultStateDir()), "directory for the saved cart and session")
	redisAddr := flag.String("redis", os.Getenv("REDIS_ADDR"), "keep terminal state in redis instead of a file")
	user := flag.String("user", getEnv("POSTERM_USER", "cashier"), "login username")
	password := flag.String("password", os.Getenv("POSTERM_PASSWORD"), "login password")
	flag.Parse()

	logger, _ := logging.New(logging.Options{Level: getEnv("LOG_LEVEL", "warn"), Mode: "development"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, closeStorage, err := openStorage(ctx, *stateDir, *redisAddr)
	if err != nil {
		logger.Fatal().Err(err).Msg("terminal storage unavailable")
	}
	defer closeStorage()

	client, err := terminal.New(ctx, *server, storage, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("restore terminal state")
	}

	args := flag.Args()
	if len(args) == 0 {
		args = []string{"cart"}
	}
	if err := run(ctx, client, os.Stdout, args, *user, *password); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *terminal.Client, out io.Writer, args []string, user, password string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		resp, err := client.Login(ctx, user, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "logged in as %s (%s), session until %s\n", resp.User.Name, resp.User.Role, resp.ExpiresAt)
	case "logout":
		return client.Logout(ctx)
	case "products":
		products, err := client.Products(ctx)
		if err != nil {
			return err
		}
		printProducts(out, products)
	case "add":
		if len(rest) != 1 {
			return errors.New("usage: add <productId>")
		}
		if _, err := client.Products(ctx); err != nil {
			return err
		}
		if err := client.AddToCart(ctx, rest[0]); err != nil {
			return err
		}
		printCart(out, client.Cart())
	case "qty":
		if len(rest) != 2 {
			return errors.New("usage: qty <productId> <quantity>")
		}
		qty, err := cast.ToIntE(rest[1])
		if err != nil {
			return errors.Wrap(err, "quantity")
		}
		client.Cart().UpdateQuantity(rest[0], qty)
		if err := client.Persist(ctx); err != nil {
			return err
		}
		printCart(out, client.Cart())
	case "remove":
		if len(rest) != 1 {
			return errors.New("usage: remove <productId>")
		}
		client.Cart().Remove(rest[0])
		if err := client.Persist(ctx); err != nil {
			return err
		}
		printCart(out, client.Cart())
	case "discount":
		if len(rest) != 1 {
			return errors.New("usage: discount <amount>")
		}
		amount, err := cast.ToFloat64E(rest[0])
		if err != nil {
			return errors.Wrap(err, "discount")
		}
		client.Cart().SetDiscount(amount)
		if err := client.Persist(ctx); err != nil {
			return err
		}
		printCart(out, client.Cart())
	case "clear":
		client.Cart().Clear()
		return client.Persist(ctx)
	case "cart":
		printCart(out, client.Cart())
	case "checkout":
		method := domain.PaymentMethodCash
		if len(rest) > 0 {
			method = rest[0]
		}
		sale, err := client.Checkout(ctx, method)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "sale %s recorded: %s (%s)\n", sale.ID, money(decimal.NewFromFloat(sale.TotalAmount)), sale.PaymentMethod)
	case "stats":
		stats, err := client.DashboardStats(ctx)
		if err != nil {
			return err
		}
		printStats(out, stats)
	case "watch":
		fmt.Fprintln(out, "watching for dashboard updates, ctrl-c to stop")
		err := client.Watch(ctx, func(msg realtime.Message) {
			if msg.Event != realtime.TopicDashboardUpdate {
				return
			}
			stats, err := client.DashboardStats(ctx)
			if err != nil {
				fmt.Fprintln(out, "refresh failed:", err)
				return
			}
			fmt.Fprintf(out, "[%s] ", time.Now().Format(time.TimeOnly))
			printStats(out, stats)
		})
		if ctx.Err() != nil {
			return nil
		}
		return err
	default:
		return errors.Errorf("unknown command %q", cmd)
	}
	return nil
}

func openStorage(ctx context.Context, dir, redisAddr string) (cart.Storage, func(), error) {
	if redisAddr != "" {
		rs := cart.NewRedisStorage(redisAddr, os.Getenv("REDIS_PASSWORD"), cast.ToInt(os.Getenv("REDIS_DB")), 0)
		if err := rs.Ping(ctx); err != nil {
			rs.Close()
			return nil, nil, err
		}
		return rs, func() { _ = rs.Close() }, nil
	}
	fs, err := cart.NewFileStorage(dir)
	if err != nil {
		return nil, nil, err
	}
	return fs, func() {}, nil
}

func printProducts(out io.Writer, products []domain.Product) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Category, money(decimal.NewFromFloat(p.Price)), p.Stock)
	}
	_ = w.Flush()
}

func printCart(out io.Writer, c *cart.Cart) {
	if c.Empty() {
		fmt.Fprintln(out, "cart is empty")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tQTY\tPRICE")
	for _, line := range c.Items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", line.ProductID, line.Name, line.Quantity, money(decimal.NewFromFloat(line.Price)))
	}
	fmt.Fprintf(w, "\t\tsubtotal\t%s\n", money(c.Subtotal()))
	if c.Discount != 0 {
		fmt.Fprintf(w, "\t\tdiscount\t%s\n", money(decimal.NewFromFloat(c.Discount)))
	}
	fmt.Fprintf(w, "\t\ttotal\t%s\n", money(c.Total()))
	_ = w.Flush()
}

func printStats(out io.Writer, s domain.DashboardStats) {
	fmt.Fprintf(out, "today %s | week %s | month %s | low stock %d | pending repairs %d | active deliveries %d\n",
		money(decimal.NewFromFloat(s.DailySales)),
		money(decimal.NewFromFloat(s.WeeklySales)),
		money(decimal.NewFromFloat(s.MonthlySales)),
		s.LowStock, s.PendingRepairs, s.ActiveDeliveries)
}

func money(d decimal.Decimal) string {
	return printer.Sprintf("%v", number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(2), number.MinFractionDigits(2)))
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "apexpos")
	}
	return ".apexpos"
}

func getEnv(key string, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
