package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"apexpos/backend/internal/config"
	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/httpapi"
	"apexpos/backend/internal/logging"
	"apexpos/backend/internal/realtime"
	"apexpos/backend/internal/service"
	"apexpos/backend/internal/stock"
	"apexpos/backend/internal/store"
	"apexpos/backend/internal/store/memory"
	mongostore "apexpos/backend/internal/store/mongo"
	pgstore "apexpos/backend/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	logger, logFile := logging.New(logging.Options{Level: cfg.LogLevel, Mode: cfg.LogMode, File: cfg.LogFile})
	defer logFile.Close()

	if err := validateSecurityConfig(cfg); err != nil {
		logger.Fatal().Err(err).Msg("invalid security configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, closers := openRepository(ctx, cfg, logger)

	adjuster, err := stock.New(repo, cfg.StockWorkers, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("stock adjuster unavailable")
	}
	retry, err := stock.NewScheduler(adjuster, cfg.StockRetrySchedule, cfg.Location(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid STOCK_RETRY_SCHEDULE")
	}
	retry.Start()

	hub := realtime.NewHub(cfg.AllowedOrigin, logger)
	svc := service.New(repo, adjuster, hub, service.Options{
		StockPolicy:             cfg.StockPolicy,
		Location:                cfg.Location(),
		Currency:                cfg.Currency,
		LowStockReportThreshold: cfg.LowStockReportThreshold,
		Logger:                  logger,
	})
	auth, err := httpapi.NewAuthManager(cfg.AuthSecret, cfg.AccessTokenTTL(),
		httpapi.Credential{Username: cfg.AdminUsername, Password: cfg.AdminPassword, Role: domain.RoleAdmin},
		httpapi.Credential{Username: cfg.CashierUsername, Password: cfg.CashierPassword, Role: domain.RoleCashier},
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("auth manager unavailable")
	}
	api := httpapi.New(svc, auth, hub, cfg.AllowedOrigin, logger)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", cfg.Address()).
			Str("stock_policy", cfg.StockPolicy).
			Msg("POS backend listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	retry.Stop(shutdownCtx)
	adjuster.Close()
	hub.Close()

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Error().Err(err).Msg("close error")
		}
	}

	logger.Info().Msg("server stopped")
}

// openRepository picks mongo, then postgres, then the seeded memory store.
// A configured backend that cannot be reached stops the process rather than
// silently falling back to memory.
func openRepository(ctx context.Context, cfg config.Config, logger zerolog.Logger) (store.Repository, []func() error) {
	switch {
	case cfg.MongoURI != "":
		mg, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			logger.Fatal().Err(err).Msg("mongodb unavailable and MONGODB_URI is set; refusing to start with in-memory fallback")
		}
		logger.Info().Str("database", cfg.MongoDatabase).Msg("repository: mongodb")
		return mg, []func() error{mg.Close}
	case cfg.DatabaseURL != "":
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres unavailable and DATABASE_URL is set; refusing to start with in-memory fallback")
		}
		logger.Info().Msg("repository: postgres")
		return pg, []func() error{pg.Close}
	default:
		logger.Info().Msg("repository: in-memory")
		return memory.NewSeeded(), nil
	}
}

const minPasswordLength = 8

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return errors.New("AUTH_SECRET must be set and at least 32 characters")
	}
	credentials := []struct {
		name     string
		username string
		password string
	}{
		{"ADMIN", cfg.AdminUsername, cfg.AdminPassword},
		{"CASHIER", cfg.CashierUsername, cfg.CashierPassword},
	}
	for _, c := range credentials {
		if strings.TrimSpace(c.username) == "" {
			return errors.Errorf("%s_USERNAME must not be empty", c.name)
		}
		if len(c.password) < minPasswordLength {
			return errors.Errorf("%s_PASSWORD must be set and at least %d characters", c.name, minPasswordLength)
		}
	}
	if strings.EqualFold(strings.TrimSpace(cfg.AdminUsername), strings.TrimSpace(cfg.CashierUsername)) {
		return errors.New("ADMIN_USERNAME and CASHIER_USERNAME must differ")
	}
	return nil
}
