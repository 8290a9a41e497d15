package cart

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"apexpos/backend/internal/domain"
)

var (
	cover   = domain.Product{ID: "p-cover", Name: "Silicone Back Cover", Price: 2500, Stock: 150}
	charger = domain.Product{ID: "p-charger", Name: "Samsung 45W Charger", Brand: "Samsung", Price: 12000, Stock: 50}
	soldOut = domain.Product{ID: "p-display", Name: "iPhone X Display (OLED)", Price: 25000, Stock: 0}
)

func TestAddSameProductKeepsOneLine(t *testing.T) {
	var c Cart
	for range 4 {
		if err := c.Add(cover); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if len(c.Items) != 1 {
		t.Fatalf("expected one line, got %d", len(c.Items))
	}
	if got := c.Quantity(cover.ID); got != 4 {
		t.Fatalf("expected quantity 4, got %d", got)
	}
}

func TestAddRefusesOutOfStock(t *testing.T) {
	var c Cart
	if err := c.Add(soldOut); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}
	negative := soldOut
	negative.Stock = -3
	if err := c.Add(negative); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock for oversold product, got %v", err)
	}
	if !c.Empty() {
		t.Fatalf("cart should stay empty")
	}
}

func TestUpdateQuantityNeverBelowOne(t *testing.T) {
	var c Cart
	_ = c.Add(cover)

	for _, tc := range []struct{ in, want int }{{5, 5}, {1, 1}, {0, 1}, {-7, 1}} {
		c.UpdateQuantity(cover.ID, tc.in)
		if got := c.Quantity(cover.ID); got != tc.want {
			t.Fatalf("update %d: expected %d, got %d", tc.in, tc.want, got)
		}
	}

	c.UpdateQuantity("unknown", 3)
	if len(c.Items) != 1 {
		t.Fatalf("unknown id must not add a line")
	}
}

func TestRemoveAndClear(t *testing.T) {
	var c Cart
	_ = c.Add(cover)
	_ = c.Add(charger)
	c.SetDiscount(500)

	c.Remove(cover.ID)
	if c.Quantity(cover.ID) != 0 || len(c.Items) != 1 {
		t.Fatalf("remove left %+v", c.Items)
	}

	c.Clear()
	if !c.Empty() || c.Discount != 0 {
		t.Fatalf("clear left %+v", c)
	}
}

func TestTotalSubtractsDiscountAndFloorsAtZero(t *testing.T) {
	var c Cart
	_ = c.Add(cover)
	_ = c.Add(cover)
	_ = c.Add(charger)

	if got := c.Subtotal().InexactFloat64(); got != 17000 {
		t.Fatalf("expected subtotal 17000, got %v", got)
	}

	c.SetDiscount(1500.5)
	if got := c.Total().InexactFloat64(); got != 15499.5 {
		t.Fatalf("expected total 15499.5, got %v", got)
	}

	c.SetDiscount(20000)
	if !c.Total().IsZero() {
		t.Fatalf("expected total floored at 0, got %s", c.Total())
	}
}

func TestTotalKeepsCentsExact(t *testing.T) {
	var c Cart
	_ = c.Add(domain.Product{ID: "a", Price: 0.1, Stock: 10})
	_ = c.Add(domain.Product{ID: "b", Price: 0.2, Stock: 10})

	if got := c.Total().String(); got != "0.3" {
		t.Fatalf("expected 0.3, got %s", got)
	}
}

func TestSaleRequestMirrorsCart(t *testing.T) {
	var c Cart
	_ = c.Add(charger)
	c.UpdateQuantity(charger.ID, 2)
	c.SetDiscount(1000)

	req := c.SaleRequest(domain.PaymentMethodCash)
	if len(req.Items) != 1 || req.Items[0].ProductID != charger.ID || req.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items %+v", req.Items)
	}
	if req.TotalAmount != 23000 || req.Discount != 1000 || req.PaymentMethod != domain.PaymentMethodCash {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestFileStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}

	empty, err := Load(ctx, storage)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if empty.IsAuthenticated || !empty.Cart.Empty() {
		t.Fatalf("expected empty state, got %+v", empty)
	}

	var c Cart
	_ = c.Add(cover)
	_ = c.Add(cover)
	c.SetDiscount(200)
	state := State{
		Cart:            c,
		User:            &domain.SessionUser{Name: "cashier", Role: domain.RoleCashier},
		IsAuthenticated: true,
		Token:           "token",
	}
	if err := Save(ctx, storage, state); err != nil {
		t.Fatalf("save: %v", err)
	}

	restored, err := Load(ctx, storage)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !restored.IsAuthenticated || restored.User == nil || restored.User.Role != domain.RoleCashier {
		t.Fatalf("session not restored: %+v", restored)
	}
	if restored.Cart.Quantity(cover.ID) != 2 || restored.Cart.Discount != 200 {
		t.Fatalf("cart not restored: %+v", restored.Cart)
	}
}

func TestFileStorageRejectsCorruptState(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	storage, err := NewFileStorage(dir)
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	if err := os.WriteFile(storage.path(StorageKey), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(ctx, storage); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestRedisStorageRoundTrip(t *testing.T) {
	addr := os.Getenv("APEXPOS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("APEXPOS_TEST_REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	storage := NewRedisStorage(addr, "", 0, time.Minute)
	defer storage.Close()
	if err := storage.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	var c Cart
	_ = c.Add(charger)
	if err := Save(ctx, storage, State{Cart: c, IsAuthenticated: true}); err != nil {
		t.Fatalf("save: %v", err)
	}
	restored, err := Load(ctx, storage)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if restored.Cart.Quantity(charger.ID) != 1 {
		t.Fatalf("cart not restored: %+v", restored.Cart)
	}
}
