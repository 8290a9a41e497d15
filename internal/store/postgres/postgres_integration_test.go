package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/store"
)

func newIntegrationStore(t *testing.T) *Store {
	t.Helper()
	databaseURL := os.Getenv("APEXPOS_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set APEXPOS_TEST_DATABASE_URL to run postgres integration test")
	}

	s, err := New(context.Background(), databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestConcurrentStockDecrementsAreAtomic(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	product, err := s.CreateProduct(ctx, domain.Product{
		Name:      "Samsung 45W Charger",
		Category:  "Accessories",
		Price:     12000,
		Stock:     20,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	t.Cleanup(func() {
		_ = deleteDoc(context.Background(), s.db, colProducts, product.ID)
	})

	var wg sync.WaitGroup
	for range 25 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.IncrementStock(ctx, product.ID, -1); err != nil {
				t.Errorf("increment: %v", err)
			}
		}()
	}
	wg.Wait()

	current, err := s.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if current.Stock != -5 {
		t.Fatalf("expected stock -5, got %d", current.Stock)
	}

	if _, err := s.DecrementStockIfAvailable(ctx, product.ID, 1); !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	clamped, err := s.DecrementStockClamped(ctx, product.ID, 1)
	if err != nil {
		t.Fatalf("clamped: %v", err)
	}
	if clamped.Stock != 0 {
		t.Fatalf("expected clamped stock 0, got %d", clamped.Stock)
	}
}

func TestNotificationLifecycle(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	created, err := s.CreateNotification(ctx, domain.Notification{
		Title:       "Low stock",
		Description: "iPhone X Display (OLED) is running low",
		Type:        domain.NotificationTypeInfo,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("create notification: %v", err)
	}
	t.Cleanup(func() {
		_ = deleteDoc(context.Background(), s.db, colNotifications, created.ID)
	})

	read, err := s.MarkNotificationRead(ctx, created.ID, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !read.IsRead || !read.UpdatedAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("unexpected notification after read: %+v", read)
	}
}
