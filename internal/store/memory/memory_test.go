package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/store"
)

func seededProduct(t *testing.T, s *Store, name string) domain.Product {
	t.Helper()
	products, err := s.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	for _, p := range products {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("seed product %q not found", name)
	return domain.Product{}
}

func TestNewSeededCatalog(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	products, err := s.ListProducts(ctx)
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if len(products) != 9 {
		t.Fatalf("expected 9 seed products, got %d", len(products))
	}
	if products[0].Name != "iPhone 15 Pro Max" || products[0].Stock != 10 {
		t.Fatalf("unexpected first product: %+v", products[0])
	}

	counts, err := s.CountProductsByCategory(ctx, []string{"Phones", "Parts", "Tablets"})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if counts["Phones"] != 3 || counts["Parts"] != 2 || counts["Tablets"] != 0 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestIncrementStockAllowsNegative(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	display := seededProduct(t, s, "iPhone X Display (OLED)")

	updated, err := s.IncrementStock(ctx, display.ID, -8)
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if updated.Stock != -3 {
		t.Fatalf("expected stock -3, got %d", updated.Stock)
	}
}

func TestDecrementStockClampedFloorsAtZero(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	display := seededProduct(t, s, "iPhone X Display (OLED)")

	updated, err := s.DecrementStockClamped(ctx, display.ID, 99)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if updated.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", updated.Stock)
	}
}

func TestDecrementStockIfAvailable(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	display := seededProduct(t, s, "iPhone X Display (OLED)")

	if _, err := s.DecrementStockIfAvailable(ctx, display.ID, 6); !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	current, _ := s.GetProduct(ctx, display.ID)
	if current.Stock != 5 {
		t.Fatalf("expected unchanged stock 5, got %d", current.Stock)
	}

	updated, err := s.DecrementStockIfAvailable(ctx, display.ID, 5)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if updated.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", updated.Stock)
	}

	if _, err := s.DecrementStockIfAvailable(ctx, "missing", 1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConcurrentDecrementsDoNotLoseUpdates(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	charger := seededProduct(t, s, "Samsung 45W Charger")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.IncrementStock(ctx, charger.ID, -1); err != nil {
				t.Errorf("increment failed: %v", err)
			}
		}()
	}
	wg.Wait()

	current, _ := s.GetProduct(ctx, charger.ID)
	if current.Stock != 0 {
		t.Fatalf("expected stock 0 after 50 decrements, got %d", current.Stock)
	}
}

func TestCreateCategoryRejectsDuplicateName(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	if _, err := s.CreateCategory(ctx, domain.Category{Name: "Phones"}); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	created, err := s.CreateCategory(ctx, domain.Category{Name: "Tablets"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := s.DeleteCategory(ctx, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := s.DeleteCategory(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestSalesAreReturnedNewestFirstAndCopied(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	for i := range 3 {
		_, err := s.CreateSale(ctx, domain.Sale{
			Items:       []domain.SaleItem{{ProductID: "p1", Name: "Cover", Price: 100, Quantity: 1}},
			TotalAmount: 100,
			Date:        base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("create sale failed: %v", err)
		}
	}

	sales, err := s.ListSales(ctx, 2)
	if err != nil {
		t.Fatalf("list sales failed: %v", err)
	}
	if len(sales) != 2 || !sales[0].Date.After(sales[1].Date) {
		t.Fatalf("expected two sales newest first, got %+v", sales)
	}

	sales[0].Items[0].Quantity = 99
	again, _ := s.ListSales(ctx, 1)
	if again[0].Items[0].Quantity != 1 {
		t.Fatalf("stored sale was mutated through a returned slice")
	}

	between, _ := s.ListSalesBetween(ctx, base, base.Add(2*time.Hour))
	if len(between) != 2 {
		t.Fatalf("expected half-open range to return 2 sales, got %d", len(between))
	}

	if _, err := s.CreateSale(ctx, domain.Sale{}); !errors.Is(err, store.ErrInvalidRecord) {
		t.Fatalf("expected invalid record for empty sale, got %v", err)
	}
}

func TestPendingAdjustmentsOldestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Now().UTC()

	for i, id := range []string{"b", "a", "c"} {
		if err := s.EnqueueAdjustment(ctx, domain.PendingAdjustment{
			ID:        id,
			ProductID: "p1",
			Delta:     -1,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("enqueue failed: %v", err)
		}
	}

	pending, _ := s.ListPendingAdjustments(ctx, 2)
	if len(pending) != 2 || pending[0].ID != "b" || pending[1].ID != "a" {
		t.Fatalf("unexpected pending order: %+v", pending)
	}

	pending[0].Attempts = 3
	if err := s.SavePendingAdjustment(ctx, pending[0]); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.DeletePendingAdjustment(ctx, "a"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := s.SavePendingAdjustment(ctx, domain.PendingAdjustment{ID: "a"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestNotificationsReadAndClear(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()

	first, _ := s.CreateNotification(ctx, domain.Notification{Title: "A", CreatedAt: now})
	_, _ = s.CreateNotification(ctx, domain.Notification{Title: "B", CreatedAt: now.Add(time.Second)})

	if _, err := s.MarkNotificationRead(ctx, first.ID, now); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	n, _ := s.MarkAllNotificationsRead(ctx, now)
	if n != 1 {
		t.Fatalf("expected 1 newly read notification, got %d", n)
	}
	cleared, _ := s.ClearNotifications(ctx)
	if cleared != 2 {
		t.Fatalf("expected 2 cleared, got %d", cleared)
	}
}

func TestStaffEmailIsUnique(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.CreateStaff(ctx, domain.Staff{Name: "Nimal", Email: "nimal@shop.lk"})
	if err != nil {
		t.Fatalf("create staff failed: %v", err)
	}
	if _, err := s.CreateStaff(ctx, domain.Staff{Name: "Other", Email: "NIMAL@shop.lk"}); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected duplicate email, got %v", err)
	}

	first.Phone = "0771234567"
	if _, err := s.SaveStaff(ctx, *first); err != nil {
		t.Fatalf("save own record failed: %v", err)
	}
	count, _ := s.CountStaff(ctx)
	if count != 1 {
		t.Fatalf("expected 1 staff, got %d", count)
	}
}

func TestCountRepairsByStatus(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, status := range []string{"Pending", "In Progress", "Completed", "Pending"} {
		_, _ = s.CreateRepair(ctx, domain.Repair{DeviceModel: "A12", Status: status})
	}

	n, _ := s.CountRepairs(ctx, "Pending", "In Progress")
	if n != 3 {
		t.Fatalf("expected 3 open repairs, got %d", n)
	}
	all, _ := s.CountRepairs(ctx)
	if all != 4 {
		t.Fatalf("expected 4 repairs, got %d", all)
	}
}
