package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/store"
	"apexpos/backend/internal/xid"
)

// Store keeps every collection in process memory behind one lock. It backs
// tests and local development when no database is configured.
type Store struct {
	mu            sync.RWMutex
	products      map[string]domain.Product
	categories    map[string]domain.Category
	sales         map[string]domain.Sale
	repairs       map[string]domain.Repair
	deliveries    map[string]domain.Delivery
	hirePurchases map[string]domain.HirePurchase
	expenses      map[string]domain.Expense
	staff         map[string]domain.Staff
	customers     map[string]domain.Customer
	suppliers     map[string]domain.Supplier
	reloads       map[string]domain.Reload
	notifications map[string]domain.Notification
	adjustments   map[string]domain.PendingAdjustment
}

var _ store.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		products:      make(map[string]domain.Product),
		categories:    make(map[string]domain.Category),
		sales:         make(map[string]domain.Sale),
		repairs:       make(map[string]domain.Repair),
		deliveries:    make(map[string]domain.Delivery),
		hirePurchases: make(map[string]domain.HirePurchase),
		expenses:      make(map[string]domain.Expense),
		staff:         make(map[string]domain.Staff),
		customers:     make(map[string]domain.Customer),
		suppliers:     make(map[string]domain.Supplier),
		reloads:       make(map[string]domain.Reload),
		notifications: make(map[string]domain.Notification),
		adjustments:   make(map[string]domain.PendingAdjustment),
	}
}

// NewSeeded returns a store preloaded with the demo catalog.
func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()

	for i, c := range []domain.Category{
		{Name: "Phones", Icon: "smartphone", Description: "Handsets"},
		{Name: "Accessories", Icon: "headphones", Description: "Chargers, covers and audio"},
		{Name: "Parts", Icon: "wrench", Description: "Spare parts for repairs"},
	} {
		c.ID = xid.New()
		c.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		c.UpdatedAt = c.CreatedAt
		s.categories[c.ID] = c
	}

	for i, p := range []domain.Product{
		{Name: "iPhone 15 Pro Max", Category: "Phones", Brand: "Apple", Price: 450000, CostPrice: 420000, Stock: 10, Barcode: "IP15PM"},
		{Name: "Samsung S24 Ultra", Category: "Phones", Brand: "Samsung", Price: 420000, CostPrice: 390000, Stock: 8, Barcode: "S24ULTRA"},
		{Name: "Redmi Note 13", Category: "Phones", Brand: "Xiaomi", Price: 65000, CostPrice: 58000, Stock: 25, Barcode: "REDMI13"},
		{Name: "AirPods Pro 2", Category: "Accessories", Brand: "Apple", Price: 85000, CostPrice: 75000, Stock: 15, Barcode: "APP2"},
		{Name: "Samsung 45W Charger", Category: "Accessories", Brand: "Samsung", Price: 12000, CostPrice: 8000, Stock: 50, Barcode: "SAM45W"},
		{Name: "Screen Protector (Glass)", Category: "Accessories", Price: 1500, CostPrice: 200, Stock: 200, Barcode: "SPGLASS"},
		{Name: "Silicone Back Cover", Category: "Accessories", Price: 2500, CostPrice: 500, Stock: 150, Barcode: "SBC"},
		{Name: "iPhone X Display (OLED)", Category: "Parts", Brand: "Apple", Price: 25000, CostPrice: 18000, Stock: 5, Barcode: "IPXDISP"},
		{Name: "Samsung A12 Battery", Category: "Parts", Brand: "Samsung", Price: 4500, CostPrice: 3000, Stock: 10, Barcode: "A12BATT"},
	} {
		p.ID = xid.New()
		p.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		p.UpdatedAt = p.CreatedAt
		s.products[p.ID] = p
	}

	return s
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := sortedValues(s.products, nil, func(a, b domain.Product) int {
		return oldestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	}, 0)
	for i := range products {
		products[i] = cloneProduct(products[i])
	}
	return products, nil
}

func (s *Store) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	found := cloneProduct(product)
	return &found, nil
}

func (s *Store) GetProductsByIDs(_ context.Context, ids []string) (map[string]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if product, exists := s.products[id]; exists {
			result[id] = cloneProduct(product)
		}
	}
	return result, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.Name == "" || product.Category == "" {
		return nil, store.ErrInvalidRecord
	}
	if product.ID == "" {
		product.ID = xid.New()
	}
	if _, exists := s.products[product.ID]; exists {
		return nil, store.ErrDuplicate
	}

	product = cloneProduct(product)
	s.products[product.ID] = product
	created := cloneProduct(product)
	return &created, nil
}

func (s *Store) IncrementStock(_ context.Context, productID string, delta int) (*domain.Product, error) {
	return s.mutateStock(productID, func(stock int) (int, error) {
		return stock + delta, nil
	})
}

func (s *Store) DecrementStockClamped(_ context.Context, productID string, qty int) (*domain.Product, error) {
	return s.mutateStock(productID, func(stock int) (int, error) {
		return max(stock-qty, 0), nil
	})
}

func (s *Store) DecrementStockIfAvailable(_ context.Context, productID string, qty int) (*domain.Product, error) {
	return s.mutateStock(productID, func(stock int) (int, error) {
		if stock < qty {
			return stock, store.ErrInsufficientStock
		}
		return stock - qty, nil
	})
}

func (s *Store) mutateStock(productID string, apply func(stock int) (int, error)) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, exists := s.products[productID]
	if !exists {
		return nil, store.ErrNotFound
	}
	next, err := apply(product.Stock)
	if err != nil {
		return nil, err
	}
	product.Stock = next
	product.UpdatedAt = time.Now().UTC()
	s.products[productID] = product

	updated := cloneProduct(product)
	return &updated, nil
}

func (s *Store) CountProductsByCategory(_ context.Context, names []string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int, len(names))
	for _, name := range names {
		counts[name] = 0
	}
	for _, product := range s.products {
		if _, wanted := counts[product.Category]; wanted {
			counts[product.Category]++
		}
	}
	return counts, nil
}

func (s *Store) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedValues(s.categories, nil, func(a, b domain.Category) int {
		return oldestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	}, 0), nil
}

func (s *Store) CreateCategory(_ context.Context, category domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if category.Name == "" {
		return nil, store.ErrInvalidRecord
	}
	for _, existing := range s.categories {
		if existing.Name == category.Name {
			return nil, store.ErrDuplicate
		}
	}
	if category.ID == "" {
		category.ID = xid.New()
	}
	category.Count = 0
	s.categories[category.ID] = category
	created := category
	return &created, nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteRow(s.categories, id)
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(sale.Items) == 0 {
		return nil, store.ErrInvalidRecord
	}
	if sale.ID == "" {
		sale.ID = xid.New()
	}
	sale.Items = slices.Clone(sale.Items)
	s.sales[sale.ID] = sale

	created := sale
	created.Items = slices.Clone(sale.Items)
	return &created, nil
}

func (s *Store) ListSales(_ context.Context, limit int) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := sortedValues(s.sales, nil, saleNewestFirst, limit)
	return cloneSales(sales), nil
}

func (s *Store) ListSalesBetween(_ context.Context, from time.Time, to time.Time) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := sortedValues(s.sales, func(sale domain.Sale) bool {
		return !sale.Date.Before(from) && sale.Date.Before(to)
	}, saleNewestFirst, 0)
	return cloneSales(sales), nil
}

func (s *Store) EnqueueAdjustment(_ context.Context, adj domain.PendingAdjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if adj.ID == "" {
		adj.ID = xid.New()
	}
	s.adjustments[adj.ID] = adj
	return nil
}

func (s *Store) ListPendingAdjustments(_ context.Context, limit int) ([]domain.PendingAdjustment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedValues(s.adjustments, nil, func(a, b domain.PendingAdjustment) int {
		return oldestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	}, limit), nil
}

func (s *Store) SavePendingAdjustment(_ context.Context, adj domain.PendingAdjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.adjustments[adj.ID]; !exists {
		return store.ErrNotFound
	}
	s.adjustments[adj.ID] = adj
	return nil
}

func (s *Store) DeletePendingAdjustment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteRow(s.adjustments, id)
}

func sortedValues[T any](rows map[string]T, keep func(T) bool, cmp func(a, b T) int, limit int) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if keep != nil && !keep(row) {
			continue
		}
		out = append(out, row)
	}
	slices.SortFunc(out, cmp)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func deleteRow[T any](rows map[string]T, id string) error {
	if _, exists := rows[id]; !exists {
		return store.ErrNotFound
	}
	delete(rows, id)
	return nil
}

func countRows[T any](rows map[string]T, keep func(T) bool) int64 {
	var n int64
	for _, row := range rows {
		if keep == nil || keep(row) {
			n++
		}
	}
	return n
}

func oldestFirst(a time.Time, b time.Time, idA string, idB string) int {
	if c := a.Compare(b); c != 0 {
		return c
	}
	return strings.Compare(idA, idB)
}

func newestFirst(a time.Time, b time.Time, idA string, idB string) int {
	return oldestFirst(b, a, idB, idA)
}

func saleNewestFirst(a, b domain.Sale) int {
	return newestFirst(a.Date, b.Date, a.ID, b.ID)
}

func cloneProduct(p domain.Product) domain.Product {
	if p.MinStock != nil {
		minStock := *p.MinStock
		p.MinStock = &minStock
	}
	return p
}

func cloneSales(sales []domain.Sale) []domain.Sale {
	for i := range sales {
		sales[i].Items = slices.Clone(sales[i].Items)
	}
	return sales
}
