package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"

	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/store"
	"apexpos/backend/internal/xid"
)

const (
	colProducts      = "products"
	colCategories    = "categories"
	colSales         = "sales"
	colRepairs       = "repairs"
	colDeliveries    = "deliveries"
	colHirePurchases = "hirepurchases"
	colExpenses      = "expenses"
	colStaff         = "staffs"
	colCustomers     = "customers"
	colSuppliers     = "suppliers"
	colReloads       = "reloads"
	colNotifications = "notifications"
	colAdjustments   = "pendingadjustments"
)

// Every collection lives in one table as JSON bodies. sort_at carries the
// field each collection is listed by (sale date, expense date or createdAt).
const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection text NOT NULL,
	id text NOT NULL,
	body jsonb NOT NULL,
	sort_at timestamptz NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_sort_at_idx ON documents (collection, sort_at DESC);
CREATE UNIQUE INDEX IF NOT EXISTS documents_category_name_idx
	ON documents ((body->>'name')) WHERE collection = 'categories';
CREATE UNIQUE INDEX IF NOT EXISTS documents_staff_email_idx
	ON documents (lower(body->>'email')) WHERE collection = 'staffs';
`

type Store struct {
	db *sql.DB
}

var _ store.Repository = (*Store)(nil)

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ensure schema")
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return listDocs[domain.Product](ctx, s.db, colProducts, true, 0)
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return getDoc[domain.Product](ctx, s.db, colProducts, id)
}

func (s *Store) GetProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	result := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	products, err := queryDocs[domain.Product](ctx, s.db, `
		SELECT body FROM documents
		WHERE collection = $1 AND id = ANY($2)
	`, colProducts, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.Category == "" {
		return nil, store.ErrInvalidRecord
	}
	if product.ID == "" {
		product.ID = xid.New()
	}
	if err := insertDoc(ctx, s.db, colProducts, product.ID, product.CreatedAt, product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Store) IncrementStock(ctx context.Context, productID string, delta int) (*domain.Product, error) {
	return updateDoc[domain.Product](ctx, s.db, `
		UPDATE documents
		SET body = body || jsonb_build_object('stock', (body->>'stock')::int + $3, 'updatedAt', $4::text)
		WHERE collection = $1 AND id = $2
		RETURNING body
	`, colProducts, productID, delta, stamp(time.Now()))
}

func (s *Store) DecrementStockClamped(ctx context.Context, productID string, qty int) (*domain.Product, error) {
	return updateDoc[domain.Product](ctx, s.db, `
		UPDATE documents
		SET body = body || jsonb_build_object('stock', GREATEST((body->>'stock')::int - $3, 0), 'updatedAt', $4::text)
		WHERE collection = $1 AND id = $2
		RETURNING body
	`, colProducts, productID, qty, stamp(time.Now()))
}

func (s *Store) DecrementStockIfAvailable(ctx context.Context, productID string, qty int) (*domain.Product, error) {
	product, err := updateDoc[domain.Product](ctx, s.db, `
		UPDATE documents
		SET body = body || jsonb_build_object('stock', (body->>'stock')::int - $3, 'updatedAt', $4::text)
		WHERE collection = $1 AND id = $2 AND (body->>'stock')::int >= $3
		RETURNING body
	`, colProducts, productID, qty, stamp(time.Now()))
	if !errors.Is(err, store.ErrNotFound) {
		return product, err
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM documents WHERE collection = $1 AND id = $2)
	`, colProducts, productID).Scan(&exists); err != nil {
		return nil, errors.Wrap(err, "check product")
	}
	if !exists {
		return nil, store.ErrNotFound
	}
	return nil, store.ErrInsufficientStock
}

func (s *Store) CountProductsByCategory(ctx context.Context, names []string) (map[string]int, error) {
	counts := make(map[string]int, len(names))
	for _, name := range names {
		counts[name] = 0
	}
	if len(names) == 0 {
		return counts, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT body->>'category', count(*)
		FROM documents
		WHERE collection = $1 AND body->>'category' = ANY($2)
		GROUP BY 1
	`, colProducts, names)
	if err != nil {
		return nil, errors.Wrap(err, "count products by category")
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		counts[category] = n
	}
	return counts, rows.Err()
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return listDocs[domain.Category](ctx, s.db, colCategories, true, 0)
}

func (s *Store) CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	if category.Name == "" {
		return nil, store.ErrInvalidRecord
	}
	if category.ID == "" {
		category.ID = xid.New()
	}
	category.Count = 0
	if err := insertDoc(ctx, s.db, colCategories, category.ID, category.CreatedAt, category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return deleteDoc(ctx, s.db, colCategories, id)
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if len(sale.Items) == 0 {
		return nil, store.ErrInvalidRecord
	}
	if sale.ID == "" {
		sale.ID = xid.New()
	}
	if err := insertDoc(ctx, s.db, colSales, sale.ID, sale.Date, sale); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *Store) ListSales(ctx context.Context, limit int) ([]domain.Sale, error) {
	return listDocs[domain.Sale](ctx, s.db, colSales, false, limit)
}

func (s *Store) ListSalesBetween(ctx context.Context, from time.Time, to time.Time) ([]domain.Sale, error) {
	return listDocsBetween[domain.Sale](ctx, s.db, colSales, from, to)
}

func (s *Store) EnqueueAdjustment(ctx context.Context, adj domain.PendingAdjustment) error {
	if adj.ID == "" {
		adj.ID = xid.New()
	}
	return insertDoc(ctx, s.db, colAdjustments, adj.ID, adj.CreatedAt, adj)
}

func (s *Store) ListPendingAdjustments(ctx context.Context, limit int) ([]domain.PendingAdjustment, error) {
	return listDocs[domain.PendingAdjustment](ctx, s.db, colAdjustments, true, limit)
}

func (s *Store) SavePendingAdjustment(ctx context.Context, adj domain.PendingAdjustment) error {
	return replaceDoc(ctx, s.db, colAdjustments, adj.ID, adj)
}

func (s *Store) DeletePendingAdjustment(ctx context.Context, id string) error {
	return deleteDoc(ctx, s.db, colAdjustments, id)
}
