package store

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"apexpos/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("duplicate record")
	ErrInvalidRecord     = errors.New("invalid record")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// StockStore is the part of the catalog the stock adjuster mutates. Every
// method is a single atomic operation at the storage layer.
type StockStore interface {
	// IncrementStock adds delta to the product's stock without clamping.
	IncrementStock(ctx context.Context, productID string, delta int) (*domain.Product, error)
	// DecrementStockClamped subtracts qty and floors the result at zero.
	DecrementStockClamped(ctx context.Context, productID string, qty int) (*domain.Product, error)
	// DecrementStockIfAvailable subtracts qty only when stock >= qty, otherwise
	// it returns ErrInsufficientStock and leaves the product unchanged.
	DecrementStockIfAvailable(ctx context.Context, productID string, qty int) (*domain.Product, error)
}

type AdjustmentOutbox interface {
	EnqueueAdjustment(ctx context.Context, adj domain.PendingAdjustment) error
	ListPendingAdjustments(ctx context.Context, limit int) ([]domain.PendingAdjustment, error)
	SavePendingAdjustment(ctx context.Context, adj domain.PendingAdjustment) error
	DeletePendingAdjustment(ctx context.Context, id string) error
}

type CatalogStore interface {
	StockStore
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	CountProductsByCategory(ctx context.Context, names []string) (map[string]int, error)

	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

type SaleStore interface {
	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	// ListSales returns sales newest first; limit <= 0 means no limit.
	ListSales(ctx context.Context, limit int) ([]domain.Sale, error)
	// ListSalesBetween returns sales with from <= date < to.
	ListSalesBetween(ctx context.Context, from time.Time, to time.Time) ([]domain.Sale, error)
}

type RecordStore interface {
	CreateRepair(ctx context.Context, repair domain.Repair) (*domain.Repair, error)
	ListRepairs(ctx context.Context, limit int) ([]domain.Repair, error)
	UpdateRepairStatus(ctx context.Context, id string, status string, at time.Time) (*domain.Repair, error)
	CountRepairs(ctx context.Context, statuses ...string) (int64, error)

	CreateDelivery(ctx context.Context, delivery domain.Delivery) (*domain.Delivery, error)
	ListDeliveries(ctx context.Context) ([]domain.Delivery, error)
	UpdateDeliveryStatus(ctx context.Context, id string, status string, at time.Time) (*domain.Delivery, error)
	DeleteDelivery(ctx context.Context, id string) error
	CountDeliveries(ctx context.Context, statuses ...string) (int64, error)

	CreateHirePurchase(ctx context.Context, account domain.HirePurchase) (*domain.HirePurchase, error)
	ListHirePurchases(ctx context.Context) ([]domain.HirePurchase, error)
	GetHirePurchase(ctx context.Context, id string) (*domain.HirePurchase, error)
	SaveHirePurchase(ctx context.Context, account domain.HirePurchase) (*domain.HirePurchase, error)

	CreateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error)
	ListExpenses(ctx context.Context) ([]domain.Expense, error)
	ListExpensesBetween(ctx context.Context, from time.Time, to time.Time) ([]domain.Expense, error)
	DeleteExpense(ctx context.Context, id string) error

	CreateReload(ctx context.Context, reload domain.Reload) (*domain.Reload, error)
	ListReloads(ctx context.Context, limit int) ([]domain.Reload, error)

	CreateNotification(ctx context.Context, notification domain.Notification) (*domain.Notification, error)
	ListNotifications(ctx context.Context) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, id string, at time.Time) (*domain.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, at time.Time) (int64, error)
	ClearNotifications(ctx context.Context) (int64, error)
}

type RegistrationStore interface {
	CreateStaff(ctx context.Context, staff domain.Staff) (*domain.Staff, error)
	ListStaff(ctx context.Context) ([]domain.Staff, error)
	GetStaff(ctx context.Context, id string) (*domain.Staff, error)
	SaveStaff(ctx context.Context, staff domain.Staff) (*domain.Staff, error)
	DeleteStaff(ctx context.Context, id string) error
	CountStaff(ctx context.Context) (int64, error)

	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	SaveCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
	CountCustomers(ctx context.Context) (int64, error)

	CreateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error)
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	GetSupplier(ctx context.Context, id string) (*domain.Supplier, error)
	SaveSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error)
	DeleteSupplier(ctx context.Context, id string) error
}

type Repository interface {
	CatalogStore
	SaleStore
	RecordStore
	RegistrationStore
	AdjustmentOutbox
}
