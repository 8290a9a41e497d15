package domain

import "time"

// DefaultMinStock is the low-stock threshold applied to products that never
// had one set.
const DefaultMinStock = 5

type Product struct {
	ID          string    `json:"_id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Barcode     string    `json:"barcode,omitempty" bson:"barcode,omitempty"`
	Category    string    `json:"category" bson:"category"`
	Brand       string    `json:"brand,omitempty" bson:"brand,omitempty"`
	Price       float64   `json:"price" bson:"price"`
	CostPrice   float64   `json:"costPrice" bson:"costPrice"`
	Stock       int       `json:"stock" bson:"stock"`
	MinStock    *int      `json:"minStock,omitempty" bson:"minStock,omitempty"`
	Image       string    `json:"image,omitempty" bson:"image,omitempty"`
	Warranty    string    `json:"warranty,omitempty" bson:"warranty,omitempty"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Threshold returns the stock level at or below which the product counts as
// low stock.
func (p Product) Threshold() int {
	if p.MinStock == nil {
		return DefaultMinStock
	}
	return *p.MinStock
}

func (p Product) IsLowStock() bool {
	return p.Stock <= p.Threshold()
}

type ProductCreateRequest struct {
	Name        string  `json:"name" validate:"required"`
	Barcode     string  `json:"barcode"`
	Category    string  `json:"category" validate:"required"`
	Brand       string  `json:"brand"`
	Price       float64 `json:"price" validate:"gte=0"`
	CostPrice   float64 `json:"costPrice" validate:"gte=0"`
	Stock       int     `json:"stock"`
	MinStock    *int    `json:"minStock" validate:"omitempty,gte=0"`
	Image       string  `json:"image"`
	Warranty    string  `json:"warranty"`
	Description string  `json:"description"`
}

// StockQuantityRequest is the body of the standalone decrement and refill
// endpoints.
type StockQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=1"`
}

type Category struct {
	ID          string    `json:"_id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Icon        string    `json:"icon,omitempty" bson:"icon,omitempty"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Count       int       `json:"count" bson:"-"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

type CategoryCreateRequest struct {
	Name        string `json:"name" validate:"required"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

type SaleItem struct {
	ProductID string  `json:"productId" bson:"productId" validate:"required"`
	Name      string  `json:"name" bson:"name"`
	Price     float64 `json:"price" bson:"price" validate:"gte=0"`
	Quantity  int     `json:"quantity" bson:"quantity" validate:"gte=1"`
}

// Sale is immutable once stored.
type Sale struct {
	ID            string     `json:"_id" bson:"_id"`
	Items         []SaleItem `json:"items" bson:"items"`
	TotalAmount   float64    `json:"totalAmount" bson:"totalAmount"`
	Discount      float64    `json:"discount" bson:"discount"`
	PaymentMethod string     `json:"paymentMethod" bson:"paymentMethod"`
	Date          time.Time  `json:"date" bson:"date"`
}

type SaleCreateRequest struct {
	Items         []SaleItem `json:"items" validate:"required,min=1,dive"`
	TotalAmount   float64    `json:"totalAmount" validate:"gte=0"`
	Discount      float64    `json:"discount" validate:"gte=0"`
	PaymentMethod string     `json:"paymentMethod"`
}

// PendingAdjustment is an outbox row for a stock adjustment that failed after
// its sale was already committed.
type PendingAdjustment struct {
	ID        string    `json:"_id" bson:"_id"`
	SaleID    string    `json:"saleId" bson:"saleId"`
	ProductID string    `json:"productId" bson:"productId"`
	Delta     int       `json:"delta" bson:"delta"`
	Attempts  int       `json:"attempts" bson:"attempts"`
	LastError string    `json:"lastError,omitempty" bson:"lastError,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string      `json:"accessToken"`
	User        SessionUser `json:"user"`
	ExpiresAt   string      `json:"expiresAt"`
}

type SessionUser struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type Actor struct {
	Username string
	Role     string
}

const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

const (
	StockPolicyAllowNegative = "allow-negative"
	StockPolicyStrict        = "strict"
)

const (
	PaymentMethodCash   = "Cash"
	PaymentMethodCredit = "Credit"
)
