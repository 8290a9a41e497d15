// Package cart holds the terminal-side cart: the lines a cashier has picked
// before checkout, plus the storage that carries them across restarts.
package cart

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"apexpos/backend/internal/domain"
)

var ErrOutOfStock = errors.New("product is out of stock")

// Line is one product in the cart. Stock is the snapshot taken when the
// product list was loaded and is never refreshed.
type Line struct {
	ProductID string  `json:"_id"`
	Name      string  `json:"name"`
	Brand     string  `json:"brand,omitempty"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
	Quantity  int     `json:"quantity"`
}

// Cart is not safe for concurrent use.
type Cart struct {
	Items    []Line  `json:"items"`
	Discount float64 `json:"discount"`
}

// Add puts one unit of p in the cart. A product already present gets its
// quantity bumped; a new product is appended with quantity 1.
func (c *Cart) Add(p domain.Product) error {
	if p.Stock <= 0 {
		return ErrOutOfStock
	}
	if i := c.index(p.ID); i >= 0 {
		c.Items[i].Quantity++
		return nil
	}
	c.Items = append(c.Items, Line{
		ProductID: p.ID,
		Name:      p.Name,
		Brand:     p.Brand,
		Price:     p.Price,
		Stock:     p.Stock,
		Quantity:  1,
	})
	return nil
}

// UpdateQuantity sets the quantity of a line, never below 1. Unknown ids are
// ignored.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.Items[i].Quantity = max(1, quantity)
}

func (c *Cart) Remove(productID string) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

// Clear empties the cart and drops the discount.
func (c *Cart) Clear() {
	c.Items = nil
	c.Discount = 0
}

func (c *Cart) SetDiscount(amount float64) {
	c.Discount = amount
}

func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

func (c *Cart) Quantity(productID string) int {
	if i := c.index(productID); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

// Subtotal is the sum of price times quantity over every line.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Items {
		total = total.Add(decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// Total is the subtotal minus the discount, floored at zero.
func (c *Cart) Total() decimal.Decimal {
	total := c.Subtotal().Sub(decimal.NewFromFloat(c.Discount))
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

func (c *Cart) SaleItems() []domain.SaleItem {
	items := make([]domain.SaleItem, 0, len(c.Items))
	for _, line := range c.Items {
		items = append(items, domain.SaleItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
		})
	}
	return items
}

// SaleRequest builds the checkout body for the current cart.
func (c *Cart) SaleRequest(paymentMethod string) domain.SaleCreateRequest {
	return domain.SaleCreateRequest{
		Items:         c.SaleItems(),
		TotalAmount:   c.Total().InexactFloat64(),
		Discount:      c.Discount,
		PaymentMethod: paymentMethod,
	}
}

func (c *Cart) index(productID string) int {
	for i, line := range c.Items {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}
