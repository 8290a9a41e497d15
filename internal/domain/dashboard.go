package domain

import "time"

type BrandRevenue struct {
	Brand   string  `json:"brand"`
	Revenue float64 `json:"revenue"`
}

type LowStockItem struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Stock    int    `json:"stock"`
	MinStock int    `json:"minStock"`
}

type DashboardStats struct {
	DailySales       float64        `json:"dailySales"`
	WeeklySales      float64        `json:"weeklySales"`
	MonthlySales     float64        `json:"monthlySales"`
	PendingRepairs   int64          `json:"pendingRepairs"`
	LowStock         int            `json:"lowStock"`
	LowStockItems    []LowStockItem `json:"lowStockItems"`
	BrandSummary     []BrandRevenue `json:"brandSummary"`
	ActiveDeliveries int64          `json:"activeDeliveries"`
	TotalProducts    int            `json:"totalProducts"`
	TotalStaff       int64          `json:"totalStaff"`
	TotalCustomers   int64          `json:"totalCustomers"`
	TotalBrands      int            `json:"totalBrands"`
	MonthlyExpenses  float64        `json:"monthlyExpenses"`
}

type SalesTrendPoint struct {
	Date  string  `json:"date"`
	Day   string  `json:"day"`
	Sales float64 `json:"sales"`
}

type Activity struct {
	Type          string    `json:"type"`
	Message       string    `json:"message"`
	Time          time.Time `json:"time"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
	Status        string    `json:"status,omitempty"`
}

type ProfitLoss struct {
	TotalSales    float64 `json:"totalSales"`
	TotalExpenses float64 `json:"totalExpenses"`
	Profit        float64 `json:"profit"`
}

type DailyClosing struct {
	TotalSales    float64 `json:"totalSales"`
	TotalExpenses float64 `json:"totalExpenses"`
	NetCash       float64 `json:"netCash"`
}

// SaleLineRow is one flattened sale line in the CSV export.
type SaleLineRow struct {
	SaleID        string  `csv:"sale_id"`
	Date          string  `csv:"date"`
	PaymentMethod string  `csv:"payment_method"`
	ProductID     string  `csv:"product_id"`
	Name          string  `csv:"name"`
	Price         float64 `csv:"price"`
	Quantity      int     `csv:"quantity"`
	Discount      float64 `csv:"sale_discount"`
	TotalAmount   float64 `csv:"sale_total"`
}

type StockReportRow struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Stock    int     `json:"stock"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

type SalaryReportRow struct {
	ID       string    `json:"_id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	Salary   float64   `json:"salary"`
	JoinDate time.Time `json:"joinDate"`
}

type RepairProfitReport struct {
	Repairs     []Repair `json:"repairs"`
	TotalProfit float64  `json:"totalProfit"`
}
