package service

import (
	"context"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"apexpos/backend/internal/domain"
)

const (
	salesReportLimit  = 100
	recentSalesReport = 50
)

var ErrUnknownReport = &NotFoundError{Message: "Report type not found"}

// ProfitLoss compares all-time sales against all-time expenses.
func (s *Service) ProfitLoss(ctx context.Context) (domain.ProfitLoss, error) {
	sales, err := s.repo.ListSales(ctx, 0)
	if err != nil {
		return domain.ProfitLoss{}, err
	}
	expenses, err := s.repo.ListExpenses(ctx)
	if err != nil {
		return domain.ProfitLoss{}, err
	}

	totalSales := sumSales(sales)
	totalExpenses := sumExpenses(expenses)
	return domain.ProfitLoss{
		TotalSales:    totalSales.InexactFloat64(),
		TotalExpenses: totalExpenses.InexactFloat64(),
		Profit:        totalSales.Sub(totalExpenses).InexactFloat64(),
	}, nil
}

// DailyClosing totals the current local day.
func (s *Service) DailyClosing(ctx context.Context) (domain.DailyClosing, error) {
	w := s.windows()
	dayEnd := w.dayStart.AddDate(0, 0, 1)

	sales, err := s.repo.ListSalesBetween(ctx, w.dayStart, dayEnd)
	if err != nil {
		return domain.DailyClosing{}, err
	}
	expenses, err := s.repo.ListExpensesBetween(ctx, w.dayStart, dayEnd)
	if err != nil {
		return domain.DailyClosing{}, err
	}

	totalSales := sumSales(sales)
	totalExpenses := sumExpenses(expenses)
	return domain.DailyClosing{
		TotalSales:    totalSales.InexactFloat64(),
		TotalExpenses: totalExpenses.InexactFloat64(),
		NetCash:       totalSales.Sub(totalExpenses).InexactFloat64(),
	}, nil
}

// LowStockReport uses the flat report threshold, not per-product minStock.
func (s *Service) LowStockReport(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	low := make([]domain.Product, 0)
	for _, p := range products {
		if p.Stock < s.lowStockReport {
			low = append(low, p)
		}
	}
	return low, nil
}

func (s *Service) SalesReport(ctx context.Context) ([]domain.Sale, error) {
	return s.repo.ListSales(ctx, salesReportLimit)
}

// WriteSalesCSV exports the sales report as one row per sale line.
func (s *Service) WriteSalesCSV(ctx context.Context, w io.Writer) error {
	sales, err := s.repo.ListSales(ctx, salesReportLimit)
	if err != nil {
		return err
	}

	rows := make([]domain.SaleLineRow, 0, len(sales))
	for _, sale := range sales {
		date := sale.Date.In(s.loc).Format(time.RFC3339)
		for _, item := range sale.Items {
			rows = append(rows, domain.SaleLineRow{
				SaleID:        sale.ID,
				Date:          date,
				PaymentMethod: sale.PaymentMethod,
				ProductID:     item.ProductID,
				Name:          item.Name,
				Price:         item.Price,
				Quantity:      item.Quantity,
				Discount:      sale.Discount,
				TotalAmount:   sale.TotalAmount,
			})
		}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return errors.Wrap(err, "write sales csv")
	}
	return nil
}

func (s *Service) StockReport(ctx context.Context) ([]domain.StockReportRow, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.StockReportRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, domain.StockReportRow{
			ID:       p.ID,
			Name:     p.Name,
			Stock:    p.Stock,
			Price:    p.Price,
			Category: p.Category,
		})
	}
	return rows, nil
}

func (s *Service) SalaryReport(ctx context.Context) ([]domain.SalaryReportRow, error) {
	staff, err := s.repo.ListStaff(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.SalaryReportRow, 0, len(staff))
	for _, member := range staff {
		rows = append(rows, domain.SalaryReportRow{
			ID:       member.ID,
			Name:     member.Name,
			Role:     member.Role,
			Salary:   member.Salary,
			JoinDate: member.JoinDate,
		})
	}
	return rows, nil
}

func (s *Service) ExpensesReport(ctx context.Context) ([]domain.Expense, error) {
	return s.repo.ListExpenses(ctx)
}

// RepairProfitReport counts the estimated cost of completed repairs as
// profit.
func (s *Service) RepairProfitReport(ctx context.Context) (domain.RepairProfitReport, error) {
	repairs, err := s.repo.ListRepairs(ctx, 0)
	if err != nil {
		return domain.RepairProfitReport{}, err
	}
	completed := make([]domain.Repair, 0)
	var total decimal.Decimal
	for _, r := range repairs {
		if r.Status != domain.RepairStatusCompleted {
			continue
		}
		completed = append(completed, r)
		total = total.Add(decimal.NewFromFloat(r.EstimatedCost))
	}
	return domain.RepairProfitReport{Repairs: completed, TotalProfit: total.InexactFloat64()}, nil
}

func (s *Service) SupplierReport(ctx context.Context) ([]domain.Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

func (s *Service) VehicleLoadReport(ctx context.Context) ([]domain.Delivery, error) {
	return s.repo.ListDeliveries(ctx)
}

// SalesByType serves the named sales listings. Unknown names return
// ErrUnknownReport.
func (s *Service) SalesByType(ctx context.Context, reportType string) ([]domain.Sale, error) {
	switch reportType {
	case "sales-person", "sales-type", "sales-ref", "cus-payment":
		return s.repo.ListSales(ctx, recentSalesReport)
	case "sales-credit", "cus-credit":
		sales, err := s.repo.ListSales(ctx, 0)
		if err != nil {
			return nil, err
		}
		credit := make([]domain.Sale, 0)
		for _, sale := range sales {
			if sale.PaymentMethod == domain.PaymentMethodCredit {
				credit = append(credit, sale)
			}
		}
		return credit, nil
	case "returns":
		return []domain.Sale{}, nil
	default:
		return nil, ErrUnknownReport
	}
}

func sumSales(sales []domain.Sale) decimal.Decimal {
	var total decimal.Decimal
	for _, sale := range sales {
		total = total.Add(decimal.NewFromFloat(sale.TotalAmount))
	}
	return total
}

func sumExpenses(expenses []domain.Expense) decimal.Decimal {
	var total decimal.Decimal
	for _, e := range expenses {
		total = total.Add(decimal.NewFromFloat(e.Amount))
	}
	return total
}
