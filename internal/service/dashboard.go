package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"apexpos/backend/internal/domain"
)

const (
	lowStockListLimit  = 10
	brandSummaryLimit  = 5
	trendDays          = 7
	activityLimit      = 5
	unbrandedLabel     = "Other"
	activityTypeSale   = "sale"
	activityTypeRepair = "repair"
)

var activityPrinter = message.NewPrinter(language.English)

type windows struct {
	now        time.Time
	dayStart   time.Time
	weekStart  time.Time
	monthStart time.Time
}

func (s *Service) windows() windows {
	now := s.now().In(s.loc)
	y, m, d := now.Date()
	return windows{
		now:        now,
		dayStart:   time.Date(y, m, d, 0, 0, 0, 0, s.loc),
		weekStart:  now.AddDate(0, 0, -7),
		monthStart: time.Date(y, m, 1, 0, 0, 0, 0, s.loc),
	}
}

// Stats recomputes every dashboard figure from raw records.
func (s *Service) Stats(ctx context.Context) (domain.DashboardStats, error) {
	w := s.windows()
	from := w.weekStart
	if w.monthStart.Before(from) {
		from = w.monthStart
	}
	// ListSalesBetween is half-open; include a sale stamped exactly now.
	until := w.now.Add(time.Nanosecond)

	sales, err := s.repo.ListSalesBetween(ctx, from, until)
	if err != nil {
		return domain.DashboardStats{}, err
	}

	var daily, weekly, monthly decimal.Decimal
	var monthSales []domain.Sale
	for _, sale := range sales {
		amount := decimal.NewFromFloat(sale.TotalAmount)
		if !sale.Date.Before(w.dayStart) {
			daily = daily.Add(amount)
		}
		if !sale.Date.Before(w.weekStart) {
			weekly = weekly.Add(amount)
		}
		if !sale.Date.Before(w.monthStart) {
			monthly = monthly.Add(amount)
			monthSales = append(monthSales, sale)
		}
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}

	pendingRepairs, err := s.repo.CountRepairs(ctx, domain.RepairStatusPending)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	activeDeliveries, err := s.repo.CountDeliveries(ctx, domain.DeliveryStatusPending, domain.DeliveryStatusInTransit)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	totalStaff, err := s.repo.CountStaff(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	totalCustomers, err := s.repo.CountCustomers(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	expenses, err := s.repo.ListExpensesBetween(ctx, w.monthStart, until)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	var monthlyExpenses decimal.Decimal
	for _, e := range expenses {
		monthlyExpenses = monthlyExpenses.Add(decimal.NewFromFloat(e.Amount))
	}

	lowStock := lowStockItems(products)
	lowStockCount := len(lowStock)
	if len(lowStock) > lowStockListLimit {
		lowStock = lowStock[:lowStockListLimit]
	}

	return domain.DashboardStats{
		DailySales:       daily.InexactFloat64(),
		WeeklySales:      weekly.InexactFloat64(),
		MonthlySales:     monthly.InexactFloat64(),
		PendingRepairs:   pendingRepairs,
		LowStock:         lowStockCount,
		LowStockItems:    lowStock,
		BrandSummary:     brandSummary(products, monthSales),
		ActiveDeliveries: activeDeliveries,
		TotalProducts:    len(products),
		TotalStaff:       totalStaff,
		TotalCustomers:   totalCustomers,
		TotalBrands:      distinctBrands(products),
		MonthlyExpenses:  monthlyExpenses.InexactFloat64(),
	}, nil
}

// lowStockItems lists products at or below their threshold, lowest stock
// first.
func lowStockItems(products []domain.Product) []domain.LowStockItem {
	items := make([]domain.LowStockItem, 0)
	for _, p := range products {
		if !p.IsLowStock() {
			continue
		}
		items = append(items, domain.LowStockItem{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Stock:    p.Stock,
			MinStock: p.Threshold(),
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Stock != items[j].Stock {
			return items[i].Stock < items[j].Stock
		}
		return items[i].Name < items[j].Name
	})
	return items
}

func brandSummary(products []domain.Product, sales []domain.Sale) []domain.BrandRevenue {
	brands := make(map[string]string, len(products))
	for _, p := range products {
		brands[p.ID] = strings.TrimSpace(p.Brand)
	}

	revenue := make(map[string]decimal.Decimal)
	for _, sale := range sales {
		for _, item := range sale.Items {
			brand := brands[item.ProductID]
			if brand == "" {
				brand = unbrandedLabel
			}
			line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
			revenue[brand] = revenue[brand].Add(line)
		}
	}

	names := make([]string, 0, len(revenue))
	for name := range revenue {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if c := revenue[names[i]].Cmp(revenue[names[j]]); c != 0 {
			return c > 0
		}
		return names[i] < names[j]
	})
	if len(names) > brandSummaryLimit {
		names = names[:brandSummaryLimit]
	}

	summary := make([]domain.BrandRevenue, 0, len(names))
	for _, name := range names {
		summary = append(summary, domain.BrandRevenue{Brand: name, Revenue: revenue[name].InexactFloat64()})
	}
	return summary
}

func distinctBrands(products []domain.Product) int {
	seen := make(map[string]struct{})
	for _, p := range products {
		if brand := strings.TrimSpace(p.Brand); brand != "" {
			seen[brand] = struct{}{}
		}
	}
	return len(seen)
}

// SalesTrend returns one point per calendar day for the last seven days,
// oldest first, today included.
func (s *Service) SalesTrend(ctx context.Context) ([]domain.SalesTrendPoint, error) {
	w := s.windows()
	first := w.dayStart.AddDate(0, 0, -(trendDays - 1))
	sales, err := s.repo.ListSalesBetween(ctx, first, w.dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	totals := make([]decimal.Decimal, trendDays)
	starts := make([]time.Time, trendDays)
	for i := range starts {
		starts[i] = first.AddDate(0, 0, i)
	}
	for _, sale := range sales {
		at := sale.Date.In(s.loc)
		for i := trendDays - 1; i >= 0; i-- {
			if !at.Before(starts[i]) {
				totals[i] = totals[i].Add(decimal.NewFromFloat(sale.TotalAmount))
				break
			}
		}
	}

	points := make([]domain.SalesTrendPoint, 0, trendDays)
	for i, start := range starts {
		points = append(points, domain.SalesTrendPoint{
			Date:  start.Format("Jan 2"),
			Day:   start.Format("2006-01-02"),
			Sales: totals[i].InexactFloat64(),
		})
	}
	return points, nil
}

// RecentActivity merges the newest sales and repairs into one feed.
func (s *Service) RecentActivity(ctx context.Context) ([]domain.Activity, error) {
	sales, err := s.repo.ListSales(ctx, activityLimit)
	if err != nil {
		return nil, err
	}
	repairs, err := s.repo.ListRepairs(ctx, activityLimit)
	if err != nil {
		return nil, err
	}

	feed := make([]domain.Activity, 0, len(sales)+len(repairs))
	for _, sale := range sales {
		feed = append(feed, domain.Activity{
			Type:          activityTypeSale,
			Message:       "New sale recorded - " + s.formatAmount(sale.TotalAmount),
			Time:          sale.Date,
			PaymentMethod: sale.PaymentMethod,
		})
	}
	for _, repair := range repairs {
		feed = append(feed, domain.Activity{
			Type:    activityTypeRepair,
			Message: "Repair job received - " + repair.DeviceModel + " (" + repair.Status + ")",
			Time:    repair.CreatedAt,
			Status:  repair.Status,
		})
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Time.After(feed[j].Time)
	})
	if len(feed) > activityLimit {
		feed = feed[:activityLimit]
	}
	return feed, nil
}

func (s *Service) formatAmount(amount float64) string {
	return activityPrinter.Sprintf("%s %v", s.currency, number.Decimal(amount, number.MaxFractionDigits(2)))
}
