package httpapi

import (
	"bytes"
	"net/http"

	"apexpos/backend/internal/domain"
)

const saleFailedMsg = "Failed to process sale"

// nonNil keeps empty collections encoded as [] instead of null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.service.ListProducts(r.Context())
	if err != nil {
		a.fail(w, r, err, "Product")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(products))
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := a.service.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		a.fail(w, r, err, "Product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (a *API) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	product, err := a.service.CreateProduct(r.Context(), req)
	if err != nil {
		a.fail(w, r, err, "Product")
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (a *API) handleDecrementStock(w http.ResponseWriter, r *http.Request) {
	var req domain.StockQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	product, err := a.service.DecrementStock(r.Context(), r.PathValue("id"), req)
	if err != nil {
		a.fail(w, r, err, "Product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (a *API) handleRefillStock(w http.ResponseWriter, r *http.Request) {
	var req domain.StockQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	product, err := a.service.RefillStock(r.Context(), r.PathValue("id"), req)
	if err != nil {
		a.fail(w, r, err, "Product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (a *API) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var req domain.SaleCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	sale, err := a.service.CreateSale(r.Context(), req)
	if err != nil {
		a.failWith(w, r, err, "Product", saleFailedMsg)
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

func (a *API) handleListSales(w http.ResponseWriter, r *http.Request) {
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 0, 0)
	sales, err := a.service.ListSales(r.Context(), limit)
	if err != nil {
		a.fail(w, r, err, "Sale")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(sales))
}

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.service.ListCategories(r.Context())
	if err != nil {
		a.fail(w, r, err, "Category")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(categories))
}

func (a *API) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req domain.CategoryCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	category, err := a.service.CreateCategory(r.Context(), req)
	if err != nil {
		a.fail(w, r, err, "Category")
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (a *API) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		a.fail(w, r, err, "Category")
		return
	}
	writeMessage(w, http.StatusOK, "Category deleted successfully")
}

func (a *API) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.service.Stats(r.Context())
	if err != nil {
		a.failWith(w, r, err, "", "Failed to fetch stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) handleSalesTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := a.service.SalesTrend(r.Context())
	if err != nil {
		a.failWith(w, r, err, "", "Failed to fetch sales trend")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(trend))
}

func (a *API) handleRecentActivity(w http.ResponseWriter, r *http.Request) {
	feed, err := a.service.RecentActivity(r.Context())
	if err != nil {
		a.failWith(w, r, err, "", "Failed to fetch recent activity")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(feed))
}

func (a *API) handleProfitLoss(w http.ResponseWriter, r *http.Request) {
	report, err := a.service.ProfitLoss(r.Context())
	if err != nil {
		a.fail(w, r, err, "Report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleDailyClosing(w http.ResponseWriter, r *http.Request) {
	report, err := a.service.DailyClosing(r.Context())
	if err != nil {
		a.fail(w, r, err, "Report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleLowStockReport(w http.ResponseWriter, r *http.Request) {
	products, err := a.service.LowStockReport(r.Context())
	if err != nil {
		a.fail(w, r, err, "Report")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(products))
}

func (a *API) handleSalesReport(w http.ResponseWriter, r *http.Request) {
	sales, err := a.service.SalesReport(r.Context())
	if err != nil {
		a.fail(w, r, err, "Report")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(sales))
}

func (a *API) handleSalesCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := a.service.WriteSalesCSV(r.Context(), &buf); err != nil {
		a.fail(w, r, err, "Report")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sales.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (a *API) handleStockReport(w http.ResponseWriter, r *http.Request) {
	rows, err := a.service.StockReport(r.Context())
	if err != nil {
		a.fail(w, r, err, "Report")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(rows))
}

func (a *API) handleSalaryReport(w http.ResponseWriter, r *http.Request) {
	rows, err := a.service.SalaryReport(r.Context())
	if err != nil {
		a.fail(w, r, err, "Report")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(rows))
}

func (a *API) handleExpensesReport(w http.ResponseWriter, r *http.Request) {
	expenses, err := a.service.ExpensesReport(r.Context())
	if err != nil {
		a.fail(w, r, err, "Report")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(expenses))
}

func (a *API) handleRepairProfitReport(w http.ResponseWriter, r *http.Request) {
	report, err := a.service.RepairProfitReport(r.Context())
	if err != nil {
		a.fail(w, r, err, "Report")
		return
	}
	report.Repairs = nonNil(report.Repairs)
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleSupplierReport(w http.ResponseWriter, r *http.Request) {
	suppliers, err := a.service.SupplierReport(r.Context())
	if err != nil {
		a.fail(w, r, err, "Report")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(suppliers))
}

func (a *API) handleVehicleLoadReport(w http.ResponseWriter, r *http.Request) {
	deliveries, err := a.service.VehicleLoadReport(r.Context())
	if err != nil {
		a.fail(w, r, err, "Report")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(deliveries))
}

func (a *API) handleTypedReport(w http.ResponseWriter, r *http.Request) {
	sales, err := a.service.SalesByType(r.Context(), r.PathValue("type"))
	if err != nil {
		a.fail(w, r, err, "Report")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(sales))
}
