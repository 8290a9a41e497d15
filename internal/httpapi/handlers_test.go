package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/service"
	"apexpos/backend/internal/stock"
	"apexpos/backend/internal/store/memory"
)

const (
	testSecret      = "test-secret-key-with-at-least-32-bytes"
	adminPassword   = "admin-pass-123"
	cashierPassword = "cashier-pass-123"
)

type testEnv struct {
	api      *API
	handler  http.Handler
	repo     *memory.Store
	adjuster *stock.Adjuster
}

// newTestEnv builds the full API over the seeded memory store so handler
// tests exercise the complete request path.
func newTestEnv(t *testing.T, policy string, realtime Realtime) testEnv {
	t.Helper()

	repo := memory.NewSeeded()
	adjuster, err := stock.New(repo, 2, zerolog.Nop())
	if err != nil {
		t.Fatalf("new adjuster: %v", err)
	}
	t.Cleanup(adjuster.Close)

	var notifier service.Notifier
	if n, ok := realtime.(service.Notifier); ok {
		notifier = n
	}
	svc := service.New(repo, adjuster, notifier, service.Options{
		StockPolicy: policy,
		Logger:      zerolog.Nop(),
	})
	auth, err := NewAuthManager(testSecret, time.Hour,
		Credential{Username: "admin", Password: adminPassword, Role: domain.RoleAdmin},
		Credential{Username: "cashier", Password: cashierPassword, Role: domain.RoleCashier},
	)
	if err != nil {
		t.Fatalf("new auth manager: %v", err)
	}

	api := New(svc, auth, realtime, "*", zerolog.Nop())
	return testEnv{api: api, handler: api.Handler(), repo: repo, adjuster: adjuster}
}

func (e testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d (body: %s)", username, rec.Code, rec.Body.String())
	}
	var resp domain.LoginResponse
	decodeBody(t, rec, &resp)
	return resp.AccessToken
}

func (e testEnv) do(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e testEnv) product(t *testing.T, name string) domain.Product {
	t.Helper()
	products, err := e.repo.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	for _, p := range products {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("product %q not seeded", name)
	return domain.Product{}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dest); err != nil {
		t.Fatalf("decode body: %v (body: %s)", err, rec.Body.String())
	}
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	decodeBody(t, rec, &body)
	msg, _ := body["message"].(string)
	return msg
}

func TestHandleHealth(t *testing.T) {
	env := newTestEnv(t, domain.StockPolicyAllowNegative, nil)

	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	decodeBody(t, rec, &body)
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
	if body["stockPolicy"] != domain.StockPolicyAllowNegative {
		t.Fatalf("unexpected stock policy %v", body["stockPolicy"])
	}
}

func TestListProducts(t *testing.T) {
	env := newTestEnv(t, domain.StockPolicyAllowNegative, nil)
	token := env.login(t, "cashier", cashierPassword)

	rec := env.do(t, http.MethodGet, "/api/products", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var products []domain.Product
	decodeBody(t, rec, &products)
	if len(products) != 9 {
		t.Fatalf("expected 9 seeded products, got %d", len(products))
	}
}

func TestGetProductNotFound(t *testing.T) {
	env := newTestEnv(t, domain.StockPolicyAllowNegative, nil)
	token := env.login(t, "cashier", cashierPassword)

	for _, id := range []string{"not-an-id", "000000000000000000000000"} {
		rec := env.do(t, http.MethodGet, "/api/products/"+id, token, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", id, rec.Code)
		}
		if msg := messageOf(t, rec); msg != "Product not found" {
			t.Fatalf("%s: unexpected message %q", id, msg)
		}
	}
}

func TestCreateSaleDecrementsStockAfterResponse(t *testing.T) {
	env := newTestEnv(t, domain.StockPolicyAllowNegative, nil)
	token := env.login(t, "cashier", cashierPassword)
	display := env.product(t, "iPhone X Display (OLED)")

	rec := env.do(t, http.MethodPost, "/api/sales", token, domain.SaleCreateRequest{
		Items: []domain.SaleItem{
			{ProductID: display.ID, Name: display.Name, Price: display.Price, Quantity: 7},
		},
		TotalAmount: 175000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var sale domain.Sale
	decodeBody(t, rec, &sale)
	if sale.ID == "" || sale.PaymentMethod != domain.PaymentMethodCash {
		t.Fatalf("unexpected sale %+v", sale)
	}

	env.adjuster.Wait()
	if got := env.product(t, display.Name).Stock; got != -2 {
		t.Fatalf("expected stock -2 after oversell, got %d", got)
	}
}

func TestCreateSaleStrictPolicyRejectsOversell(t *testing.T) {
	env := newTestEnv(t, domain.StockPolicyStrict, nil)
	token := env.login(t, "cashier", cashierPassword)
	display := env.product(t, "iPhone X Display (OLED)")

	rec := env.do(t, http.MethodPost, "/api/sales", token, domain.SaleCreateRequest{
		Items:       []domain.SaleItem{{ProductID: display.ID, Name: display.Name, Price: display.Price, Quantity: 6}},
		TotalAmount: 150000,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if msg := messageOf(t, rec); msg != "Insufficient stock" {
		t.Fatalf("unexpected message %q", msg)
	}
	if got := env.product(t, display.Name).Stock; got != 5 {
		t.Fatalf("expected stock untouched at 5, got %d", got)
	}
}

func TestCreateSaleValidation(t *testing.T) {
	env := newTestEnv(t, domain.StockPolicyAllowNegative, nil)
	token := env.login(t, "cashier", cashierPassword)

	rec := env.do(t, http.MethodPost, "/api/sales", token, domain.SaleCreateRequest{TotalAmount: 100})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := messageOf(t, rec); !strings.Contains(msg, "items") {
		t.Fatalf("expected message about items, got %q", msg)
	}

	rec = env.do(t, http.MethodPost, "/api/sales", token, map[string]any{"items": []any{}, "bogus": true})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: expected 400, got %d", rec.Code)
	}
}

func TestListSalesHonoursLimit(t *testing.T) {
	env := newTestEnv(t, domain.StockPolicyAllowNegative, nil)
	token := env.login(t, "cashier", cashierPassword)
	cover := env.product(t, "Silicone Back Cover")

	for range 3 {
		rec := env.do(t, http.MethodPost, "/api/sales", token, domain.SaleCreateRequest{
			Items:       []domain.SaleItem{{ProductID: cover.ID, Name: cover.Name, Price: cover.Price, Quantity: 1}},
			TotalAmount: cover.Price,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create sale: %d", rec.Code)
		}
	}
	env.adjuster.Wait()

	rec := env.do(t, http.MethodGet, "/api/sales?limit=2", token, nil)
	var sales []domain.Sale
	decodeBody(t, rec, &sales)
	if len(sales) != 2 {
		t.Fatalf("expected 2 sales, got %d", len(sales))
	}
}

func TestRefillStock(t *testing.T) {
	env := newTestEnv(t, domain.StockPolicyAllowNegative, nil)
	token := env.login(t, "cashier", cashierPassword)
	battery := env.product(t, "Samsung A12 Battery")

	rec := env.do(t, http.MethodPatch, "/api/products/"+battery.ID+"/refill", token, map[string]int{"quantity": 5})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var updated domain.Product
	decodeBody(t, rec, &updated)
	if updated.Stock != 15 {
		t.Fatalf("expected stock 15, got %d", updated.Stock)
	}
}

func TestDashboardEndpoints(t *testing.T) {
	env := newTestEnv(t, domain.StockPolicyAllowNegative, nil)
	token := env.login(t, "cashier", cashierPassword)

	rec := env.do(t, http.MethodGet, "/api/dashboard/stats", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", rec.Code)
	}
	var stats domain.DashboardStats
	decodeBody(t, rec, &stats)
	if stats.TotalProducts != 9 {
		t.Fatalf("expected 9 products, got %d", stats.TotalProducts)
	}

	rec = env.do(t, http.MethodGet, "/api/dashboard/sales-trend", token, nil)
	var trend []domain.SalesTrendPoint
	decodeBody(t, rec, &trend)
	if len(trend) != 7 {
		t.Fatalf("expected 7 trend points, got %d", len(trend))
	}

	rec = env.do(t, http.MethodGet, "/api/dashboard/recent-activity", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("activity: expected 200, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("expected empty feed, got %s", body)
	}
}

func TestCategoryDeleteMessage(t *testing.T) {
	env := newTestEnv(t, domain.StockPolicyAllowNegative, nil)
	token := env.login(t, "admin", adminPassword)

	rec := env.do(t, http.MethodPost, "/api/categories", token, map[string]string{"name": "Tablets"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var category domain.Category
	decodeBody(t, rec, &category)

	rec = env.do(t, http.MethodPost, "/api/categories", token, map[string]string{"name": "Tablets"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate: expected 400, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodDelete, "/api/categories/"+category.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	if msg := messageOf(t, rec); msg != "Category deleted successfully" {
		t.Fatalf("unexpected message %q", msg)
	}

	rec = env.do(t, http.MethodDelete, "/api/categories/"+category.ID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rec.Code)
	}
}

func TestHirePurchaseCollect(t *testing.T) {
	env := newTestEnv(t, domain.StockPolicyAllowNegative, nil)
	token := env.login(t, "cashier", cashierPassword)

	rec := env.do(t, http.MethodPost, "/api/hp", token, map[string]any{
		"customerName": "Kamal Perera",
		"productName":  "Redmi Note 13",
		"totalAmount":  65000,
		"downPayment":  15000,
		"installments": []map[string]any{
			{"date": "2026-04-01T00:00:00Z", "amount": 25000},
			{"date": "2026-05-01T00:00:00Z", "amount": 25000},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var account domain.HirePurchase
	decodeBody(t, rec, &account)

	rec = env.do(t, http.MethodPatch, "/api/hp/"+account.ID+"/collect", token, map[string]string{"installmentId": "missing"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing installment: expected 404, got %d", rec.Code)
	}
	if msg := messageOf(t, rec); msg != "Installment not found" {
		t.Fatalf("unexpected message %q", msg)
	}

	for _, in := range account.Installments {
		rec = env.do(t, http.MethodPatch, "/api/hp/"+account.ID+"/collect", token, map[string]string{"installmentId": in.ID})
		if rec.Code != http.StatusOK {
			t.Fatalf("collect: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
		}
	}
	decodeBody(t, rec, &account)
	if account.Status != domain.HireStatusCompleted {
		t.Fatalf("expected Completed, got %q", account.Status)
	}

	rec = env.do(t, http.MethodPatch, "/api/hp/ffffffffffffffffffffffff/collect", token, map[string]string{"installmentId": "x"})
	if msg := messageOf(t, rec); rec.Code != http.StatusNotFound || msg != "HP Account not found" {
		t.Fatalf("unknown account: got %d %q", rec.Code, msg)
	}
}

func TestNotificationBulkMessages(t *testing.T) {
	env := newTestEnv(t, domain.StockPolicyAllowNegative, nil)
	admin := env.login(t, "admin", adminPassword)

	rec := env.do(t, http.MethodPost, "/api/notifications", admin, map[string]string{
		"title":       "Low stock",
		"description": "Screen protectors are running out",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPatch, "/api/notifications/read-all", admin, nil)
	if msg := messageOf(t, rec); msg != "All notifications marked as read" {
		t.Fatalf("unexpected read-all message %q", msg)
	}

	rec = env.do(t, http.MethodDelete, "/api/notifications", admin, nil)
	if msg := messageOf(t, rec); msg != "All notifications cleared" {
		t.Fatalf("unexpected clear message %q", msg)
	}

	rec = env.do(t, http.MethodGet, "/api/notifications", admin, nil)
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("expected empty list, got %s", body)
	}
}

func TestSalesCSVExport(t *testing.T) {
	env := newTestEnv(t, domain.StockPolicyAllowNegative, nil)
	admin := env.login(t, "admin", adminPassword)
	charger := env.product(t, "Samsung 45W Charger")

	rec := env.do(t, http.MethodPost, "/api/sales", admin, domain.SaleCreateRequest{
		Items:       []domain.SaleItem{{ProductID: charger.ID, Name: charger.Name, Price: charger.Price, Quantity: 2}},
		TotalAmount: 24000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create sale: %d", rec.Code)
	}
	env.adjuster.Wait()

	rec = env.do(t, http.MethodGet, "/api/reports/sales.csv", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "Samsung 45W Charger") {
		t.Fatalf("row missing product name: %s", lines[1])
	}
}

func TestTypedReportUnknown(t *testing.T) {
	env := newTestEnv(t, domain.StockPolicyAllowNegative, nil)
	admin := env.login(t, "admin", adminPassword)

	rec := env.do(t, http.MethodGet, "/api/reports/type/attendance", admin, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if msg := messageOf(t, rec); msg != "Report type not found" {
		t.Fatalf("unexpected message %q", msg)
	}

	rec = env.do(t, http.MethodGet, "/api/reports/type/returns", admin, nil)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("returns: got %d %s", rec.Code, rec.Body.String())
	}
}
