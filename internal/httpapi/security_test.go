package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"apexpos/backend/internal/domain"
)

func TestMiddlewareSetsSecurityHeaders(t *testing.T) {
	env := newTestEnv(t, domain.StockPolicyAllowNegative, nil)
	res := env.do(t, http.MethodGet, "/healthz", "", nil)

	if got := res.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected X-Content-Type-Options nosniff, got %q", got)
	}
	if got := res.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("expected X-Frame-Options DENY, got %q", got)
	}
	if got := res.Header().Get("Referrer-Policy"); got == "" {
		t.Fatalf("expected Referrer-Policy to be set")
	}
	if got := res.Header().Get(requestIDHeader); got == "" {
		t.Fatalf("expected a generated request id")
	}
}

func TestMiddlewareKeepsIncomingRequestID(t *testing.T) {
	env := newTestEnv(t, domain.StockPolicyAllowNegative, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "till-3-0042")
	res := httptest.NewRecorder()

	env.handler.ServeHTTP(res, req)

	if got := res.Header().Get(requestIDHeader); got != "till-3-0042" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}
}

func TestPreflightReturnsNoContent(t *testing.T) {
	env := newTestEnv(t, domain.StockPolicyAllowNegative, nil)
	res := env.do(t, http.MethodOptions, "/api/sales", "", nil)

	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	if got := res.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("unexpected allowed origin %q", got)
	}
}

func TestLoginRateLimitReturns429(t *testing.T) {
	env := newTestEnv(t, domain.StockPolicyAllowNegative, nil)
	body, _ := json.Marshal(domain.LoginRequest{Username: "admin", Password: "wrong-pass"})

	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "127.0.0.1:5000"
		res := httptest.NewRecorder()

		env.handler.ServeHTTP(res, req)

		if i < 5 && res.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d expected 401 before limit, got %d", i+1, res.Code)
		}
		if i == 5 && res.Code != http.StatusTooManyRequests {
			t.Fatalf("attempt 6 expected 429, got %d", res.Code)
		}
	}
}

func TestJSONBodyTooLargeRejected(t *testing.T) {
	env := newTestEnv(t, domain.StockPolicyAllowNegative, nil)
	veryLong := strings.Repeat("a", (1<<20)+1024)
	body := fmt.Sprintf(`{"username":"%s","password":"x"}`, veryLong)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()

	env.handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for too large body, got %d", res.Code)
	}
	if msg := messageOf(t, res); msg != "request body too large" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t, domain.StockPolicyAllowNegative, nil)

	for _, path := range []string{"/api/products", "/api/dashboard/stats", "/api/sales"} {
		res := env.do(t, http.MethodGet, path, "", nil)
		if res.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, res.Code)
		}
	}

	res := env.do(t, http.MethodGet, "/api/products", "not-a-jwt", nil)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", res.Code)
	}
}

func TestQueryTokenOnlyAcceptedOnWebsocket(t *testing.T) {
	env := newTestEnv(t, domain.StockPolicyAllowNegative, nil)
	token := env.login(t, "cashier", cashierPassword)

	res := env.do(t, http.MethodGet, "/api/products?token="+token, "", nil)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for query token outside /ws, got %d", res.Code)
	}
}

func TestCashierCannotReachAdminRoutes(t *testing.T) {
	env := newTestEnv(t, domain.StockPolicyAllowNegative, nil)
	token := env.login(t, "cashier", cashierPassword)

	cases := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/reports/profit-loss", nil},
		{http.MethodGet, "/api/reports/sales.csv", nil},
		{http.MethodPost, "/api/products", map[string]any{"name": "Cable", "price": 900}},
		{http.MethodPost, "/api/registration/staff", map[string]any{"name": "Nimal", "email": "nimal@shop.lk"}},
		{http.MethodDelete, "/api/notifications", nil},
	}
	for _, tc := range cases {
		res := env.do(t, tc.method, tc.path, token, tc.body)
		if res.Code != http.StatusForbidden {
			t.Fatalf("%s %s: expected 403, got %d", tc.method, tc.path, res.Code)
		}
	}
}

func TestRealtimeDisabledReturns503(t *testing.T) {
	env := newTestEnv(t, domain.StockPolicyAllowNegative, nil)
	token := env.login(t, "cashier", cashierPassword)

	res := env.do(t, http.MethodGet, "/ws", token, nil)
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}

func TestParsePositiveLimitCaps(t *testing.T) {
	if got := parsePositiveLimit("9999", 50, 200); got != 200 {
		t.Fatalf("expected capped limit 200, got %d", got)
	}
	if got := parsePositiveLimit("-1", 50, 200); got != 50 {
		t.Fatalf("expected fallback 50 for negative, got %d", got)
	}
	if got := parsePositiveLimit("abc", 0, 0); got != 0 {
		t.Fatalf("expected fallback 0 for garbage, got %d", got)
	}
}

func TestClientKeyStripsPort(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.20:51234"
	if got := clientKey(req); got != "192.168.1.20" {
		t.Fatalf("unexpected client key %q", got)
	}
}
