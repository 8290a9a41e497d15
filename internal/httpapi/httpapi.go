package httpapi

import (
	"bufio"
	"encoding/json"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/service"
	"apexpos/backend/internal/store"
)

const (
	maxBodyBytes     = 1 << 20
	requestIDHeader  = "X-Request-ID"
	internalErrorMsg = "internal server error"
)

// Realtime serves the dashboard refresh channel.
type Realtime interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
}

type API struct {
	service       *service.Service
	auth          *AuthManager
	realtime      Realtime
	allowedOrigin string
	loginLimiter  *attemptLimiter
	log           zerolog.Logger
}

func New(svc *service.Service, auth *AuthManager, realtime Realtime, allowedOrigin string, logger zerolog.Logger) *API {
	return &API{
		service:       svc,
		auth:          auth,
		realtime:      realtime,
		allowedOrigin: allowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
		log:           logger.With().Str("component", "httpapi").Logger(),
	}
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	kept = append(kept, now)
	l.entries[key] = kept
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

var (
	anyRole   = []string{domain.RoleCashier, domain.RoleAdmin}
	adminOnly = []string{domain.RoleAdmin}
)

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", a.handleHealth)
	mux.HandleFunc("POST /api/auth/login", a.handleLogin)
	mux.HandleFunc("GET /ws", a.requireAuth(a.handleRealtime, anyRole...))

	mux.HandleFunc("GET /api/products", a.requireAuth(a.handleListProducts, anyRole...))
	mux.HandleFunc("POST /api/products", a.requireAuth(a.handleCreateProduct, adminOnly...))
	mux.HandleFunc("GET /api/products/{id}", a.requireAuth(a.handleGetProduct, anyRole...))
	mux.HandleFunc("PATCH /api/products/{id}/stock", a.requireAuth(a.handleDecrementStock, anyRole...))
	mux.HandleFunc("PATCH /api/products/{id}/refill", a.requireAuth(a.handleRefillStock, anyRole...))

	mux.HandleFunc("POST /api/sales", a.requireAuth(a.handleCreateSale, anyRole...))
	mux.HandleFunc("GET /api/sales", a.requireAuth(a.handleListSales, anyRole...))

	mux.HandleFunc("GET /api/categories", a.requireAuth(a.handleListCategories, anyRole...))
	mux.HandleFunc("POST /api/categories", a.requireAuth(a.handleCreateCategory, adminOnly...))
	mux.HandleFunc("DELETE /api/categories/{id}", a.requireAuth(a.handleDeleteCategory, adminOnly...))

	mux.HandleFunc("GET /api/dashboard/stats", a.requireAuth(a.handleDashboardStats, anyRole...))
	mux.HandleFunc("GET /api/dashboard/sales-trend", a.requireAuth(a.handleSalesTrend, anyRole...))
	mux.HandleFunc("GET /api/dashboard/recent-activity", a.requireAuth(a.handleRecentActivity, anyRole...))

	mux.HandleFunc("GET /api/repairs", a.requireAuth(a.handleListRepairs, anyRole...))
	mux.HandleFunc("POST /api/repairs", a.requireAuth(a.handleCreateRepair, anyRole...))
	mux.HandleFunc("PATCH /api/repairs/{id}/status", a.requireAuth(a.handleRepairStatus, anyRole...))

	mux.HandleFunc("GET /api/deliveries", a.requireAuth(a.handleListDeliveries, anyRole...))
	mux.HandleFunc("POST /api/deliveries", a.requireAuth(a.handleCreateDelivery, anyRole...))
	mux.HandleFunc("PATCH /api/deliveries/{id}/status", a.requireAuth(a.handleDeliveryStatus, anyRole...))
	mux.HandleFunc("DELETE /api/deliveries/{id}", a.requireAuth(a.handleDeleteDelivery, anyRole...))

	mux.HandleFunc("GET /api/hp", a.requireAuth(a.handleListHirePurchases, anyRole...))
	mux.HandleFunc("POST /api/hp", a.requireAuth(a.handleCreateHirePurchase, anyRole...))
	mux.HandleFunc("PATCH /api/hp/{id}/collect", a.requireAuth(a.handleCollectPayment, anyRole...))

	mux.HandleFunc("GET /api/expenses", a.requireAuth(a.handleListExpenses, anyRole...))
	mux.HandleFunc("POST /api/expenses", a.requireAuth(a.handleCreateExpense, anyRole...))
	mux.HandleFunc("DELETE /api/expenses/{id}", a.requireAuth(a.handleDeleteExpense, adminOnly...))

	mux.HandleFunc("GET /api/registration/staff", a.requireAuth(a.handleListStaff, anyRole...))
	mux.HandleFunc("POST /api/registration/staff", a.requireAuth(a.handleCreateStaff, adminOnly...))
	mux.HandleFunc("PATCH /api/registration/staff/{id}", a.requireAuth(a.handleUpdateStaff, adminOnly...))
	mux.HandleFunc("DELETE /api/registration/staff/{id}", a.requireAuth(a.handleDeleteStaff, adminOnly...))
	mux.HandleFunc("GET /api/registration/customers", a.requireAuth(a.handleListCustomers, anyRole...))
	mux.HandleFunc("POST /api/registration/customers", a.requireAuth(a.handleCreateCustomer, adminOnly...))
	mux.HandleFunc("PATCH /api/registration/customers/{id}", a.requireAuth(a.handleUpdateCustomer, adminOnly...))
	mux.HandleFunc("DELETE /api/registration/customers/{id}", a.requireAuth(a.handleDeleteCustomer, adminOnly...))
	mux.HandleFunc("GET /api/registration/suppliers", a.requireAuth(a.handleListSuppliers, anyRole...))
	mux.HandleFunc("POST /api/registration/suppliers", a.requireAuth(a.handleCreateSupplier, adminOnly...))
	mux.HandleFunc("PATCH /api/registration/suppliers/{id}", a.requireAuth(a.handleUpdateSupplier, adminOnly...))
	mux.HandleFunc("DELETE /api/registration/suppliers/{id}", a.requireAuth(a.handleDeleteSupplier, adminOnly...))

	mux.HandleFunc("POST /api/reloads", a.requireAuth(a.handleCreateReload, anyRole...))
	mux.HandleFunc("GET /api/reloads/history", a.requireAuth(a.handleReloadHistory, anyRole...))

	mux.HandleFunc("GET /api/notifications", a.requireAuth(a.handleListNotifications, anyRole...))
	mux.HandleFunc("POST /api/notifications", a.requireAuth(a.handleCreateNotification, adminOnly...))
	mux.HandleFunc("PATCH /api/notifications/read-all", a.requireAuth(a.handleReadAllNotifications, anyRole...))
	mux.HandleFunc("PATCH /api/notifications/{id}/read", a.requireAuth(a.handleReadNotification, anyRole...))
	mux.HandleFunc("DELETE /api/notifications", a.requireAuth(a.handleClearNotifications, adminOnly...))

	mux.HandleFunc("GET /api/reports/profit-loss", a.requireAuth(a.handleProfitLoss, adminOnly...))
	mux.HandleFunc("GET /api/reports/daily-closing", a.requireAuth(a.handleDailyClosing, adminOnly...))
	mux.HandleFunc("GET /api/reports/low-stock", a.requireAuth(a.handleLowStockReport, adminOnly...))
	mux.HandleFunc("GET /api/reports/sales", a.requireAuth(a.handleSalesReport, adminOnly...))
	mux.HandleFunc("GET /api/reports/sales.csv", a.requireAuth(a.handleSalesCSV, adminOnly...))
	mux.HandleFunc("GET /api/reports/stock", a.requireAuth(a.handleStockReport, adminOnly...))
	mux.HandleFunc("GET /api/reports/salary", a.requireAuth(a.handleSalaryReport, adminOnly...))
	mux.HandleFunc("GET /api/reports/expenses", a.requireAuth(a.handleExpensesReport, adminOnly...))
	mux.HandleFunc("GET /api/reports/repair-profit", a.requireAuth(a.handleRepairProfitReport, adminOnly...))
	mux.HandleFunc("GET /api/reports/suppliers", a.requireAuth(a.handleSupplierReport, adminOnly...))
	mux.HandleFunc("GET /api/reports/vehicle-load", a.requireAuth(a.handleVehicleLoadReport, adminOnly...))
	mux.HandleFunc("GET /api/reports/type/{type}", a.requireAuth(a.handleTypedReport, adminOnly...))

	return a.withMiddleware(mux)
}

func (a *API) requireAuth(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			a.writeError(w, r, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		actor, err := a.auth.ParseToken(token)
		if err != nil {
			a.writeError(w, r, http.StatusUnauthorized, err)
			return
		}

		if len(roles) > 0 && !isRoleAllowed(actor.Role, roles) {
			a.writeError(w, r, http.StatusForbidden, errors.New("forbidden role"))
			return
		}

		next(w, r.WithContext(service.WithActor(r.Context(), actor)))
	}
}

// bearerToken reads the Authorization header, or the token query parameter
// on the websocket upgrade where browsers cannot set headers.
func bearerToken(r *http.Request) string {
	authorization := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
		return strings.TrimSpace(authorization[len("Bearer "):])
	}
	if r.URL.Path == "/ws" {
		return strings.TrimSpace(r.URL.Query().Get("token"))
	}
	return ""
}

func isRoleAllowed(role string, allowed []string) bool {
	for _, allow := range allowed {
		if role == allow {
			return true
		}
	}
	return false
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"stockPolicy": a.service.StockPolicy(),
		"at":          time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !a.loginLimiter.Allow(clientKey(r)) {
		a.writeError(w, r, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(req)
	if err != nil {
		a.writeError(w, r, http.StatusUnauthorized, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleRealtime(w http.ResponseWriter, r *http.Request) {
	if a.realtime == nil {
		a.writeError(w, r, http.StatusServiceUnavailable, errors.New("realtime channel disabled"))
		return
	}
	a.realtime.ServeWS(w, r)
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, requestID)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		logger := a.log.With().Str("request_id", requestID).Logger()
		r = r.WithContext(logger.WithContext(r.Context()))

		startedAt := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		event := logger.Info()
		switch {
		case rec.status >= 500:
			event = logger.Error()
		case rec.status >= 400:
			event = logger.Warn()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("latency", time.Since(startedAt)).
			Str("client_ip", clientKey(r)).
			Msg("request")
	})
}

// statusRecorder captures the response status for the request log. It keeps
// Hijack available for the websocket upgrade.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(status int) {
	if !s.wroteHeader {
		s.status = status
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.wroteHeader = true
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// fail maps a service error onto a response. subject names the resource in
// not-found messages.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error, subject string) {
	a.failWith(w, r, err, subject, internalErrorMsg)
}

func (a *API) failWith(w http.ResponseWriter, r *http.Request, err error, subject string, internalMsg string) {
	var inputErr *service.InputError
	var notFound *service.NotFoundError
	switch {
	case errors.As(err, &inputErr):
		writeMessage(w, http.StatusBadRequest, inputErr.Message)
	case errors.As(err, &notFound):
		writeMessage(w, http.StatusNotFound, notFound.Message)
	case errors.Is(err, store.ErrNotFound):
		writeMessage(w, http.StatusNotFound, subject+" not found")
	case errors.Is(err, store.ErrInsufficientStock):
		writeMessage(w, http.StatusConflict, "Insufficient stock")
	case errors.Is(err, store.ErrDuplicate), errors.Is(err, store.ErrInvalidRecord):
		a.writeError(w, r, http.StatusBadRequest, err)
	case errors.Is(err, service.ErrAdminRequired):
		a.writeError(w, r, http.StatusForbidden, err)
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeMessage(w, http.StatusInternalServerError, internalMsg)
	}
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	// 5xx causes stay in the log; 4xx messages are meant for the client.
	msg := err.Error()
	if status >= 500 {
		zerolog.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg("internal error")
		msg = internalErrorMsg
	}
	writeMessage(w, status, msg)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"message": msg})
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errors.New("request body too large")
		}
		return errors.Wrap(err, "invalid request body")
	}
	return nil
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
