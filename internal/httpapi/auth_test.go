package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/realtime"
)

// mustHashPassword generates a bcrypt hash of the given password or fails the test.
func mustHashPassword(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

func TestLoginIssuesTokenWithRole(t *testing.T) {
	auth, err := NewAuthManager(testSecret, time.Hour,
		Credential{Username: " Admin ", Password: adminPassword, Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("new auth manager: %v", err)
	}

	resp, err := auth.Login(domain.LoginRequest{Username: "ADMIN", Password: adminPassword})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.User.Name != "admin" || resp.User.Role != domain.RoleAdmin {
		t.Fatalf("unexpected login response %+v", resp)
	}

	actor, err := auth.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if actor.Username != "admin" || actor.Role != domain.RoleAdmin {
		t.Fatalf("unexpected actor %+v", actor)
	}
}

func TestLoginAcceptsPreHashedPassword(t *testing.T) {
	auth, err := NewAuthManager(testSecret, time.Hour, Credential{
		Username: "cashier",
		Password: mustHashPassword(t, cashierPassword),
		Role:     domain.RoleCashier,
	})
	if err != nil {
		t.Fatalf("new auth manager: %v", err)
	}

	if _, err := auth.Login(domain.LoginRequest{Username: "cashier", Password: cashierPassword}); err != nil {
		t.Fatalf("login with hashed credential: %v", err)
	}
	if _, err := auth.Login(domain.LoginRequest{Username: "cashier", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestBlankCredentialIsSkipped(t *testing.T) {
	auth, err := NewAuthManager(testSecret, time.Hour, Credential{Username: "cashier", Password: "  ", Role: domain.RoleCashier})
	if err != nil {
		t.Fatalf("new auth manager: %v", err)
	}
	if _, err := auth.Login(domain.LoginRequest{Username: "cashier", Password: ""}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	auth, err := NewAuthManager(testSecret, time.Minute,
		Credential{Username: "cashier", Password: cashierPassword, Role: domain.RoleCashier})
	if err != nil {
		t.Fatalf("new auth manager: %v", err)
	}
	auth.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	resp, err := auth.Login(domain.LoginRequest{Username: "cashier", Password: cashierPassword})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := auth.ParseToken(resp.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenFromOtherSecretRejected(t *testing.T) {
	other, err := NewAuthManager("another-secret-key-with-32-bytes!!", time.Hour,
		Credential{Username: "admin", Password: adminPassword, Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("new auth manager: %v", err)
	}
	resp, err := other.Login(domain.LoginRequest{Username: "admin", Password: adminPassword})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	auth, err := NewAuthManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("new auth manager: %v", err)
	}
	if _, err := auth.ParseToken(resp.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenWithForeignIssuerRejected(t *testing.T) {
	auth, err := NewAuthManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("new auth manager: %v", err)
	}
	claims := posCustomClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "admin",
			Issuer:    "someone-else",
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: domain.RoleAdmin,
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := auth.ParseToken(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestWebsocketUpgradeWithQueryToken(t *testing.T) {
	hub := realtime.NewHub("*", zerolog.Nop())
	defer hub.Close()
	env := newTestEnv(t, domain.StockPolicyAllowNegative, hub)
	token := env.login(t, "cashier", cashierPassword)

	srv := httptest.NewServer(env.handler)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token

	if _, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil); err == nil {
		t.Fatalf("expected dial without token to fail")
	} else if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %v", resp)
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	display := env.product(t, "iPhone X Display (OLED)")
	res := env.do(t, http.MethodPost, "/api/sales", token, domain.SaleCreateRequest{
		Items:       []domain.SaleItem{{ProductID: display.ID, Name: display.Name, Price: display.Price, Quantity: 1}},
		TotalAmount: display.Price,
	})
	if res.Code != http.StatusCreated {
		t.Fatalf("create sale: expected 201, got %d", res.Code)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg realtime.Message
	if err := json.Unmarshal(frame, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Event != "dashboardUpdate" {
		t.Fatalf("unexpected event %q", msg.Event)
	}
}
