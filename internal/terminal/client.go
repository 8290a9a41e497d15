// Package terminal is the till-side client: it keeps the cart, talks to the
// POS API and listens for dashboard refresh signals.
package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"apexpos/backend/internal/cart"
	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/realtime"
)

const (
	maxResponseBytes   = 4 << 20
	defaultHTTPTimeout = 15 * time.Second
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrUnknownProduct = errors.New("product not in catalog")
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL  *url.URL
	http     *http.Client
	storage  cart.Storage
	state    cart.State
	products map[string]domain.Product
	log      zerolog.Logger
}

// New restores the saved terminal state from storage.
func New(ctx context.Context, baseURL string, storage cart.Storage, logger zerolog.Logger) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse server url")
	}
	state, err := cart.Load(ctx, storage)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:  parsed,
		http:     &http.Client{Timeout: defaultHTTPTimeout},
		storage:  storage,
		state:    state,
		products: make(map[string]domain.Product),
		log:      logger.With().Str("component", "terminal").Logger(),
	}, nil
}

func (c *Client) Cart() *cart.Cart {
	return &c.state.Cart
}

func (c *Client) User() (domain.SessionUser, bool) {
	if !c.state.IsAuthenticated || c.state.User == nil {
		return domain.SessionUser{}, false
	}
	return *c.state.User, true
}

func (c *Client) Persist(ctx context.Context) error {
	return cart.Save(ctx, c.storage, c.state)
}

func (c *Client) Login(ctx context.Context, username, password string) (domain.LoginResponse, error) {
	var resp domain.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", domain.LoginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	user := resp.User
	c.state.User = &user
	c.state.IsAuthenticated = true
	c.state.Token = resp.AccessToken
	c.state.ExpiresAt = resp.ExpiresAt
	return resp, c.Persist(ctx)
}

// Logout drops the session and keeps the cart.
func (c *Client) Logout(ctx context.Context) error {
	c.state.User = nil
	c.state.IsAuthenticated = false
	c.state.Token = ""
	c.state.ExpiresAt = ""
	return c.Persist(ctx)
}

// Products loads the catalog and keeps it as the stock snapshot the cart
// checks against.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &products); err != nil {
		return nil, err
	}
	c.products = make(map[string]domain.Product, len(products))
	for _, p := range products {
		c.products[p.ID] = p
	}
	return products, nil
}

// AddToCart adds one unit of a catalog product using the last loaded stock.
func (c *Client) AddToCart(ctx context.Context, productID string) error {
	product, ok := c.products[productID]
	if !ok {
		return ErrUnknownProduct
	}
	if err := c.state.Cart.Add(product); err != nil {
		return err
	}
	return c.Persist(ctx)
}

// Checkout sends the cart as a sale. The cart is cleared only when the
// server accepted the sale; on any failure it is left for a retry.
func (c *Client) Checkout(ctx context.Context, paymentMethod string) (domain.Sale, error) {
	if c.state.Cart.Empty() {
		return domain.Sale{}, ErrEmptyCart
	}

	var sale domain.Sale
	if err := c.do(ctx, http.MethodPost, "/api/sales", c.state.Cart.SaleRequest(paymentMethod), &sale); err != nil {
		return domain.Sale{}, err
	}

	c.state.Cart.Clear()
	if err := c.Persist(ctx); err != nil {
		c.log.Warn().Err(err).Str("sale_id", sale.ID).Msg("sale recorded but cart state not saved")
	}
	return sale, nil
}

func (c *Client) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	var stats domain.DashboardStats
	err := c.do(ctx, http.MethodGet, "/api/dashboard/stats", nil, &stats)
	return stats, err
}

// Watch calls onEvent for each refresh signal until ctx ends or the
// connection drops.
func (c *Client) Watch(ctx context.Context, onEvent func(realtime.Message)) error {
	if c.state.Token == "" {
		return ErrNotLoggedIn
	}
	wsURL := *c.baseURL
	switch wsURL.Scheme {
	case "https":
		wsURL.Scheme = "wss"
	default:
		wsURL.Scheme = "ws"
	}
	wsURL.Path = strings.TrimRight(wsURL.Path, "/") + "/ws"
	wsURL.RawQuery = url.Values{"token": {c.state.Token}}.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		if resp != nil {
			return &APIError{Status: resp.StatusCode, Message: "websocket handshake refused"}
		}
		return errors.Wrap(err, "dial realtime")
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "read realtime")
		}
		var msg realtime.Message
		if err := json.Unmarshal(frame, &msg); err != nil {
			c.log.Warn().Err(err).Msg("skipping malformed realtime frame")
			continue
		}
		onEvent(msg)
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, dest any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.state.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.state.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, maxResponseBytes)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(limited).Decode(&msg)
		if msg.Message == "" {
			msg.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg.Message}
	}
	if dest == nil {
		return nil
	}
	return errors.Wrapf(json.NewDecoder(limited).Decode(dest), "decode %s", path)
}
