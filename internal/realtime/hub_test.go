package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func dial(t *testing.T, srv *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial(url, header)
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, h.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNotifyDashboardReachesEveryClient(t *testing.T) {
	h := NewHub("http://localhost:5173", zerolog.Nop())
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer srv.Close()
	defer h.Close()

	first, _, err := dial(t, srv, "http://localhost:5173")
	if err != nil {
		t.Fatalf("dial first: %v", err)
	}
	defer first.Close()
	second, _, err := dial(t, srv, "")
	if err != nil {
		t.Fatalf("dial second: %v", err)
	}
	defer second.Close()
	waitForClients(t, h, 2)

	h.NotifyDashboard()

	for _, conn := range []*websocket.Conn{first, second} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, frame, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg Message
		if err := json.Unmarshal(frame, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if msg.Event != "dashboardUpdate" {
			t.Fatalf("unexpected event %q", msg.Event)
		}
	}
}

func TestNotifyWithoutClientsDoesNotBlock(t *testing.T) {
	h := NewHub("*", zerolog.Nop())
	defer h.Close()

	done := make(chan struct{})
	go func() {
		for range 100 {
			h.NotifyDashboard()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("notify blocked without clients")
	}
}

func TestSlowClientDoesNotBlockNotify(t *testing.T) {
	h := NewHub("*", zerolog.Nop())
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer srv.Close()
	defer h.Close()

	conn, _, err := dial(t, srv, "")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitForClients(t, h, 1)

	done := make(chan struct{})
	go func() {
		for range sendBuffer * 10 {
			h.NotifyDashboard()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("notify blocked on a client that never reads")
	}
}

func TestForeignOriginIsRejected(t *testing.T) {
	h := NewHub("http://localhost:5173", zerolog.Nop())
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer srv.Close()
	defer h.Close()

	_, resp, err := dial(t, srv, "http://evil.example")
	if err == nil {
		t.Fatalf("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %+v", resp)
	}
}

func TestCloseDisconnectsClients(t *testing.T) {
	h := NewHub("*", zerolog.Nop())
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer srv.Close()

	conn, _, err := dial(t, srv, "")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitForClients(t, h, 1)

	h.Close()
	if h.ClientCount() != 0 {
		t.Fatalf("expected no clients after close")
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected connection to be closed")
	}
}
