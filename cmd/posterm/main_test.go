package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"apexpos/backend/internal/cart"
	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/terminal"
)

func TestMoneyGroupsDigits(t *testing.T) {
	if got := money(decimal.NewFromFloat(1234567.5)); got != "1,234,567.50" {
		t.Fatalf("unexpected format %q", got)
	}
}

func TestCartCommandsPersistBetweenRuns(t *testing.T) {
	ctx := context.Background()
	storage, err := cart.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}

	var c cart.Cart
	_ = c.Add(domain.Product{ID: "p1", Name: "Silicone Back Cover", Price: 2500, Stock: 10})
	if err := cart.Save(ctx, storage, cart.State{Cart: c}); err != nil {
		t.Fatalf("save: %v", err)
	}

	newClient := func() *terminal.Client {
		client, err := terminal.New(ctx, "http://127.0.0.1:1", storage, zerolog.Nop())
		if err != nil {
			t.Fatalf("new client: %v", err)
		}
		return client
	}

	var out bytes.Buffer
	if err := run(ctx, newClient(), &out, []string{"qty", "p1", "3"}, "", ""); err != nil {
		t.Fatalf("qty: %v", err)
	}
	if err := run(ctx, newClient(), &out, []string{"discount", "500"}, "", ""); err != nil {
		t.Fatalf("discount: %v", err)
	}

	out.Reset()
	if err := run(ctx, newClient(), &out, []string{"cart"}, "", ""); err != nil {
		t.Fatalf("cart: %v", err)
	}
	if !strings.Contains(out.String(), "7,000.00") {
		t.Fatalf("expected total 7,000.00 in output:\n%s", out.String())
	}

	if err := run(ctx, newClient(), &out, []string{"checkout"}, "", ""); err == nil {
		t.Fatalf("expected checkout against an unreachable server to fail")
	}
	if newClient().Cart().Quantity("p1") != 3 {
		t.Fatalf("failed checkout must keep the cart")
	}
}

func TestUnknownCommand(t *testing.T) {
	storage, err := cart.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	client, err := terminal.New(context.Background(), "http://127.0.0.1:1", storage, zerolog.Nop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := run(context.Background(), client, &bytes.Buffer{}, []string{"refund"}, "", ""); err == nil {
		t.Fatalf("expected unknown command error")
	}
}

func TestBadQuantityIsWrapped(t *testing.T) {
	storage, err := cart.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	client, err := terminal.New(context.Background(), "http://127.0.0.1:1", storage, zerolog.Nop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	err = run(context.Background(), client, &bytes.Buffer{}, []string{"qty", "p1", "many"}, "", "")
	if err == nil || !strings.HasPrefix(err.Error(), "quantity: ") {
		t.Fatalf("expected wrapped quantity error, got %v", err)
	}
}
