package main

import (
	"strings"
	"testing"

	"apexpos/backend/internal/config"
)

func strongConfig() config.Config {
	return config.Config{
		AuthSecret:      "0123456789abcdef0123456789abcdef",
		AdminUsername:   "admin",
		AdminPassword:   "k3ep-the-till-safe",
		CashierUsername: "cashier",
		CashierPassword: "front-desk-2026",
	}
}

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"short secret":       func(c *config.Config) { c.AuthSecret = "short" },
		"empty admin pass":   func(c *config.Config) { c.AdminPassword = "" },
		"short cashier pass": func(c *config.Config) { c.CashierPassword = "1234" },
		"same usernames":     func(c *config.Config) { c.CashierUsername = "admin" },
	}
	for name, mutate := range cases {
		cfg := strongConfig()
		mutate(&cfg)
		if err := validateSecurityConfig(cfg); err == nil {
			t.Fatalf("%s: expected weak security config to be rejected", name)
		}
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	if err := validateSecurityConfig(strongConfig()); err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}

func TestValidateSecurityConfigNamesOffendingVariable(t *testing.T) {
	cfg := strongConfig()
	cfg.CashierPassword = "1234"
	err := validateSecurityConfig(cfg)
	if err == nil || !strings.Contains(err.Error(), "CASHIER_PASSWORD must be set and at least 8 characters") {
		t.Fatalf("expected CASHIER_PASSWORD error, got %v", err)
	}
}
