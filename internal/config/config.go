package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/cast"

	"apexpos/backend/internal/domain"
)

type Config struct {
	Port          string
	AllowedOrigin string

	MongoURI      string
	MongoDatabase string
	DatabaseURL   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AuthSecret            string
	AccessTokenTTLMinutes int
	AdminUsername         string
	AdminPassword         string
	CashierUsername       string
	CashierPassword       string

	StockPolicy             string
	StockWorkers            int
	StockRetrySchedule      string
	LowStockReportThreshold int
	Currency                string
	Timezone                string

	LogLevel string
	LogMode  string
	LogFile  string
}

func Load() Config {
	policy := strings.ToLower(getEnv("STOCK_POLICY", domain.StockPolicyAllowNegative))
	if policy != domain.StockPolicyStrict {
		policy = domain.StockPolicyAllowNegative
	}

	return Config{
		Port:          getEnv("PORT", "5000"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),

		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "apexpos"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       cast.ToInt(getEnv("REDIS_DB", "0")),

		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes: positiveInt("ACCESS_TOKEN_TTL_MINUTES", 480),
		AdminUsername:         getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:         os.Getenv("ADMIN_PASSWORD"),
		CashierUsername:       getEnv("CASHIER_USERNAME", "cashier"),
		CashierPassword:       os.Getenv("CASHIER_PASSWORD"),

		StockPolicy:             policy,
		StockWorkers:            positiveInt("STOCK_WORKERS", 8),
		StockRetrySchedule:      getEnv("STOCK_RETRY_SCHEDULE", "@every 1m"),
		LowStockReportThreshold: positiveInt("LOW_STOCK_REPORT_THRESHOLD", 10),
		Currency:                getEnv("CURRENCY", "LKR"),
		Timezone:                getEnv("TIMEZONE", "Local"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogMode:  getEnv("LOG_MODE", "development"),
		LogFile:  os.Getenv("LOG_FILE"),
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

// Location resolves Timezone, falling back to the host zone.
func (c Config) Location() *time.Location {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "Local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func positiveInt(key string, fallback int) int {
	n, err := cast.ToIntE(getEnv(key, cast.ToString(fallback)))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
