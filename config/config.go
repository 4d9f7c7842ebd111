package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	DB       DBConfig
	Store    StoreConfig
	Telegram TelegramConfig
	HTTP     HTTPConfig
	Shop     ShopConfig
	Log      LogConfig
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// ConnString returns a postgres:// URL for pgxpool with credentials escaped.
func (c DBConfig) ConnString() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	return u.String()
}

type StoreConfig struct {
	Driver      string // "postgres" or "memory"
	AutoMigrate bool
	AutoSeed    bool
}

type TelegramConfig struct {
	Token string // empty disables the bot
}

type HTTPConfig struct {
	Addr        string // empty disables the API
	JWTSecret   string
	CORSOrigins []string
}

type ShopConfig struct {
	Name        string
	TaxRate     decimal.Decimal
	Currency    string
	OrdersLimit int           // <= 0 lists every order
	SessionTTL  time.Duration // idle sessions are dropped after this; 0 keeps them
}

type LogConfig struct {
	Level       string
	Development bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("DB_PORT: %w", err)
	}
	taxRate, err := decimal.NewFromString(getEnv("TAX_RATE", "0.05"))
	if err != nil {
		return nil, fmt.Errorf("TAX_RATE: %w", err)
	}
	if taxRate.IsNegative() {
		return nil, fmt.Errorf("TAX_RATE must be >= 0")
	}
	ordersLimit, err := strconv.Atoi(getEnv("ORDERS_LIMIT", "0"))
	if err != nil {
		return nil, fmt.Errorf("ORDERS_LIMIT: %w", err)
	}
	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	if sessionTTL < 0 {
		return nil, fmt.Errorf("SESSION_TTL must be >= 0")
	}
	driver := strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres))
	if driver != StoreDriverPostgres && driver != StoreDriverMemory {
		return nil, fmt.Errorf("STORE_DRIVER: unknown driver %q", driver)
	}

	return &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "canteen"),
		},
		Store: StoreConfig{
			Driver:      driver,
			AutoMigrate: getBool("AUTO_MIGRATE"),
			AutoSeed:    getBool("AUTO_SEED"),
		},
		Telegram: TelegramConfig{
			Token: getEnv("TOKEN", ""),
		},
		HTTP: HTTPConfig{
			Addr:        httpAddr(),
			JWTSecret:   getEnv("JWT_SECRET", ""),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		},
		Shop: ShopConfig{
			Name:        getEnv("SHOP_NAME", "Tasty Canteen"),
			TaxRate:     taxRate,
			Currency:    getEnv("CURRENCY", "₹"),
			OrdersLimit: ordersLimit,
			SessionTTL:  sessionTTL,
		},
		Log: LogConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getBool("LOG_DEVELOPMENT"),
		},
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getBool accepts "1" or "true" (any case).
func getBool(key string) bool {
	v := strings.TrimSpace(os.Getenv(key))
	return v == "1" || strings.EqualFold(v, "true")
}

// httpAddr defaults to :8080 when HTTP_ADDR is unset; an explicitly empty value disables the API.
func httpAddr() string {
	if v, ok := os.LookupEnv("HTTP_ADDR"); ok {
		return strings.TrimSpace(v)
	}
	return ":8080"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
