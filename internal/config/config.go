package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Printer   PrinterConfig
	Store     StoreConfig
	Checkout  CheckoutConfig
}

type AppConfig struct {
	Name     string
	Env      string
	Port     string
	Debug    bool
	LogLevel string
}

type DatabaseConfig struct {
	Driver   string // postgres or memory
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type RedisConfig struct {
	// URL is optional; without it the catalog is not cached and commit locks are in-process.
	URL string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type PrinterConfig struct {
	Type     string // usb, network, file, or none
	USBPath  string
	Address  string
	Codepage string
	Cut      string // partial or full
	Timeout  time.Duration
}

type StoreConfig struct {
	Name       string
	Address    string
	Phone      string
	PayURI     string
	CashNote   string
	CreditNote string
	Footer     string
	Currency   string
	Width      int
	Timezone   string
}

type CheckoutConfig struct {
	WalkInCustomerID string
	SessionTTL       time.Duration
	LockTTL          time.Duration
	LockWait         time.Duration
	CatalogCacheTTL  time.Duration
}

// Load reads .env (when present) and the environment.
func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg(".env file not found, using environment variables")
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "checkout-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "checkout")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Kabul")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 12)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_METHODS", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
	viper.SetDefault("CORS_ALLOWED_HEADERS", "Origin,Content-Type,Accept,Authorization,Idempotency-Key,X-Request-ID")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_USB_PATH", "/dev/usb/lp0")
	viper.SetDefault("PRINTER_ADDRESS", "")
	viper.SetDefault("PRINTER_CODEPAGE", "cp437")
	viper.SetDefault("PRINTER_CUT", "partial")
	viper.SetDefault("PRINTER_TIMEOUT_SECONDS", 5)
	viper.SetDefault("STORE_NAME", "My Store")
	viper.SetDefault("STORE_ADDRESS", "")
	viper.SetDefault("STORE_PHONE", "")
	viper.SetDefault("STORE_PAY_URI", "")
	viper.SetDefault("STORE_CASH_NOTE", "")
	viper.SetDefault("STORE_CREDIT_NOTE", "")
	viper.SetDefault("STORE_FOOTER", "Thank you for your business!")
	viper.SetDefault("STORE_CURRENCY", "Afghanis")
	viper.SetDefault("RECEIPT_WIDTH", 42)
	viper.SetDefault("STORE_TIMEZONE", "Asia/Kabul")
	viper.SetDefault("WALK_IN_CUSTOMER_ID", "00000000-0000-0000-0000-000000000001")
	viper.SetDefault("CHECKOUT_SESSION_TTL_MINUTES", 120)
	viper.SetDefault("CHECKOUT_LOCK_TTL_SECONDS", 30)
	viper.SetDefault("CHECKOUT_LOCK_WAIT_SECONDS", 5)
	viper.SetDefault("CATALOG_CACHE_TTL_SECONDS", 300)

	return &Config{
		App: AppConfig{
			Name:     viper.GetString("APP_NAME"),
			Env:      viper.GetString("APP_ENV"),
			Port:     viper.GetString("APP_PORT"),
			Debug:    viper.GetBool("APP_DEBUG"),
			LogLevel: viper.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(viper.GetString("DB_DRIVER")),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		Redis: RedisConfig{
			URL: viper.GetString("REDIS_URL"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods: splitList(viper.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders: splitList(viper.GetString("CORS_ALLOWED_HEADERS")),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Printer: PrinterConfig{
			Type:     strings.ToLower(viper.GetString("PRINTER_TYPE")),
			USBPath:  viper.GetString("PRINTER_USB_PATH"),
			Address:  viper.GetString("PRINTER_ADDRESS"),
			Codepage: strings.ToLower(viper.GetString("PRINTER_CODEPAGE")),
			Cut:      strings.ToLower(viper.GetString("PRINTER_CUT")),
			Timeout:  time.Duration(viper.GetInt("PRINTER_TIMEOUT_SECONDS")) * time.Second,
		},
		Store: StoreConfig{
			Name:       viper.GetString("STORE_NAME"),
			Address:    viper.GetString("STORE_ADDRESS"),
			Phone:      viper.GetString("STORE_PHONE"),
			PayURI:     viper.GetString("STORE_PAY_URI"),
			CashNote:   viper.GetString("STORE_CASH_NOTE"),
			CreditNote: viper.GetString("STORE_CREDIT_NOTE"),
			Footer:     viper.GetString("STORE_FOOTER"),
			Currency:   viper.GetString("STORE_CURRENCY"),
			Width:      viper.GetInt("RECEIPT_WIDTH"),
			Timezone:   viper.GetString("STORE_TIMEZONE"),
		},
		Checkout: CheckoutConfig{
			WalkInCustomerID: viper.GetString("WALK_IN_CUSTOMER_ID"),
			SessionTTL:       time.Duration(viper.GetInt("CHECKOUT_SESSION_TTL_MINUTES")) * time.Minute,
			LockTTL:          time.Duration(viper.GetInt("CHECKOUT_LOCK_TTL_SECONDS")) * time.Second,
			LockWait:         time.Duration(viper.GetInt("CHECKOUT_LOCK_WAIT_SECONDS")) * time.Second,
			CatalogCacheTTL:  time.Duration(viper.GetInt("CATALOG_CACHE_TTL_SECONDS")) * time.Second,
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// Location resolves the store timezone used for expiry dates and receipt timestamps.
func (c *StoreConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid STORE_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
