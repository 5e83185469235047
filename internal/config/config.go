package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"tradebooks/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	Log      LogConfig
	CORS     CORSConfig
	Accounts AccountsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AccountsConfig holds the ledger account codes confirmations post to.
// Party receivable/payable accounts are derived per party and not
// configurable.
type AccountsConfig struct {
	Sales            string `mapstructure:"sales"`
	Purchases        string `mapstructure:"purchases"`
	TaxPayable       string `mapstructure:"tax_payable"`
	TaxReceivable    string `mapstructure:"tax_receivable"`
	DiscountAllowed  string `mapstructure:"discount_allowed"`
	DiscountReceived string `mapstructure:"discount_received"`
}

// Load reads configuration from environment variables with the TRADEBOOKS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TRADEBOOKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "tradebooks")
	v.SetDefault("db.password", "tradebooks_secret")
	v.SetDefault("db.name", "tradebooks_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Account code defaults
	v.SetDefault("accounts.sales", domain.AccountSales)
	v.SetDefault("accounts.purchases", domain.AccountPurchases)
	v.SetDefault("accounts.tax_payable", domain.AccountTaxPayable)
	v.SetDefault("accounts.tax_receivable", domain.AccountTaxReceivable)
	v.SetDefault("accounts.discount_allowed", domain.AccountDiscountAllowed)
	v.SetDefault("accounts.discount_received", domain.AccountDiscountReceived)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "TRADEBOOKS_SERVER_PORT",
		"server.read_timeout":        "TRADEBOOKS_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "TRADEBOOKS_SERVER_WRITE_TIMEOUT",
		"server.environment":         "TRADEBOOKS_SERVER_ENVIRONMENT",
		"db.host":                    "TRADEBOOKS_DB_HOST",
		"db.port":                    "TRADEBOOKS_DB_PORT",
		"db.user":                    "TRADEBOOKS_DB_USER",
		"db.password":                "TRADEBOOKS_DB_PASSWORD",
		"db.name":                    "TRADEBOOKS_DB_NAME",
		"db.sslmode":                 "TRADEBOOKS_DB_SSLMODE",
		"db.max_open":                "TRADEBOOKS_DB_MAX_OPEN",
		"db.max_idle":                "TRADEBOOKS_DB_MAX_IDLE",
		"log.level":                  "TRADEBOOKS_LOG_LEVEL",
		"log.format":                 "TRADEBOOKS_LOG_FORMAT",
		"cors.allowed_origins":       "TRADEBOOKS_CORS_ALLOWED_ORIGINS",
		"accounts.sales":             "TRADEBOOKS_ACCOUNTS_SALES",
		"accounts.purchases":         "TRADEBOOKS_ACCOUNTS_PURCHASES",
		"accounts.tax_payable":       "TRADEBOOKS_ACCOUNTS_TAX_PAYABLE",
		"accounts.tax_receivable":    "TRADEBOOKS_ACCOUNTS_TAX_RECEIVABLE",
		"accounts.discount_allowed":  "TRADEBOOKS_ACCOUNTS_DISCOUNT_ALLOWED",
		"accounts.discount_received": "TRADEBOOKS_ACCOUNTS_DISCOUNT_RECEIVED",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if TRADEBOOKS_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("TRADEBOOKS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}
	cfg.Accounts = AccountsConfig{
		Sales:            v.GetString("accounts.sales"),
		Purchases:        v.GetString("accounts.purchases"),
		TaxPayable:       v.GetString("accounts.tax_payable"),
		TaxReceivable:    v.GetString("accounts.tax_receivable"),
		DiscountAllowed:  v.GetString("accounts.discount_allowed"),
		DiscountReceived: v.GetString("accounts.discount_received"),
	}

	return cfg, nil
}
