package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort int

	// Backend API consumed for menu listing and charge submission.
	APIBaseURL        string
	AccessToken       string
	PaymentPublicKey  string
	HTTPClientTimeout time.Duration

	ChargeDescription string
	ChargeReturnURL   string

	MenuSource string
	MenuFile   string
	// MenuSeed loads MenuFile into Postgres on start when MenuSource is postgres.
	MenuSeed bool

	CartStore  string
	SQLitePath string
	Postgres   PostgresConfig
}

type PostgresConfig struct {
	Host string
	Port int
	User string
	Pass string
	DB   string
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	return FromEnv(), nil
}

func FromEnv() Config {
	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnvInt("HTTP_PORT", 8080),

		APIBaseURL:        getEnv("API_BASE_URL", "http://localhost:8000/api"),
		AccessToken:       getEnv("ACCESS_TOKEN", ""),
		PaymentPublicKey:  getEnv("PAYMENT_PUBLIC_KEY", ""),
		HTTPClientTimeout: getEnvDuration("HTTP_CLIENT_TIMEOUT", 10*time.Second),

		ChargeDescription: getEnv("CHARGE_DESCRIPTION", "Payment for order"),
		ChargeReturnURL:   getEnv("CHARGE_RETURN_URL", "http://localhost:3000/order/confirmation"),

		MenuSource: getEnv("MENU_SOURCE", "api"),
		MenuFile:   getEnv("MENU_FILE", "menu.yaml"),
		MenuSeed:   getEnvBool("MENU_SEED", false),

		CartStore:  getEnv("CART_STORE", "sqlite"),
		SQLitePath: getEnv("SQLITE_PATH", "storefront.db"),
		Postgres: PostgresConfig{
			Host: getEnv("POSTGRES_HOST", "localhost"),
			Port: getEnvInt("POSTGRES_PORT", 5432),
			User: getEnv("POSTGRES_USER", "storefront"),
			Pass: getEnv("POSTGRES_PASSWORD", "storefront"),
			DB:   getEnv("POSTGRES_DB", "storefront"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
