package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendStorefront = "storefront"
	BackendPostgres   = "postgres"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	Backend     string // CATALOG_BACKEND: storefront | postgres
	BaseURL     string
	SessionKey  string
	HTTPTimeout time.Duration
	Storefront  StorefrontConfig
	Database    DatabaseConfig
}

type StorefrontConfig struct {
	StoreDomain string
	APIVersion  string
	PublicToken string // SHOPIFY_STOREFRONT_TOKEN
	// Credenciales OAuth2 (client credentials) para obtener un token privado
	ClientID     string
	ClientSecret string
}

type DatabaseConfig struct {
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CATALOG_BACKEND", BackendStorefront)

	viper.AutomaticEnv()

	// el .env es opcional
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	timeout, err := time.ParseDuration(getEnvOrViper("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("HTTP_TIMEOUT inválido: %w", err)
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: strings.ToLower(getEnvOrViper("APP_ENV", "development")),
		LogLevel:    strings.ToLower(getEnvOrViper("LOG_LEVEL", "info")),
		Backend:     strings.ToLower(strings.TrimSpace(getEnvOrViper("CATALOG_BACKEND", BackendStorefront))),
		BaseURL:     strings.TrimSuffix(getEnvOrViper("BASE_URL", "http://localhost:8080"), "/"),
		SessionKey:  getEnvOrViper("SESSION_KEY", "dev-insecure"),
		HTTPTimeout: timeout,
		Storefront: StorefrontConfig{
			StoreDomain:  normalizeDomain(getEnvOrViper("SHOPIFY_STORE_DOMAIN", "")),
			APIVersion:   getEnvOrViper("SHOPIFY_STOREFRONT_API_VERSION", "2024-10"),
			PublicToken:  strings.TrimSpace(getEnvOrViper("SHOPIFY_STOREFRONT_TOKEN", "")),
			ClientID:     strings.TrimSpace(getEnvOrViper("SHOPIFY_CLIENT_ID", "")),
			ClientSecret: strings.TrimSpace(getEnvOrViper("SHOPIFY_CLIENT_SECRET", "")),
		},
		Database: DatabaseConfig{
			DSN:      strings.TrimSpace(getEnvOrViper("DB_DSN", "")),
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "storefront"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
	}
	return cfg, nil
}

// Validate se llama después de aplicar los overrides de la línea de comandos.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendStorefront:
		if c.Storefront.StoreDomain == "" {
			return fmt.Errorf("SHOPIFY_STORE_DOMAIN is required")
		}
		if c.Storefront.PublicToken == "" && (c.Storefront.ClientID == "" || c.Storefront.ClientSecret == "") {
			return fmt.Errorf("SHOPIFY_STOREFRONT_TOKEN or SHOPIFY_CLIENT_ID/SHOPIFY_CLIENT_SECRET is required")
		}
	case BackendPostgres:
	default:
		return fmt.Errorf("CATALOG_BACKEND desconocido: %q", c.Backend)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// ConnString arma el dsn de postgres si no vino DB_DSN.
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	return "host=" + d.Host + " user=" + d.User + " password=" + d.Password + " dbname=" + d.DBName + " port=" + d.Port + " sslmode=" + d.SSLMode
}

func normalizeDomain(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	return strings.TrimSuffix(s, "/")
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
