// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	JWTSecret      string `mapstructure:"JWT_SECRET"`
	Port           string `mapstructure:"PORT"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	FrontendURL    string `mapstructure:"FRONTEND_URL"`
	Env            string `mapstructure:"APP_ENV"`

	// Plaid vendor settings. Products and country codes are comma-separated lists.
	PlaidEnv          string `mapstructure:"PLAID_ENV"`
	PlaidClientID     string `mapstructure:"PLAID_CLIENT_ID"`
	PlaidSecret       string `mapstructure:"PLAID_SECRET"`
	PlaidProducts     string `mapstructure:"PLAID_PRODUCTS"`
	PlaidCountryCodes string `mapstructure:"PLAID_COUNTRY_CODES"`
	PlaidRedirectURI  string `mapstructure:"PLAID_REDIRECT_URI"`
	WebhookURL        string `mapstructure:"WEBHOOK_URL"`

	// Outbound mail settings for password resets.
	SMTPHost   string `mapstructure:"SMTP_HOST"`
	SMTPPort   string `mapstructure:"SMTP_PORT"`
	SMTPUser   string `mapstructure:"SMTP_USER"`
	SMTPPass   string `mapstructure:"SMTP_PASS"`
	MailSender string `mapstructure:"MAIL_SENDER"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// Initial read to get APP_ENV if set in base config
	// We intentionally ignore this error as the config file may not exist yet
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err == nil {
			log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
		}
	}

	// Set default values for development
	viper.SetDefault("PORT", "8375")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "anex")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("FRONTEND_URL", "http://localhost:5173")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("PLAID_ENV", "sandbox")
	viper.SetDefault("PLAID_PRODUCTS", "transactions")
	viper.SetDefault("PLAID_COUNTRY_CODES", "US")
	viper.SetDefault("MAIL_SENDER", "no-reply@anex.dev")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	switch c.PlaidEnv {
	case "", "sandbox", "development", "production":
	default:
		return fmt.Errorf("PLAID_ENV must be sandbox, development or production, got %q", c.PlaidEnv)
	}

	isProduction := c.Env == "production" || c.Env == "prod"

	// Strict checks for production
	if isProduction {
		if c.JWTSecret == "your-secret-key-change-in-production" {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
	} else {
		// Development/Test warnings
		if len(c.JWTSecret) < 32 {
			log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
		}
	}

	return nil
}

// PlaidConfigured reports whether the vendor credentials needed for any Plaid
// call are present. Handlers turn a false result into a user-facing error
// instead of letting the request fail downstream.
func (c *Config) PlaidConfigured() bool {
	return c.PlaidEnv != "" && c.PlaidClientID != "" && c.PlaidSecret != ""
}

// PlaidProductList returns the configured Plaid products as a slice.
func (c *Config) PlaidProductList() []string {
	return splitCSV(c.PlaidProducts)
}

// PlaidCountryCodeList returns the configured country codes as a slice.
func (c *Config) PlaidCountryCodeList() []string {
	return splitCSV(c.PlaidCountryCodes)
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
