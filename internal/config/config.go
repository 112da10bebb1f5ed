package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Admin    AdminConfig
	Booking  BookingConfig
	Logging  LoggingConfig
	Secrets  Secrets `mapstructure:"-"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
	Issuer      string `mapstructure:"issuer"`
}

type RedisConfig struct {
	URL      string        `mapstructure:"url"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// AdminConfig holds the configured administrator credentials; there is
// no admin row in the database.
type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

type BookingConfig struct {
	// StrictLifecycle blocks completion and payment on cancelled
	// appointments. Off reproduces the legacy lenient behavior.
	StrictLifecycle bool   `mapstructure:"strict_lifecycle"`
	Currency        string `mapstructure:"currency"`
	CallbackURL     string `mapstructure:"callback_url"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Secrets are collaborator credentials taken from the environment only.
type Secrets struct {
	RazorpayKeyID         string `envconfig:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret     string `envconfig:"RAZORPAY_KEY_SECRET"`
	RazorpayWebhookSecret string `envconfig:"RAZORPAY_WEBHOOK_SECRET"`
	CloudinaryCloudName   string `envconfig:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey      string `envconfig:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret   string `envconfig:"CLOUDINARY_API_SECRET"`
	SMTPHost              string `envconfig:"SMTP_HOST"`
	SMTPPort              int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser              string `envconfig:"SMTP_USER"`
	SMTPPassword          string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom              string `envconfig:"SMTP_FROM"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("", &config.Secrets); err != nil {
		return nil, fmt.Errorf("failed to read secrets from env: %w", err)
	}

	return &config, nil
}
