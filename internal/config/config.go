package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"DB_HOST"`
	Port     int    `mapstructure:"DB_PORT"`
	User     string `mapstructure:"DB_USER"`
	Password string `mapstructure:"DB_PASSWORD"`
	DBName   string `mapstructure:"DB_NAME"`
	SSLMode  string `mapstructure:"DB_SSLMODE"`
}

// DSN returns the GORM/pgx connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret   string `mapstructure:"JWT_SECRET"`
	TTLHours int    `mapstructure:"JWT_TTL_HOURS"`
}

// KafkaConfig holds broker and consumer-group settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string `mapstructure:"KAFKA_GROUP_PREFIX"`
}

// StorageConfig holds Supabase Storage settings for payment proofs.
type StorageConfig struct {
	URL        string `mapstructure:"STORAGE_URL"`
	ServiceKey string `mapstructure:"STORAGE_SERVICE_KEY"`
	Bucket     string `mapstructure:"STORAGE_BUCKET"`
}

// BookingConfig holds booking policy toggles.
type BookingConfig struct {
	// HourlyOverlapGuard enables overlap checking for per_hour services.
	// Hourly resources are assumed shareable by default.
	HourlyOverlapGuard bool `mapstructure:"BOOKING_HOURLY_OVERLAP_GUARD"`
	// AdminWhatsApp is the phone number used to build the contact-admin
	// deep link, in international format without "+".
	AdminWhatsApp string `mapstructure:"ADMIN_WHATSAPP"`
}

// ServiceConfig holds all configuration for the rental service.
type ServiceConfig struct {
	Port    string `mapstructure:"SERVICE_PORT"`
	AppEnv  string `mapstructure:"APP_ENV"`
	DB      DatabaseConfig `mapstructure:",squash"`
	JWT     JWTConfig      `mapstructure:",squash"`
	Kafka   KafkaConfig    `mapstructure:",squash"`
	Storage StorageConfig  `mapstructure:",squash"`
	Booking BookingConfig  `mapstructure:",squash"`
}

// Load reads configuration from the environment, with a .env file as a
// convenience for local development.
func Load() (*ServiceConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "rental")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("JWT_TTL_HOURS", 72)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "rental-")
	v.SetDefault("STORAGE_BUCKET", "receipts")
	v.SetDefault("BOOKING_HOURLY_OVERLAP_GUARD", false)
	v.SetDefault("ADMIN_WHATSAPP", "")

	var cfg ServiceConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Kafka.Brokers = splitBrokers(v.GetString("KAFKA_BROKERS"))

	if cfg.AppEnv != "development" {
		if cfg.JWT.Secret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required outside development")
		}
		if cfg.Storage.URL == "" || cfg.Storage.ServiceKey == "" {
			return nil, fmt.Errorf("STORAGE_URL and STORAGE_SERVICE_KEY are required outside development")
		}
	}

	return &cfg, nil
}

func splitBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
