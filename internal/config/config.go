package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	RedisURL     string `mapstructure:"REDIS_URL"`
	CacheBackend string `mapstructure:"CACHE_BACKEND"`
	CacheTTLMin  int    `mapstructure:"CACHE_TTL_MINUTES"`
	CacheSize    int    `mapstructure:"CACHE_SIZE"`

	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`

	JWTSecret    string `mapstructure:"JWT_SECRET"`
	AuthIssuer   string `mapstructure:"AUTH_ISSUER"`
	AuthAudience string `mapstructure:"AUTH_AUDIENCE"`

	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	ClinicTimezone       string `mapstructure:"CLINIC_TIMEZONE"`
	SlotIntervalMinutes  int    `mapstructure:"SLOT_INTERVAL_MINUTES"`
	BookingHorizonMonths int    `mapstructure:"BOOKING_HORIZON_MONTHS"`
	HoldTTLMinutes       int    `mapstructure:"HOLD_TTL_MINUTES"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CACHE_BACKEND", "memory")
	v.SetDefault("CACHE_TTL_MINUTES", 10)
	v.SetDefault("CACHE_SIZE", 1024)
	v.SetDefault("KAFKA_TOPIC", "appointment-events")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("CLINIC_TIMEZONE", "Asia/Singapore")
	v.SetDefault("SLOT_INTERVAL_MINUTES", 15)
	v.SetDefault("BOOKING_HORIZON_MONTHS", 6)
	v.SetDefault("HOLD_TTL_MINUTES", 30)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"REDIS_URL", "CACHE_BACKEND", "CACHE_TTL_MINUTES", "CACHE_SIZE",
		"KAFKA_BROKERS", "KAFKA_TOPIC",
		"JWT_SECRET", "AUTH_ISSUER", "AUTH_AUDIENCE", "CORS_ORIGINS",
		"CLINIC_TIMEZONE", "SLOT_INTERVAL_MINUTES", "BOOKING_HORIZON_MONTHS",
		"HOLD_TTL_MINUTES",
	} {
		v.BindEnv(key)
	}

	// Try reading .env, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Brokers splits KAFKA_BROKERS into addresses; empty means events disabled.
func (c *Config) Brokers() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required outside development")
	}
	switch c.CacheBackend {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_BACKEND is \"redis\"")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be \"memory\" or \"redis\", got %q", c.CacheBackend)
	}
	if c.SlotIntervalMinutes <= 0 || 60%c.SlotIntervalMinutes != 0 {
		return fmt.Errorf("SLOT_INTERVAL_MINUTES must divide 60, got %d", c.SlotIntervalMinutes)
	}
	if c.BookingHorizonMonths <= 0 {
		return fmt.Errorf("BOOKING_HORIZON_MONTHS must be positive, got %d", c.BookingHorizonMonths)
	}
	return nil
}
