package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the API. Values come from the
// environment (optionally seeded from a .env file).
type Config struct {
	Env  string `mapstructure:"APP_ENV"`
	Port string `mapstructure:"PORT"`

	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	DBHost        string `mapstructure:"DB_HOST"`
	DBUser        string `mapstructure:"DB_USER"`
	DBPassword    string `mapstructure:"DB_PASSWORD"`
	DBName        string `mapstructure:"DB_NAME"`
	DBPort        string `mapstructure:"DB_PORT"`
	DBTimeZone    string `mapstructure:"DB_TIMEZONE"`
	RunMigrations bool   `mapstructure:"RUN_MIGRATIONS"`

	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	JWTExpiry         time.Duration `mapstructure:"JWT_EXPIRY"`
	LoginRatePerMin   int           `mapstructure:"LOGIN_RATE_PER_MIN"`
	SeedAdminEmail    string        `mapstructure:"SEED_ADMIN_EMAIL"`
	SeedAdminPassword string        `mapstructure:"SEED_ADMIN_PASSWORD"`

	RedisAddr        string        `mapstructure:"REDIS_ADDR"`
	RedisPassword    string        `mapstructure:"REDIS_PASSWORD"`
	WorkCodeCacheTTL time.Duration `mapstructure:"WORKCODE_CACHE_TTL"`

	S3Bucket        string        `mapstructure:"S3_BUCKET"`
	S3PresignExpiry time.Duration `mapstructure:"S3_PRESIGN_EXPIRY"`

	NotificationBuffer int  `mapstructure:"NOTIFICATION_BUFFER"`
	MetricsEnabled     bool `mapstructure:"METRICS_ENABLED"`
}

var keys = []string{
	"APP_ENV", "PORT",
	"DATABASE_URL", "DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_PORT", "DB_TIMEZONE", "RUN_MIGRATIONS",
	"JWT_SECRET", "JWT_EXPIRY", "LOGIN_RATE_PER_MIN", "SEED_ADMIN_EMAIL", "SEED_ADMIN_PASSWORD",
	"REDIS_ADDR", "REDIS_PASSWORD", "WORKCODE_CACHE_TTL",
	"S3_BUCKET", "S3_PRESIGN_EXPIRY",
	"NOTIFICATION_BUFFER", "METRICS_ENABLED",
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	// AutomaticEnv only resolves keys viper already knows about.
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "3000")
	v.SetDefault("DB_TIMEZONE", "Europe/Amsterdam")
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("JWT_EXPIRY", 24*time.Hour)
	v.SetDefault("LOGIN_RATE_PER_MIN", 20)
	v.SetDefault("SEED_ADMIN_EMAIL", "admin@example.com")
	v.SetDefault("SEED_ADMIN_PASSWORD", "admin123")
	v.SetDefault("WORKCODE_CACHE_TTL", 10*time.Minute)
	v.SetDefault("S3_PRESIGN_EXPIRY", 15*time.Minute)
	v.SetDefault("NOTIFICATION_BUFFER", 64)
	v.SetDefault("METRICS_ENABLED", true)
}

// DSN returns DATABASE_URL or builds a key/value DSN from the DB_* settings.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBTimeZone,
	)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
