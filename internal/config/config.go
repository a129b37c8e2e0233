/**
 * @description
 * This package handles the configuration management for the banking service. It uses
 * the Viper library to read configuration from environment variables or an optional
 * .env file in the given path.
 *
 * @dependencies
 * - github.com/spf13/viper: Configuration loading and environment binding.
 */
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds all the configuration variables for the banking service.
type Config struct {
	ServerPort           string `mapstructure:"SERVER_PORT"`
	Environment          string `mapstructure:"ENVIRONMENT"`
	LogLevel             string `mapstructure:"LOG_LEVEL"`
	StoreDriver          string `mapstructure:"STORE_DRIVER"`
	DatabaseURL          string `mapstructure:"DATABASE_URL"`
	DatabaseMaxConns     int32  `mapstructure:"DATABASE_MAX_CONNS"`
	DatabaseMinConns     int32  `mapstructure:"DATABASE_MIN_CONNS"`
	RunMigrations        bool   `mapstructure:"RUN_MIGRATIONS"`
	RedisURL             string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RateLimitPerMinute   int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	RabbitMQURL          string `mapstructure:"RABBITMQ_URL"`
	EventsExchange       string `mapstructure:"EVENTS_EXCHANGE"`
	JWTSecret            string `mapstructure:"JWT_SECRET"`
	JWTTTLMinutes        int    `mapstructure:"JWT_TTL_MINUTES"`
	AdminUsername        string `mapstructure:"ADMIN_USERNAME"`
	AdminPassword        string `mapstructure:"ADMIN_PASSWORD"`
	AdminPasswordHash    string `mapstructure:"ADMIN_PASSWORD_HASH"`
	CORSAllowedOrigins   string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	ReconcileSchedule    string `mapstructure:"RECONCILE_SCHEDULE"`
}

// LoadConfig reads configuration from environment variables and an optional .env file in path.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	viper.SetDefault("DATABASE_MAX_CONNS", 10)
	viper.SetDefault("DATABASE_MIN_CONNS", 2)
	viper.SetDefault("RUN_MIGRATIONS", true)
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "banking:rate_limit")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 120)
	viper.SetDefault("EVENTS_EXCHANGE", "banking_events")
	viper.SetDefault("JWT_TTL_MINUTES", 10)
	viper.SetDefault("ADMIN_USERNAME", "admin")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("RECONCILE_SCHEDULE", "@every 1h")

	// Bind environment variables explicitly so Unmarshal sees them.
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("ENVIRONMENT", "ENVIRONMENT", "APP_ENV")
	_ = viper.BindEnv("LOG_LEVEL")
	_ = viper.BindEnv("STORE_DRIVER")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("DATABASE_MAX_CONNS")
	_ = viper.BindEnv("DATABASE_MIN_CONNS")
	_ = viper.BindEnv("RUN_MIGRATIONS")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("RABBITMQ_URL", "RABBITMQ_URL", "CLOUDAMQP_URL")
	_ = viper.BindEnv("EVENTS_EXCHANGE")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("JWT_TTL_MINUTES")
	_ = viper.BindEnv("ADMIN_USERNAME")
	_ = viper.BindEnv("ADMIN_PASSWORD")
	_ = viper.BindEnv("ADMIN_PASSWORD_HASH")
	_ = viper.BindEnv("CORS_ALLOWED_ORIGINS")
	_ = viper.BindEnv("RECONCILE_SCHEDULE")

	// A missing .env file is fine; the environment is the primary source.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
		err = nil
	}

	if err = viper.Unmarshal(&config); err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.StoreDriver = strings.ToLower(strings.TrimSpace(config.StoreDriver))
	config.DatabaseURL = strings.TrimSpace(config.DatabaseURL)
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "banking:rate_limit"
	}
	if config.JWTTTLMinutes <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive JWT_TTL_MINUTES; using default\" value=%d", config.JWTTTLMinutes)
		config.JWTTTLMinutes = 10
	}
	if config.RateLimitPerMinute < 0 {
		config.RateLimitPerMinute = 0
	}
	if config.DatabaseMinConns > config.DatabaseMaxConns {
		config.DatabaseMinConns = config.DatabaseMaxConns
	}

	if strings.TrimSpace(config.JWTSecret) == "" {
		return config, fmt.Errorf("JWT_SECRET is required")
	}
	switch config.StoreDriver {
	case StoreDriverPostgres:
		if config.DatabaseURL == "" {
			return config, fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=%s", StoreDriverPostgres)
		}
	case StoreDriverMemory:
	default:
		return config, fmt.Errorf("unsupported STORE_DRIVER %q", config.StoreDriver)
	}

	return config, nil
}

// JWTTTL returns the token lifetime as a duration.
func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// IsProduction reports whether the service runs in a production environment.
func (c Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
