package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName         string
	AppEnv          string
	AppPort         string
	LogLevel        string
	DatabaseURL     string
	RedisURL        string
	NATSURL         string
	NATSSubjectBase string
	JWTSecret       string
	JWTIssuer       string
	ProfileCacheTTL time.Duration
	CORSOrigins     string
	AccessLog       bool
	RateLimit       int
	RateWindow      time.Duration
	Timezone        *time.Location
	SeedCatalog     bool
	SeedToken       string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from PBL_* environment variables and an optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PBL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "PBL API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("nats.subject_base", "pbl")
	v.SetDefault("profile.cache_ttl", "5m")
	v.SetDefault("cors.origins", "*")
	v.SetDefault("access_log", false)
	v.SetDefault("rate_limit.max", 120)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("timezone", "America/Sao_Paulo")
	v.SetDefault("seed_catalog", true)

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	ttl, err := parseDuration(v.GetString("profile.cache_ttl"), 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid profile cache ttl: %w", err)
	}
	window, err := parseDuration(v.GetString("rate_limit.window"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid rate limit window: %w", err)
	}

	location := time.UTC
	if name := strings.TrimSpace(v.GetString("timezone")); name != "" {
		location, err = time.LoadLocation(name)
		if err != nil {
			return Config{}, fmt.Errorf("invalid timezone: %w", err)
		}
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		LogLevel:        strings.ToLower(v.GetString("log.level")),
		DatabaseURL:     v.GetString("database.url"),
		RedisURL:        v.GetString("redis.url"),
		NATSURL:         v.GetString("nats.url"),
		NATSSubjectBase: v.GetString("nats.subject_base"),
		JWTSecret:       v.GetString("jwt.secret"),
		JWTIssuer:       v.GetString("jwt.issuer"),
		ProfileCacheTTL: ttl,
		CORSOrigins:     v.GetString("cors.origins"),
		AccessLog:       v.GetBool("access_log"),
		RateLimit:       v.GetInt("rate_limit.max"),
		RateWindow:      window,
		Timezone:        location,
		SeedCatalog:     v.GetBool("seed_catalog"),
		SeedToken:       v.GetString("seed.token"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}
