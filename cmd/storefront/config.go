package main

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr           string
	ShopAPIURL     string
	CDNURL         string
	RedisAddr      string
	CatalogTTL     time.Duration
	RequestTimeout time.Duration
	SessionTTL     time.Duration
	SecureCookie   bool
	LogLevel       string
	ServiceName    string
}

func loadConfig() (Config, error) {
	cfg := Config{
		Addr:        getEnv("STOREFRONT_ADDR", ":8080"),
		ShopAPIURL:  getEnv("SHOP_API_URL", "http://localhost:8081"),
		CDNURL:      getEnv("CDN_URL", "http://localhost:8081/content"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		ServiceName: getEnv("OTEL_SERVICE_NAME", "storefront"),
	}

	var err error
	if cfg.CatalogTTL, err = getDuration("CATALOG_TTL", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 30*time.Minute); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("SECURE_COOKIE"); v != "" {
		if cfg.SecureCookie, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("config: SECURE_COOKIE: %w", err)
		}
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
