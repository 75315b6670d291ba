package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort           string
	APIBaseURL        string
	SessionSecret     string
	SessionExpiresMin int
	RedisAddr         string
	RedisPassword     string
	UpstreamTimeout   time.Duration
	AllowOrigins      string
}

func Load() Config {
	expires, _ := strconv.Atoi(get("SESSION_EXPIRES_MIN", "10080"))
	timeout, _ := strconv.Atoi(get("UPSTREAM_TIMEOUT_SEC", "15"))
	return Config{
		AppPort:           get("APP_PORT", "8080"),
		APIBaseURL:        must("KAAMKARO_API_BASE_URL"),
		SessionSecret:     must("SESSION_SECRET"),
		SessionExpiresMin: expires,
		RedisAddr:         get("REDIS_ADDR", ""),
		RedisPassword:     get("REDIS_PASSWORD", ""),
		UpstreamTimeout:   time.Duration(timeout) * time.Second,
		AllowOrigins:      get("ALLOW_ORIGINS", "http://127.0.0.1:3000, http://localhost:3000"),
	}
}

func get(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
