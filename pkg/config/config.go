// ==============================================================================
// CONFIG PACKAGE - pkg/config/config.go
// ==============================================================================
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	Redis   RedisConfig
	Session SessionConfig
	Gateway GatewayConfig
	Loan    LoanConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type SessionConfig struct {
	// TTL bounds how long an abandoned application survives.
	TTL        time.Duration
	CookieName string
}

// GatewayConfig points at the remote STK push collaborator.
type GatewayConfig struct {
	BaseURL         string
	Timeout         time.Duration
	MerchantName    string
	MerchantCode    string
	ReferencePrefix string
}

type LoanConfig struct {
	// InterestRate is a decimal string, e.g. "0.10" for 10%.
	InterestRate    string
	TermMonths      int
	DefaultStrategy string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Redis: RedisConfig{
			URL:      normalizeRedisURL(getEnv("REDIS_URL", "localhost:6379")),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Session: SessionConfig{
			TTL:        getDurationEnv("SESSION_TTL", 2*time.Hour),
			CookieName: getEnv("SESSION_COOKIE_NAME", "okoa_session"),
		},
		Gateway: GatewayConfig{
			BaseURL:         getEnv("GATEWAY_BASE_URL", "http://localhost:9090"),
			Timeout:         getDurationEnv("GATEWAY_TIMEOUT", 15*time.Second),
			MerchantName:    getEnv("MERCHANT_NAME", "Inuka Ventures"),
			MerchantCode:    getEnv("MERCHANT_CODE", "774455"),
			ReferencePrefix: getEnv("GATEWAY_REFERENCE_PREFIX", "PROC_"),
		},
		Loan: LoanConfig{
			InterestRate:    getEnv("LOAN_INTEREST_RATE", "0.10"),
			TermMonths:      getIntEnv("LOAN_TERM_MONTHS", 2),
			DefaultStrategy: getEnv("PAYMENT_STRATEGY", "push"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func normalizeRedisURL(url string) string {
	// Strip redis:// or redis+tls:// scheme if present
	if strings.HasPrefix(url, "redis+tls://") {
		return url[len("redis+tls://"):]
	}
	if strings.HasPrefix(url, "redis://") {
		return url[len("redis://"):]
	}
	return url
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
