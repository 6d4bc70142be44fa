package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort string

	KeycloakURL      string
	KeycloakRealm    string
	KeycloakClientID string
	PublicURL        string

	ProductServiceURL string
	OrderServiceURL   string

	OTLPEndpoint string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	SessionTTL      time.Duration
}

// Load reads configuration from the environment, with a .env file as a
// convenience for local runs.
func Load() *Config {
	// Missing .env is fine, real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		HTTPPort:          getEnv("HTTP_PORT", "3000"),
		KeycloakURL:       getEnv("KEYCLOAK_URL", "http://localhost:8090"),
		KeycloakRealm:     getEnv("KEYCLOAK_REALM", "microservices-realm"),
		KeycloakClientID:  getEnv("KEYCLOAK_CLIENT_ID", "microservices-app"),
		PublicURL:         getEnv("PUBLIC_URL", "http://localhost:3000"),
		ProductServiceURL: getEnv("PRODUCT_SERVICE_URL", "http://localhost:8888/product-service"),
		OrderServiceURL:   getEnv("ORDER_SERVICE_URL", "http://localhost:8888/order-service"),
		OTLPEndpoint:      getEnv("OTLP_ENDPOINT", ""),
		RequestTimeout:    getDuration("REQUEST_TIMEOUT_SECONDS", 30),
		ShutdownTimeout:   getDuration("SHUTDOWN_TIMEOUT_SECONDS", 10),
		SessionTTL:        getDuration("SESSION_TTL_SECONDS", 1800),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultSeconds int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return time.Duration(defaultSeconds) * time.Second
}
