package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads a .env file if one is present. Real deployments set plain
// environment variables; the file is a development convenience.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found – relying on env vars")
	}
}

// GetEnv reads an environment variable or returns the provided default.
func GetEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

// BusServiceURL is the base URL of the external bus/tracker registry.
func BusServiceURL() string {
	return GetEnv("BUS_SERVICE_URL", "http://localhost:4002")
}

// GPSFeedURL is the polled external fleet-tracking feed.
func GPSFeedURL() string {
	return GetEnv("GPS_API_URL", "http://172.104.160.132/proxy/devices")
}

// NATSURL is the JetStream broker carrying position events.
func NATSURL() string {
	return GetEnv("NATS_URL", "nats://localhost:4222")
}

// ServerPort is the HTTP listen port of the API server.
func ServerPort() string {
	return GetEnv("PORT", "8080")
}
