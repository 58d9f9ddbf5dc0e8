// Package upstox provides a client for the Upstox market data API.
package upstox

import (
	"os"
	"time"
)

// DefaultBaseURL is the production endpoint of the Upstox v2 API.
const DefaultBaseURL = "https://api.upstox.com/v2"

// Config holds configuration for the Upstox API client.
type Config struct {
	AccessToken string        // OAuth access token sent as a bearer credential
	BaseURL     string        // Base URL for the API (e.g., "https://api.upstox.com/v2")
	Timeout     time.Duration // HTTP request timeout
}

// LoadConfig loads Upstox configuration from environment variables.
// Access tokens expire daily, so deployments usually supply the token at
// runtime through the credentials endpoint rather than the environment.
func LoadConfig() Config {
	baseURL := os.Getenv("UPSTOX_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return Config{
		AccessToken: os.Getenv("UPSTOX_ACCESS_TOKEN"),
		BaseURL:     baseURL,
		Timeout:     10 * time.Second,
	}
}
