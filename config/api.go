package config

import "time"

const (
	minTimeout = time.Second
	maxTimeout = 5 * time.Minute
)

// APIConfig contains remote API client configuration.
type APIConfig struct {
	// BaseURL is the root of the remote API, e.g. "https://api.example.com/v1/".
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:3000/"`

	// Timeout bounds a single request/response exchange.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`

	// UserAgent is sent with every request.
	UserAgent string `env:"USER_AGENT" envDefault:"bidhub-console"`
}

// Sanitize applies guardrails to API configuration values.
func (a *APIConfig) Sanitize() {
	if a.Timeout < minTimeout {
		a.Timeout = minTimeout
	}
	if a.Timeout > maxTimeout {
		a.Timeout = maxTimeout
	}
}
