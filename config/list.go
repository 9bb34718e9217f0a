package config

import "time"

const (
	minSearchDebounce = 50 * time.Millisecond
	maxSearchDebounce = 5 * time.Second
)

// ListConfig contains list view configuration.
type ListConfig struct {
	// PageSize is the default number of rows per page.
	PageSize int `env:"PAGE_SIZE" envDefault:"100"`

	// SearchDebounce is the settling delay applied to free-text search input
	// before it participates in a request.
	SearchDebounce time.Duration `env:"SEARCH_DEBOUNCE" envDefault:"500ms"`
}

// Sanitize applies guardrails to list configuration values.
func (l *ListConfig) Sanitize() {
	if l.PageSize <= 0 {
		l.PageSize = 100
	}
	if l.SearchDebounce < minSearchDebounce {
		l.SearchDebounce = minSearchDebounce
	}
	if l.SearchDebounce > maxSearchDebounce {
		l.SearchDebounce = maxSearchDebounce
	}
}
