package knowledge

import (
	"errors"
	"time"
)

// Config holds the Pinecone connection and query settings for the
// dermatology knowledge index.
type Config struct {
	APIKey    string
	IndexHost string
	Namespace string

	TopK       int
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		TopK:       4,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("pinecone API key is required")
	}
	if c.IndexHost == "" {
		return errors.New("pinecone index host is required")
	}
	if c.TopK <= 0 {
		return errors.New("topK must be positive")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}
	return nil
}
