package responder

import "errors"

// Config holds the OpenAI-compatible provider settings.
type Config struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
	Temperature    float32
	TopP           float32
	RetrievalTopK  int
}

func DefaultConfig() *Config {
	return &Config{
		ChatModel:      "gpt-4o-mini",
		EmbeddingModel: "text-embedding-3-small",
		Temperature:    0.2,
		TopP:           1.0,
		RetrievalTopK:  4,
	}
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("API key is required")
	}
	if c.ChatModel == "" {
		return errors.New("chat model is required")
	}
	return nil
}
