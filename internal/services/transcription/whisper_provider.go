package transcription

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// WhisperProvider transcribes captured audio with the OpenAI audio API.
type WhisperProvider struct {
	client *openai.Client
	model  string
}

func NewWhisperProvider(apiKey, baseURL string) (*WhisperProvider, error) {
	if apiKey == "" {
		return nil, errors.New("transcription API key is required")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &WhisperProvider{
		client: openai.NewClientWithConfig(config),
		model:  openai.Whisper1,
	}, nil
}

func (p *WhisperProvider) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("no audio captured")
	}

	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.model,
		FilePath: "capture.wav",
		Reader:   bytes.NewReader(audio),
	})
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	return resp.Text, nil
}
