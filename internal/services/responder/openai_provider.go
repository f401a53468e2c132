package responder

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are SkinAI, an AI assistant for skin health questions. Provide general dermatological information and observations about uploaded skin images. Always include a reminder that your answers are informational only and do not replace professional medical advice.`

// OpenAIProvider generates replies with an OpenAI-compatible chat API.
// Text questions go through a chat completion, images through a vision-style
// message with the payload embedded as a data URL. When a Retriever is set,
// relevant knowledge snippets are prepended to text prompts.
type OpenAIProvider struct {
	config    *Config
	client    *openai.Client
	retriever Retriever
}

func NewOpenAIProvider(config *Config, retriever Retriever) (*OpenAIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		config:    config,
		client:    openai.NewClientWithConfig(clientConfig),
		retriever: retriever,
	}, nil
}

func (p *OpenAIProvider) Reply(ctx context.Context, input Input) (string, error) {
	switch input.Kind {
	case InputText:
		return p.replyToText(ctx, input.Text)
	case InputImage:
		return p.replyToImage(ctx, input.Image, input.MimeType)
	default:
		return "", &ResponderError{Type: ErrTypeInput, Operation: "reply", Message: "unknown input kind"}
	}
}

// CreateEmbedding embeds text with the configured embedding model. The
// knowledge retriever uses this to build query vectors.
func (p *OpenAIProvider) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(p.config.EmbeddingModel),
	})
	if err != nil {
		return nil, NewProviderError("embedding", "failed to create embedding", err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, &ResponderError{
			Type:      ErrTypeProvider,
			Operation: "embedding",
			Message:   "empty embedding response",
		}
	}

	return resp.Data[0].Embedding, nil
}

func (p *OpenAIProvider) replyToText(ctx context.Context, question string) (string, error) {
	prompt := question
	if p.retriever != nil {
		if snippets, err := p.retriever.Retrieve(ctx, question); err == nil && len(snippets) > 0 {
			prompt = fmt.Sprintf("Reference material:\n%s\n\nQuestion: %s",
				strings.Join(snippets, "\n---\n"), question)
		}
		// Retrieval failures degrade to an unaugmented prompt.
	}

	return p.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	})
}

func (p *OpenAIProvider) replyToImage(ctx context.Context, data []byte, mimeType string) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	return p.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeText,
					Text: "Please give a preliminary assessment of this skin image.",
				},
				{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
				},
			},
		},
	})
}

func (p *OpenAIProvider) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.config.ChatModel,
		Messages:    messages,
		Temperature: p.config.Temperature,
		TopP:        p.config.TopP,
	})
	if err != nil {
		return "", NewProviderError("completion", "failed to create completion", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &ResponderError{
			Type:      ErrTypeProvider,
			Operation: "completion",
			Message:   "empty completion response",
		}
	}

	return resp.Choices[0].Message.Content, nil
}
