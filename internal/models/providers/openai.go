package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

const (
	DefaultModel     = "gpt-4"
	DefaultMaxTokens = 500
)

// ChatProvider implements the Provider interface on top of a langchaingo model
type ChatProvider struct {
	name        string
	model       llms.Model
	modelName   string
	maxTokens   int
	temperature float64
}

// NewChatProvider wraps an already constructed langchaingo model
func NewChatProvider(name string, model llms.Model, settings Settings) *ChatProvider {
	settings = withDefaults(settings)
	return &ChatProvider{
		name:        name,
		model:       model,
		modelName:   settings.Model,
		maxTokens:   settings.MaxTokens,
		temperature: settings.Temperature,
	}
}

// NewOpenAIProvider creates a provider for the OpenAI chat completions API
func NewOpenAIProvider(settings Settings) (*ChatProvider, error) {
	if settings.Token == "" {
		return nil, ErrNoCredential
	}
	settings = withDefaults(settings)

	opts := []openai.Option{
		openai.WithToken(settings.Token),
		openai.WithModel(settings.Model),
	}
	if settings.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(settings.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	return NewChatProvider("openai", client, settings), nil
}

// Name returns the provider name
func (p *ChatProvider) Name() string {
	return p.name
}

// Complete sends the conversation and returns the first choice's text
func (p *ChatProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		content = append(content, llms.TextParts(messageType(msg.Role), msg.Content))
	}

	response, err := p.model.GenerateContent(ctx, content,
		llms.WithModel(p.modelName),
		llms.WithMaxTokens(p.maxTokens),
		llms.WithTemperature(p.temperature),
	)
	if err != nil {
		return "", fmt.Errorf("%s completion failed: %w", p.name, err)
	}

	if response == nil || len(response.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	text := strings.TrimSpace(response.Choices[0].Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func messageType(role string) schema.ChatMessageType {
	switch role {
	case RoleSystem:
		return schema.ChatMessageTypeSystem
	case RoleAssistant:
		return schema.ChatMessageTypeAI
	default:
		return schema.ChatMessageTypeHuman
	}
}

func withDefaults(s Settings) Settings {
	if s.Model == "" {
		s.Model = DefaultModel
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = DefaultMaxTokens
	}
	return s
}
