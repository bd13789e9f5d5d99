package providers

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	// ErrNoCredential is returned when a provider is requested without an API key
	ErrNoCredential = errors.New("no provider credential configured")
	// ErrEmptyResponse is returned when the service answers with no usable text
	ErrEmptyResponse = errors.New("empty response from provider")
)

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider interface for LLM providers
type Provider interface {
	Name() string
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Settings configures an OpenAI-compatible provider
type Settings struct {
	Token       string
	BaseURL     string
	Model       string
	APIVersion  string
	MaxTokens   int
	Temperature float64
}
