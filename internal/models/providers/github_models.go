package providers

import (
	"fmt"

	"github.com/tmc/langchaingo/llms/openai"
)

// GitHubModelsBaseURL is the OpenAI-compatible endpoint of GitHub Models
const GitHubModelsBaseURL = "https://models.inference.ai.azure.com"

// NewGitHubModelsProvider creates a new GitHub Models provider
func NewGitHubModelsProvider(settings Settings) (*ChatProvider, error) {
	if settings.Token == "" {
		return nil, ErrNoCredential
	}
	if settings.BaseURL == "" {
		settings.BaseURL = GitHubModelsBaseURL
	}
	if settings.Model == "" {
		settings.Model = "gpt-4o-mini"
	}
	settings = withDefaults(settings)

	// GitHub Models uses an OpenAI-compatible API
	client, err := openai.New(
		openai.WithToken(settings.Token),
		openai.WithBaseURL(settings.BaseURL),
		openai.WithModel(settings.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub Models client: %w", err)
	}

	return NewChatProvider("github_models", client, settings), nil
}
