package providers

import (
	"fmt"

	"github.com/tmc/langchaingo/llms/openai"
)

const defaultAzureAPIVersion = "2024-02-01"

// NewAzureOpenAIProvider creates a new Azure OpenAI provider. Model names the deployment.
func NewAzureOpenAIProvider(settings Settings) (*ChatProvider, error) {
	if settings.Token == "" {
		return nil, ErrNoCredential
	}
	if settings.BaseURL == "" || settings.Model == "" {
		return nil, fmt.Errorf("Azure OpenAI configuration missing: endpoint and deployment name are required")
	}
	if settings.APIVersion == "" {
		settings.APIVersion = defaultAzureAPIVersion
	}
	settings = withDefaults(settings)

	client, err := openai.New(
		openai.WithToken(settings.Token),
		openai.WithBaseURL(settings.BaseURL),
		openai.WithModel(settings.Model),
		openai.WithEmbeddingModel(settings.Model),
		openai.WithAPIType(openai.APITypeAzure),
		openai.WithAPIVersion(settings.APIVersion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure OpenAI client: %w", err)
	}

	return NewChatProvider("azure", client, settings), nil
}
