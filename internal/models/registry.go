package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"smartbite/internal/config"
	"smartbite/internal/models/providers"
	"smartbite/internal/monitoring"
)

// ProviderType represents the type of LLM provider
type ProviderType string

const (
	OpenAIProvider       ProviderType = "openai"
	AzureOpenAIProvider  ProviderType = "azure"
	GitHubModelsProvider ProviderType = "github_models"
)

// NewProvider builds the configured text-generation provider. It returns
// (nil, nil) when no credential is configured, which disables delegation.
func NewProvider(cfg config.LLMConfig, metrics *monitoring.Metrics, logger *zap.Logger) (providers.Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	settings := providers.Settings{
		Token:       cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		APIVersion:  cfg.APIVersion,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}

	var (
		provider providers.Provider
		err      error
	)
	switch ProviderType(cfg.Provider) {
	case OpenAIProvider, "":
		provider, err = providers.NewOpenAIProvider(settings)
	case AzureOpenAIProvider:
		provider, err = providers.NewAzureOpenAIProvider(settings)
	case GitHubModelsProvider:
		provider, err = providers.NewGitHubModelsProvider(settings)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", cfg.Provider)
	}

	if errors.Is(err, providers.ErrNoCredential) {
		logger.Info("no LLM credential configured, delegated answers disabled",
			zap.String("provider", cfg.Provider))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return NewInstrumentedProvider(provider, cfg.Timeout, metrics, logger), nil
}

// InstrumentedProvider bounds each call with a deadline and records its latency
type InstrumentedProvider struct {
	next    providers.Provider
	timeout time.Duration
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewInstrumentedProvider wraps next. A non-positive timeout leaves the caller's deadline alone.
func NewInstrumentedProvider(next providers.Provider, timeout time.Duration, metrics *monitoring.Metrics, logger *zap.Logger) *InstrumentedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedProvider{next: next, timeout: timeout, metrics: metrics, logger: logger}
}

// Name returns the wrapped provider's name
func (p *InstrumentedProvider) Name() string {
	return p.next.Name()
}

// Complete forwards to the wrapped provider under the configured deadline
func (p *InstrumentedProvider) Complete(ctx context.Context, messages []providers.Message) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := p.next.Complete(ctx, messages)
	elapsed := time.Since(start)

	outcome := "success"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		outcome = "timeout"
	case err != nil:
		outcome = "error"
	}
	p.metrics.ObserveLLMRequest(p.next.Name(), outcome, elapsed)

	if err != nil {
		p.logger.Warn("LLM request failed",
			zap.String("provider", p.next.Name()),
			zap.String("outcome", outcome),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return "", err
	}

	p.logger.Debug("LLM request completed",
		zap.String("provider", p.next.Name()),
		zap.Duration("elapsed", elapsed))
	return text, nil
}
