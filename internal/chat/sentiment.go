package chat

import (
	"context"
	"encoding/json"
	"strings"

	"smartbite/internal/models/providers"
)

const sentimentPrompt = `You are a sentiment analysis AI. Analyze the sentiment of the given text and respond with a JSON object containing "sentiment" (positive/negative/neutral) and "score" (0-1 where 0 is very negative, 0.5 is neutral, 1 is very positive).`

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Sentiment is the tone of a review
type Sentiment struct {
	Sentiment string  `json:"sentiment"`
	Score     float64 `json:"score"`
}

// NeutralSentiment is returned whenever analysis is unavailable
var NeutralSentiment = Sentiment{Sentiment: SentimentNeutral, Score: 0.5}

// AnalyzeSentiment asks the provider to classify text. Any failure is neutral.
func AnalyzeSentiment(ctx context.Context, provider providers.Provider, text string) Sentiment {
	if provider == nil || strings.TrimSpace(text) == "" {
		return NeutralSentiment
	}

	answer, err := provider.Complete(ctx, []providers.Message{
		{Role: providers.RoleSystem, Content: sentimentPrompt},
		{Role: providers.RoleUser, Content: text},
	})
	if err != nil {
		return NeutralSentiment
	}

	var result Sentiment
	if err := json.Unmarshal([]byte(strings.TrimSpace(answer)), &result); err != nil {
		return NeutralSentiment
	}

	switch result.Sentiment {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
	default:
		return NeutralSentiment
	}
	if result.Score < 0 || result.Score > 1 {
		return NeutralSentiment
	}
	return result
}
