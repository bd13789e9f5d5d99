package recommendation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"smartbite/internal/catalog"
	"smartbite/internal/models"
	"smartbite/internal/models/providers"
	"smartbite/internal/monitoring"
)

// MaxResults caps every recommendation list
const MaxResults = 6

const (
	StrategyRuleBased = "rule_based"
	StrategyDelegated = "delegated"
)

var (
	// ErrMalformedResponse is returned when the service answer is not a JSON id list
	ErrMalformedResponse = errors.New("malformed recommendation response")
	// ErrNoMatches is returned when none of the returned ids exist in the catalog
	ErrNoMatches = errors.New("no recommended id matches the catalog")
)

const systemPrompt = "You are a restaurant recommendation AI. Provide personalized menu recommendations based on user data."

// Request carries the inputs of one recommendation
type Request struct {
	Catalog     []models.MenuItem
	Preferences *models.UserPreferences
	History     []models.Order
}

// Strategy produces an ordered recommendation list
type Strategy interface {
	Name() string
	Recommend(ctx context.Context, req Request) ([]models.MenuItem, error)
}

// RuleBased filters by preferences and ranks by rating
type RuleBased struct{}

// Name returns the strategy name
func (RuleBased) Name() string { return StrategyRuleBased }

// Recommend never fails and never mutates its inputs
func (RuleBased) Recommend(ctx context.Context, req Request) ([]models.MenuItem, error) {
	return rank(req.Catalog, req.Preferences), nil
}

func rank(menu []models.MenuItem, prefs *models.UserPreferences) []models.MenuItem {
	filtered := make([]models.MenuItem, 0, len(menu))
	for _, item := range menu {
		if prefs != nil {
			if len(prefs.Dietary) > 0 && !item.HasAnyDietaryTag(prefs.Dietary) {
				continue
			}
			if len(prefs.FavoriteCategories) > 0 && !contains(prefs.FavoriteCategories, item.Category) {
				continue
			}
			if !prefs.PriceRange.Contains(item.Price) {
				continue
			}
		}
		filtered = append(filtered, item)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Rating > filtered[j].Rating
	})

	if len(filtered) > MaxResults {
		filtered = filtered[:MaxResults]
	}
	return filtered
}

// Delegated asks a text-generation provider for a list of item ids
type Delegated struct {
	provider providers.Provider
}

// NewDelegated creates a delegated strategy over provider
func NewDelegated(provider providers.Provider) *Delegated {
	return &Delegated{provider: provider}
}

// Name returns the strategy name
func (d *Delegated) Name() string { return StrategyDelegated }

// Recommend maps the returned ids onto the catalog in the order the service gave them
func (d *Delegated) Recommend(ctx context.Context, req Request) ([]models.MenuItem, error) {
	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, err
	}

	answer, err := d.provider.Complete(ctx, []providers.Message{
		{Role: providers.RoleSystem, Content: systemPrompt},
		{Role: providers.RoleUser, Content: prompt},
	})
	if err != nil {
		return nil, err
	}

	ids, err := parseIDs(answer)
	if err != nil {
		return nil, err
	}

	byID := catalog.Index(req.Catalog)

	seen := make(map[string]bool, len(ids))
	items := make([]models.MenuItem, 0, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		items = append(items, item)
		if len(items) == MaxResults {
			break
		}
	}

	if len(items) == 0 {
		return nil, ErrNoMatches
	}
	return items, nil
}

type catalogEntry struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Dietary  []string `json:"dietary"`
}

func buildPrompt(req Request) (string, error) {
	entries := make([]catalogEntry, 0, len(req.Catalog))
	for _, item := range req.Catalog {
		entries = append(entries, catalogEntry{
			ID:       item.ID,
			Name:     item.Name,
			Category: item.Category,
			Dietary:  item.Dietary,
		})
	}

	history := req.History
	if history == nil {
		history = []models.Order{}
	}

	prefsJSON, err := json.Marshal(req.Preferences)
	if err != nil {
		return "", fmt.Errorf("failed to encode preferences: %w", err)
	}
	catalogJSON, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to encode catalog: %w", err)
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return "", fmt.Errorf("failed to encode order history: %w", err)
	}

	return fmt.Sprintf("Based on user preferences: %s, available menu items: %s, and order history: %s, "+
		"recommend 3-5 menu item IDs that the user would likely enjoy. "+
		"Respond with a JSON array of item IDs only.",
		prefsJSON, catalogJSON, historyJSON), nil
}

// parseIDs accepts a JSON array of string or numeric ids, optionally inside a code fence
func parseIDs(answer string) ([]string, error) {
	text := strings.TrimSpace(answer)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var raw []interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		switch id := v.(type) {
		case string:
			ids = append(ids, strings.TrimSpace(id))
		case float64:
			ids = append(ids, strconv.FormatFloat(id, 'f', -1, 64))
		default:
			return nil, fmt.Errorf("%w: unexpected element %v", ErrMalformedResponse, v)
		}
	}
	return ids, nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// Result is the outcome of one recommendation
type Result struct {
	Items    []models.MenuItem `json:"items"`
	Strategy string            `json:"strategy"`
	Fallback bool              `json:"fallback"`
}

// Engine runs the delegated strategy when configured and falls back to the rule-based one
type Engine struct {
	delegated Strategy
	fallback  RuleBased
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

// NewEngine creates an engine. A nil provider disables the delegated strategy.
func NewEngine(provider providers.Provider, metrics *monitoring.Metrics, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{metrics: metrics, logger: logger}
	if provider != nil {
		e.delegated = NewDelegated(provider)
	}
	return e
}

// Delegating reports whether the delegated strategy is enabled
func (e *Engine) Delegating() bool {
	return e.delegated != nil
}

// Recommend never fails: any delegated failure yields the rule-based result for the same inputs
func (e *Engine) Recommend(ctx context.Context, req Request) Result {
	if e.delegated != nil {
		items, err := e.delegated.Recommend(ctx, req)
		if err == nil {
			e.metrics.RecordRecommendation(StrategyDelegated, "success")
			return Result{Items: items, Strategy: StrategyDelegated}
		}

		e.logger.Warn("delegated recommendation failed, using rule-based fallback",
			zap.Error(err),
			zap.Int("catalog_size", len(req.Catalog)))
		e.metrics.RecordRecommendation(StrategyDelegated, "fallback")

		items, _ = e.fallback.Recommend(ctx, req)
		return Result{Items: items, Strategy: StrategyRuleBased, Fallback: true}
	}

	items, _ := e.fallback.Recommend(ctx, req)
	e.metrics.RecordRecommendation(StrategyRuleBased, "success")
	return Result{Items: items, Strategy: StrategyRuleBased}
}
