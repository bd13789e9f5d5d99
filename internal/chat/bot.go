package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"smartbite/internal/cart"
	"smartbite/internal/catalog"
	"smartbite/internal/models"
	"smartbite/internal/models/providers"
	"smartbite/internal/monitoring"
	"smartbite/internal/voice"
)

// Source says which step produced a reply
type Source string

const (
	SourceWelcome   Source = "welcome"
	SourceCart      Source = "cart"
	SourceClarify   Source = "clarify"
	SourceDelegated Source = "delegated"
	SourceKeyword   Source = "keyword"
	SourceGreeting  Source = "greeting"
	SourceRecommend Source = "recommend"
	SourceHelp      Source = "help"
)

// Input is one user message
type Input struct {
	Text           string        `json:"text"`
	Channel        voice.Channel `json:"source"`
	VoiceSupported bool          `json:"voice_supported"`
}

// Reply is the bot's answer to one message
type Reply struct {
	Text      string           `json:"text"`
	Source    Source           `json:"source"`
	AddedItem *models.MenuItem `json:"added_item,omitempty"`
	Narration *voice.Narration `json:"narration,omitempty"`
}

// Bot answers chat messages for one session
type Bot struct {
	menu       catalog.Repository
	cart       *cart.Store
	provider   providers.Provider
	transcript *Transcript
	narrator   *voice.Narrator
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

// Option configures a Bot
type Option func(*Bot)

// WithProvider enables delegated answers
func WithProvider(p providers.Provider) Option {
	return func(b *Bot) { b.provider = p }
}

// WithNarrator enables spoken replies for capable clients
func WithNarrator(n *voice.Narrator) Option {
	return func(b *Bot) { b.narrator = n }
}

// WithMetrics records reply counts
func WithMetrics(m *monitoring.Metrics) Option {
	return func(b *Bot) { b.metrics = m }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(b *Bot) { b.logger = l }
}

// NewBot creates a bot bound to a session's cart
func NewBot(menu catalog.Repository, store *cart.Store, opts ...Option) *Bot {
	b := &Bot{
		menu:       menu,
		cart:       store,
		transcript: NewTranscript(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Transcript returns the session transcript
func (b *Bot) Transcript() *Transcript {
	return b.transcript
}

// Respond answers one message. Typed and spoken input share this path.
func (b *Bot) Respond(ctx context.Context, in Input) Reply {
	if in.Channel == "" {
		in.Channel = voice.ChannelText
	}
	b.transcript.Append(Message{Author: AuthorUser, Text: in.Text, Channel: in.Channel})

	reply := b.answer(ctx, in.Text)
	reply.Narration = b.narrator.Narrate(reply.Text, in.VoiceSupported)

	b.transcript.Append(Message{Author: AuthorBot, Text: reply.Text, Source: reply.Source, Channel: in.Channel})
	b.metrics.RecordChatReply(string(reply.Source))
	return reply
}

func (b *Bot) answer(ctx context.Context, text string) Reply {
	if IsAddToCart(text) {
		if reply, ok := b.addToCart(ctx, text); ok {
			return reply
		}
		return Reply{Text: ClarifyAnswer, Source: SourceClarify}
	}
	if wantsItem(text) {
		if reply, ok := b.addToCart(ctx, text); ok {
			return reply
		}
	}

	if b.provider != nil {
		answer, err := b.provider.Complete(ctx, []providers.Message{
			{Role: providers.RoleSystem, Content: restaurantPrompt},
			{Role: providers.RoleUser, Content: text},
		})
		if err == nil && strings.TrimSpace(answer) != "" {
			return Reply{Text: answer, Source: SourceDelegated}
		}
		b.logger.Warn("delegated chat answer failed, using keyword lookup", zap.Error(err))
	}

	answer, source := Lookup(text)
	return Reply{Text: answer, Source: source}
}

// addToCart adds the dish named in text; false when no dish is named
func (b *Bot) addToCart(ctx context.Context, text string) (Reply, bool) {
	items, err := b.menu.List(ctx)
	if err != nil {
		b.logger.Error("failed to load menu for add-to-cart intent", zap.Error(err))
		return Reply{}, false
	}

	item, ok := catalog.FindByName(items, text)
	if !ok {
		return Reply{}, false
	}

	b.cart.AddItem(item)
	return Reply{
		Text:      fmt.Sprintf(addedAnswerFmt, item.Name, b.cart.ItemCount()),
		Source:    SourceCart,
		AddedItem: &item,
	}, true
}
