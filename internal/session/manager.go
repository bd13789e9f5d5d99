package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"smartbite/internal/cart"
	"smartbite/internal/catalog"
	"smartbite/internal/chat"
	"smartbite/internal/models"
	"smartbite/internal/models/providers"
	"smartbite/internal/monitoring"
	"smartbite/internal/recommendation"
	"smartbite/internal/voice"
)

// ErrSessionNotFound is returned for unknown or ended sessions
var ErrSessionNotFound = errors.New("session not found")

// Dependencies are shared by every session
type Dependencies struct {
	Catalog  catalog.Repository
	Provider providers.Provider
	Engine   *recommendation.Engine
	Narrator *voice.Narrator
	Metrics  *monitoring.Metrics
	Logger   *zap.Logger
}

// Manager keeps the most recently used sessions; evicted sessions are torn down
type Manager struct {
	mu    sync.Mutex
	cache *lru.Cache
	deps  Dependencies
}

// NewManager creates a manager holding at most capacity sessions
func NewManager(capacity int, deps Dependencies) (*Manager, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Engine == nil {
		deps.Engine = recommendation.NewEngine(deps.Provider, deps.Metrics, deps.Logger)
	}

	m := &Manager{deps: deps}
	cache, err := lru.NewWithEvict(capacity, m.onEvict)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	m.cache = cache
	return m, nil
}

// Create starts a new session with the default preferences
func (m *Manager) Create() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.create(uuid.New().String())
}

// Get returns a live session
func (m *Manager) Get(id string) (*Session, error) {
	value, ok := m.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}
	return value.(*Session), nil
}

// GetOrCreate returns the session for id, creating one when id is empty or unknown.
// The boolean is true when a new session was created.
func (m *Manager) GetOrCreate(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != "" {
		if value, ok := m.cache.Get(id); ok {
			return value.(*Session), false
		}
	}
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.New().String()
	}
	return m.create(id), true
}

// End tears a session down
func (m *Manager) End(id string) error {
	if !m.cache.Remove(id) {
		return fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}
	return nil
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	return m.cache.Len()
}

// Close tears down every session
func (m *Manager) Close() {
	m.cache.Purge()
}

// create must be called with m.mu held
func (m *Manager) create(id string) *Session {
	store := cart.NewStore(m.deps.Metrics)

	opts := []chat.Option{
		chat.WithNarrator(m.deps.Narrator),
		chat.WithMetrics(m.deps.Metrics),
		chat.WithLogger(m.deps.Logger.With(zap.String("session", id))),
	}
	if m.deps.Provider != nil {
		opts = append(opts, chat.WithProvider(m.deps.Provider))
	}

	s := &Session{
		ID:          id,
		CreatedAt:   time.Now(),
		Cart:        store,
		Bot:         chat.NewBot(m.deps.Catalog, store, opts...),
		Feed:        recommendation.NewFeed(m.deps.Engine, m.deps.Metrics, m.deps.Logger),
		preferences: models.DefaultPreferences(),
	}

	m.cache.Add(id, s)
	m.deps.Metrics.SessionStarted()
	m.deps.Logger.Debug("session started", zap.String("session", id))

	if m.deps.Catalog != nil {
		menu, err := m.deps.Catalog.List(context.Background())
		if err != nil {
			m.deps.Logger.Warn("failed to load menu for recommendations", zap.Error(err))
		} else {
			s.RefreshRecommendations(menu)
		}
	}
	return s
}

// onEvict runs inside the cache lock and must not call back into the cache
func (m *Manager) onEvict(key, value interface{}) {
	s, ok := value.(*Session)
	if !ok {
		return
	}
	s.close()
	m.deps.Metrics.SessionEnded()
	m.deps.Logger.Debug("session ended", zap.String("session", s.ID))
}
