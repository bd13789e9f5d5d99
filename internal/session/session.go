package session

import (
	"sync"
	"time"

	"smartbite/internal/cart"
	"smartbite/internal/chat"
	"smartbite/internal/models"
	"smartbite/internal/recommendation"
)

// Session owns the per-visitor state: cart, chat, recommendations and history
type Session struct {
	ID        string
	CreatedAt time.Time
	Cart      *cart.Store
	Bot       *chat.Bot
	Feed      *recommendation.Feed

	mu          sync.Mutex
	preferences *models.UserPreferences
	orders      []models.Order
	closed      bool
}

// Preferences returns a copy of the session's preferences
func (s *Session) Preferences() *models.UserPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preferences.Clone()
}

// SetPreferences replaces the session's preferences
func (s *Session) SetPreferences(p *models.UserPreferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preferences = p.Clone()
}

// RecordOrder appends a checked-out order to the session history
func (s *Session) RecordOrder(order models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, order)
}

// Orders returns the session's order history
func (s *Session) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Order(nil), s.orders...)
}

// RecommendationRequest bundles the current inputs of the recommendation feed
func (s *Session) RecommendationRequest(menu []models.MenuItem) recommendation.Request {
	return recommendation.Request{
		Catalog:     menu,
		Preferences: s.Preferences(),
		History:     s.Orders(),
	}
}

// RefreshRecommendations recomputes the feed if its inputs changed
func (s *Session) RefreshRecommendations(menu []models.MenuItem) uint64 {
	return s.Feed.Update(s.RecommendationRequest(menu))
}

// Closed reports whether the session has been torn down
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.Feed.Close()
}
