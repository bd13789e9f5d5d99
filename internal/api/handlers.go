package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"smartbite/internal/cart"
	"smartbite/internal/catalog"
	"smartbite/internal/chat"
	"smartbite/internal/models"
	"smartbite/internal/recommendation"
	"smartbite/internal/session"
	"smartbite/internal/voice"
)

// ListMenu returns the menu, narrowed by the search, category and dietary query parameters
func (s *Server) ListMenu(c *gin.Context) {
	items, err := s.catalog.List(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to list menu", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items = catalog.Browse(items, catalog.Query{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Dietary:  c.Query("dietary"),
	})

	c.JSON(http.StatusOK, gin.H{
		"items":           items,
		"categories":      models.MenuCategories,
		"dietary_options": models.DietaryOptions,
	})
}

// GetMenuItem returns a single menu item
func (s *Server) GetMenuItem(c *gin.Context) {
	item, err := s.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

// GetCart returns the session cart
func (s *Server) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c).Cart.Snapshot())
}

type addCartItemRequest struct {
	ID string `json:"id" binding:"required"`
}

// AddCartItem adds one unit of a menu item to the cart
func (s *Server) AddCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := s.catalog.Get(c.Request.Context(), req.ID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	store := currentSession(c).Cart
	store.AddItem(item)
	c.JSON(http.StatusOK, store.Snapshot())
}

type updateCartItemRequest struct {
	Quantity            *int    `json:"quantity"`
	SpecialInstructions *string `json:"special_instructions"`
}

// UpdateCartItem changes the quantity or the special instructions of a cart line.
// A quantity below one removes the line.
func (s *Server) UpdateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity == nil && req.SpecialInstructions == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity or special_instructions is required"})
		return
	}

	id := c.Param("id")
	store := currentSession(c).Cart
	if req.SpecialInstructions != nil {
		store.SetInstructions(id, *req.SpecialInstructions)
	}
	if req.Quantity != nil {
		store.UpdateQuantity(id, *req.Quantity)
	}
	c.JSON(http.StatusOK, store.Snapshot())
}

// RemoveCartItem drops a line from the cart
func (s *Server) RemoveCartItem(c *gin.Context) {
	store := currentSession(c).Cart
	store.RemoveItem(c.Param("id"))
	c.JSON(http.StatusOK, store.Snapshot())
}

// ClearCart empties the cart
func (s *Server) ClearCart(c *gin.Context) {
	store := currentSession(c).Cart
	store.Clear()
	c.JSON(http.StatusOK, store.Snapshot())
}

// OrderSummary returns the cart with tax and delivery applied
func (s *Server) OrderSummary(c *gin.Context) {
	snap := currentSession(c).Cart.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"cart":    snap,
		"summary": cart.Summarize(snap),
	})
}

type checkoutRequest struct {
	Customer models.CustomerInfo `json:"customer"`
}

// Checkout turns the cart into a confirmed order and empties it
func (s *Server) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := currentSession(c)
	order, err := cart.Checkout(sess.Cart, req.Customer)
	if err != nil {
		if errors.Is(err, cart.ErrEmptyCart) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	sess.RecordOrder(*order)
	s.refresh(c, sess)

	s.logger.Info("order placed",
		zap.String("session", sess.ID),
		zap.String("order", order.ID),
		zap.Float64("total", order.Total))
	c.JSON(http.StatusCreated, order)
}

// ListOrders returns the orders placed in this session
func (s *Server) ListOrders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"orders": currentSession(c).Orders()})
}

// GetPreferences returns the session preferences
func (s *Server) GetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c).Preferences())
}

// UpdatePreferences replaces the session preferences and recomputes recommendations
func (s *Server) UpdatePreferences(c *gin.Context) {
	var prefs models.UserPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if prefs.PriceRange.Min < 0 || prefs.PriceRange.Max < prefs.PriceRange.Min {
		c.JSON(http.StatusBadRequest, gin.H{"error": "priceRange must satisfy 0 <= min <= max"})
		return
	}

	sess := currentSession(c)
	sess.SetPreferences(&prefs)
	s.refresh(c, sess)

	c.JSON(http.StatusOK, gin.H{
		"preferences":     sess.Preferences(),
		"recommendations": sess.Feed.State(),
	})
}

// GetRecommendations returns the current state of the session's recommendation feed
func (s *Server) GetRecommendations(c *gin.Context) {
	sess := currentSession(c)
	s.refresh(c, sess)
	c.JSON(http.StatusOK, sess.Feed.State())
}

type recommendRequest struct {
	Preferences *models.UserPreferences `json:"preferences"`
	History     []models.Order          `json:"history"`
}

// RecommendOnce computes recommendations for the posted preferences without a session
func (s *Server) RecommendOnce(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	menu, err := s.catalog.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result := s.engine.Recommend(c.Request.Context(), recommendation.Request{
		Catalog:     menu,
		Preferences: req.Preferences,
		History:     req.History,
	})
	c.JSON(http.StatusOK, result)
}

type chatRequest struct {
	Text           string `json:"text"`
	Source         string `json:"source"`
	VoiceSupported bool   `json:"voice_supported"`
}

func (r chatRequest) input() chat.Input {
	return chat.Input{
		Text:           strings.TrimSpace(r.Text),
		Channel:        voice.ParseChannel(r.Source),
		VoiceSupported: r.VoiceSupported,
	}
}

// Chat answers one chat message
func (s *Server) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in := req.input()
	if in.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	sess := currentSession(c)
	reply := sess.Bot.Respond(c.Request.Context(), in)
	c.JSON(http.StatusOK, gin.H{
		"reply": reply,
		"cart":  sess.Cart.Snapshot(),
	})
}

// ChatTranscript returns the session's chat history
func (s *Server) ChatTranscript(c *gin.Context) {
	transcript := currentSession(c).Bot.Transcript()
	c.JSON(http.StatusOK, gin.H{
		"messages": transcript.Messages(),
		"count":    transcript.Len(),
	})
}

// ListReservationSlots returns the bookable time slots
func (s *Server) ListReservationSlots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"slots":      models.ReservationSlots(),
		"min_guests": models.MinGuests,
		"max_guests": models.MaxGuests,
	})
}

type reservationRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Phone           string `json:"phone" binding:"required"`
	Date            string `json:"date" binding:"required"`
	Time            string `json:"time" binding:"required"`
	Guests          int    `json:"guests" binding:"required,min=1,max=20"`
	SpecialRequests string `json:"special_requests"`
}

// CreateReservation books a table
func (s *Server) CreateReservation(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reservation := models.Reservation{
		Name:            strings.TrimSpace(req.Name),
		Email:           req.Email,
		Phone:           strings.TrimSpace(req.Phone),
		Date:            req.Date,
		Time:            req.Time,
		Guests:          req.Guests,
		SpecialRequests: req.SpecialRequests,
	}
	if reservation.Name == "" || reservation.Phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and phone are required"})
		return
	}
	if err := models.ValidateReservation(&reservation); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reservation.ID = uuid.New().String()
	reservation.Status = models.ReservationStatusConfirmed
	reservation.CreatedAt = time.Now()
	s.metrics.RecordReservation()

	s.logger.Info("reservation confirmed",
		zap.String("reservation", reservation.ID),
		zap.String("date", reservation.Date),
		zap.String("time", reservation.Time),
		zap.Int("guests", reservation.Guests))
	c.JSON(http.StatusCreated, reservation)
}

type sentimentRequest struct {
	Text string `json:"text" binding:"required"`
}

// AnalyzeSentiment classifies a review; without a provider the answer is neutral
func (s *Server) AnalyzeSentiment(c *gin.Context) {
	var req sentimentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, chat.AnalyzeSentiment(c.Request.Context(), s.provider, req.Text))
}

// GetVoiceSettings tells clients whether to narrate replies and with which parameters
func (s *Server) GetVoiceSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"enabled":  s.narrator.Enabled(),
		"settings": s.narrator.Settings(),
	})
}

// AdminOverview reports live counters for the admin dashboard
func (s *Server) AdminOverview(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"metrics":         s.metrics.Monitor().GetMetrics(),
		"active_sessions": s.sessions.Len(),
		"ai_enabled":      s.engine.Delegating(),
		"uptime_seconds":  int(time.Since(s.startedAt).Seconds()),
	})
}

// EndSession discards the caller's session
func (s *Server) EndSession(c *gin.Context) {
	sess := currentSession(c)
	if err := s.sessions.End(sess.ID); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header(SessionHeader, "")
	c.JSON(http.StatusOK, gin.H{"status": "ended"})
}

// refresh recomputes the session's recommendations when their inputs changed
func (s *Server) refresh(c *gin.Context, sess *session.Session) {
	menu, err := s.catalog.List(c.Request.Context())
	if err != nil {
		s.logger.Warn("failed to load menu for recommendations", zap.Error(err))
		return
	}
	sess.RefreshRecommendations(menu)
}
