package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"smartbite/internal/catalog"
	"smartbite/internal/models/providers"
	"smartbite/internal/monitoring"
	"smartbite/internal/recommendation"
	"smartbite/internal/session"
	"smartbite/internal/voice"
)

// SessionHeader carries the session id in both directions
const SessionHeader = "X-Session-ID"

// Options wires the server's collaborators
type Options struct {
	Catalog        catalog.Repository
	Sessions       *session.Manager
	Engine         *recommendation.Engine
	Provider       providers.Provider
	Narrator       *voice.Narrator
	Metrics        *monitoring.Metrics
	Logger         *zap.Logger
	AllowedOrigins []string
}

// Server is the storefront HTTP API
type Server struct {
	Router *gin.Engine

	catalog   catalog.Repository
	sessions  *session.Manager
	engine    *recommendation.Engine
	provider  providers.Provider
	narrator  *voice.Narrator
	metrics   *monitoring.Metrics
	logger    *zap.Logger
	startedAt time.Time
}

// NewServer creates a new API server instance
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = monitoring.NewMetrics(nil)
	}
	if opts.Engine == nil {
		opts.Engine = recommendation.NewEngine(opts.Provider, opts.Metrics, opts.Logger)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(opts.Logger))
	if len(opts.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", SessionHeader},
			ExposeHeaders:    []string{SessionHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	s := &Server{
		Router:    router,
		catalog:   opts.Catalog,
		sessions:  opts.Sessions,
		engine:    opts.Engine,
		provider:  opts.Provider,
		narrator:  opts.Narrator,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		startedAt: time.Now(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "SmartBite API is running"})
	})

	v1 := s.Router.Group("/api/v1")
	{
		// Menu browsing
		v1.GET("/menu", s.ListMenu)
		v1.GET("/menu/:id", s.GetMenuItem)

		// Stateless recommendation
		v1.POST("/recommendations", s.RecommendOnce)

		// Reservations
		v1.GET("/reservations/slots", s.ListReservationSlots)
		v1.POST("/reservations", s.CreateReservation)

		// Reviews
		v1.POST("/reviews/sentiment", s.AnalyzeSentiment)

		// Voice
		v1.GET("/voice/settings", s.GetVoiceSettings)

		// Admin
		v1.GET("/admin/overview", s.AdminOverview)
	}

	scoped := v1.Group("", s.withSession)
	{
		scoped.DELETE("/session", s.EndSession)

		// Cart
		scoped.GET("/cart", s.GetCart)
		scoped.POST("/cart/items", s.AddCartItem)
		scoped.PUT("/cart/items/:id", s.UpdateCartItem)
		scoped.DELETE("/cart/items/:id", s.RemoveCartItem)
		scoped.DELETE("/cart", s.ClearCart)

		// Orders
		scoped.GET("/orders/summary", s.OrderSummary)
		scoped.POST("/orders/checkout", s.Checkout)
		scoped.GET("/orders", s.ListOrders)

		// Preferences and recommendation feed
		scoped.GET("/preferences", s.GetPreferences)
		scoped.PUT("/preferences", s.UpdatePreferences)
		scoped.GET("/recommendations", s.GetRecommendations)

		// Chat
		scoped.POST("/chat", s.Chat)
		scoped.GET("/chat/transcript", s.ChatTranscript)
		scoped.GET("/chat/ws", s.handleWebSocket)
	}
}

// withSession resolves the caller's session from the header or the
// session_id query parameter, creating one when needed
func (s *Server) withSession(c *gin.Context) {
	id := c.GetHeader(SessionHeader)
	if id == "" {
		id = c.Query("session_id")
	}

	sess, created := s.sessions.GetOrCreate(id)
	if created {
		s.logger.Debug("created session", zap.String("session", sess.ID))
	}

	c.Header(SessionHeader, sess.ID)
	c.Set(sessionKey, sess)
	c.Next()
}

const sessionKey = "session"

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

// requestLogger logs one line per request
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("request failed", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("request rejected", fields...)
		default:
			logger.Info("request handled", fields...)
		}
	}
}
