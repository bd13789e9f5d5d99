package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"smartbite/internal/api"
	"smartbite/internal/catalog"
	"smartbite/internal/config"
	"smartbite/internal/database"
	"smartbite/internal/logger"
	"smartbite/internal/models"
	"smartbite/internal/monitoring"
	"smartbite/internal/recommendation"
	"smartbite/internal/session"
	"smartbite/internal/voice"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides the config file)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides the config file)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Metrics.Port = *metricsPort
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := monitoring.NewMetrics(nil)
	metrics.Registry().MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Initialize LLM provider; without a credential only the rule-based paths run
	if !cfg.HasLLMCredential() {
		zl.Info("No LLM credential configured, delegated recommendations and chat are disabled",
			zap.String("provider", cfg.LLM.Provider))
	}
	provider, err := models.NewProvider(cfg.LLM, metrics, zl)
	if err != nil {
		zl.Fatal("Failed to initialize LLM provider", zap.Error(err))
	}
	if provider != nil {
		zl.Info("LLM provider ready", zap.String("provider", provider.Name()), zap.String("model", cfg.LLM.Model))
	}

	// Initialize menu catalog
	menu, db, err := initializeCatalog(cfg)
	if err != nil {
		zl.Fatal("Failed to initialize catalog", zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}

	narrator := voice.NewNarrator(cfg.Voice.Enabled, voice.Settings{
		Language: cfg.Voice.Language,
		Rate:     cfg.Voice.Rate,
		Pitch:    cfg.Voice.Pitch,
		Volume:   cfg.Voice.Volume,
	})
	engine := recommendation.NewEngine(provider, metrics, zl)

	sessions, err := session.NewManager(cfg.Sessions.Capacity, session.Dependencies{
		Catalog:  menu,
		Provider: provider,
		Engine:   engine,
		Narrator: narrator,
		Metrics:  metrics,
		Logger:   zl,
	})
	if err != nil {
		zl.Fatal("Failed to initialize sessions", zap.Error(err))
	}
	defer sessions.Close()

	// Initialize API server
	apiServer := api.NewServer(api.Options{
		Catalog:        menu,
		Sessions:       sessions,
		Engine:         engine,
		Provider:       provider,
		Narrator:       narrator,
		Metrics:        metrics,
		Logger:         zl,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: apiServer.Router,
	}

	// Start metrics server
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = newMetricsServer(cfg.Metrics, metrics)
		go func() {
			zl.Info("Starting metrics server", zap.Int("port", cfg.Metrics.Port))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				zl.Error("Metrics server error", zap.Error(err))
			}
		}()
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		zl.Info("Shutting down servers...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			zl.Error("API server shutdown error", zap.Error(err))
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				zl.Error("Metrics server shutdown error", zap.Error(err))
			}
		}
	}()

	// Start server
	zl.Info("Starting API server", zap.Int("port", cfg.Server.Port), zap.String("environment", cfg.Environment))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zl.Fatal("API server error", zap.Error(err))
	}
}

func initializeCatalog(cfg *config.Config) (catalog.Repository, *gorm.DB, error) {
	if !cfg.Database.Enabled {
		return catalog.NewStaticRepository(catalog.DefaultMenu()), nil, nil
	}

	db, err := database.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}

	repo, err := catalog.NewGormRepository(db, catalog.DefaultMenu())
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return repo, db, nil
}

func newMetricsServer(cfg config.MetricsConfig, metrics *monitoring.Metrics) *http.Server {
	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}

	metricsRouter := gin.New()
	metricsRouter.Use(gin.Recovery())
	metricsRouter.GET(path, gin.WrapH(metrics.Handler()))

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: metricsRouter,
	}
}
