package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vkadam-18/LVDI-2D/internal/config"
	"github.com/vkadam-18/LVDI-2D/internal/handler"
	"github.com/vkadam-18/LVDI-2D/internal/logging"
	"github.com/vkadam-18/LVDI-2D/internal/model"
	"github.com/vkadam-18/LVDI-2D/internal/repository"
	"github.com/vkadam-18/LVDI-2D/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("LegalView Insights",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	ctx := context.Background()

	// Initialize database connection
	var repo *repository.PostgresRepository
	if cfg.PostgreSQL.Enabled {
		repo, err = repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer repo.Close()

		if err := repo.Migrate(ctx); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
		logger.Info("✅ Connected to PostgreSQL database")
	} else {
		logger.Warn("⚠️  PostgreSQL is disabled - query log, feedback and intent cache are off")
	}

	// Pick the table source
	var source service.TableSource
	switch cfg.Data.Source {
	case "postgres":
		source = repo
	default:
		source = repository.NewFileSource(cfg.Data.Dir)
	}
	logger.Info("✅ Table source ready",
		zap.String("source", cfg.Data.Source),
		zap.String("default_version", cfg.Data.DefaultVersion),
		zap.Strings("versions", cfg.Data.Versions),
	)

	// Initialize model client
	provider, err := config.NewCredentialsProvider(cfg.Model.CredentialsSource, cfg.Model.SecretsFile)
	if err != nil {
		logger.Fatal("Failed to configure model credentials", zap.Error(err))
	}
	creds, err := provider.Credentials()
	if err != nil {
		logger.Fatal("Failed to load model credentials", zap.String("source", provider.Name()), zap.Error(err))
	}
	client, err := service.NewModelClient(ctx, cfg.Model, creds, logger)
	if err != nil {
		logger.Fatal("Failed to create model client", zap.Error(err))
	}
	if client.IsEnabled() {
		logger.Info("✅ Model client initialized",
			zap.String("provider", cfg.Model.Provider),
			zap.String("credentials", provider.Name()),
			zap.String("deployment", creds.DeploymentName),
		)
	} else {
		logger.Warn("⚠️  Model client is disabled - text questions will fail",
			zap.String("provider", cfg.Model.Provider),
			zap.String("credentials", provider.Name()),
		)
	}

	metrics := service.NewMetrics(prometheus.DefaultRegisterer)

	// Initialize services
	resolver := service.NewIntentResolver(client, cfg.Intent.RepairJSON, metrics, logger)

	var embedder service.Embedder
	if e, ok := client.(service.Embedder); ok && e.EmbeddingsEnabled() {
		embedder = e
	}
	var store service.QueryLogStore
	if repo != nil {
		store = repo
	}

	assistant := service.NewAssistantService(source, resolver, embedder, store, metrics, logger, service.AssistantOptions{
		DefaultVersion:   cfg.Data.DefaultVersion,
		Versions:         cfg.Data.Versions,
		CacheEnabled:     cfg.Intent.CacheEnabled,
		CacheMaxDistance: cfg.Intent.CacheMaxDistance,
	})

	// Warm the default version so a broken data folder fails at startup
	if _, err := assistant.Tables(ctx, model.NormalizeVersion(cfg.Data.DefaultVersion)); err != nil {
		logger.Fatal("Failed to load default tables", zap.Error(err))
	}

	logger.Info("✅ Services initialized")

	// Initialize handlers
	askHandler := handler.NewAskHandler(assistant, logger)
	feedbackHandler := handler.NewFeedbackHandler(assistant)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitList(cfg.Server.AllowedOrigins)
	corsConfig.AllowMethods = splitList(cfg.Server.AllowedMethods)
	corsConfig.AllowHeaders = splitList(cfg.Server.AllowedHeaders)
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{
			"status":     "healthy",
			"service":    "legalview-insights",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
			"model":      client.IsEnabled(),
		}
		if repo != nil {
			if err := repo.Ping(c.Request.Context()); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body["database"] = err.Error()
			}
		}
		c.JSON(status, body)
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		// Ask endpoints
		apiV1.POST("/ask", askHandler.Ask)
		apiV1.POST("/ask/stream", askHandler.AskStream) // Streaming ask
		apiV1.POST("/intent", askHandler.Intent)
		apiV1.GET("/versions/:version/tables", askHandler.Catalog)

		// Feedback endpoint
		apiV1.POST("/feedback", feedbackHandler.Submit)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}
	logger.Info("🚀 Starting server", zap.String("addr", addr))

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shut down", zap.Error(err))
	}
	logger.Info("✅ Server stopped")
}

// requestLogger logs one line per request
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
