package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/metakai1/landsearch/internal/cache"
	"github.com/metakai1/landsearch/internal/config"
	"github.com/metakai1/landsearch/internal/extract"
	"github.com/metakai1/landsearch/internal/handler"
	"github.com/metakai1/landsearch/internal/nft"
	"github.com/metakai1/landsearch/internal/repository"
	"github.com/metakai1/landsearch/internal/service"
	"github.com/metakai1/landsearch/internal/session"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	log.Printf("Land Plot Search")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg.Logging)

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database connection
	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.AgentID,
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}
	log.Println("✅ Connected to PostgreSQL database")

	// Initialize Redis session cache
	redisCache, err := cache.NewRedisCache(cache.RedisConfig{
		Addrs:    []string{cfg.Redis.Address},
		Password: cfg.Redis.Password,
	})
	if err != nil {
		log.Fatalf("Failed to create Redis client: %v", err)
	}
	defer redisCache.Close()

	if err := redisCache.WaitForReady(context.Background(), 10*time.Second); err != nil {
		log.Fatalf("Redis is not reachable: %v", err)
	}
	log.Println("✅ Connected to Redis session cache")

	sessionStore := session.NewStore(redisCache, logger)

	// Initialize NFT floor-price client
	nftClient := nft.NewClient(cfg.NFT.APIKey, cfg.NFT.BaseURL, cfg.NFT.Collection, nil, logger)
	if cfg.NFT.APIKey == "" {
		log.Println("⚠️  RESERVOIR_API_KEY not set - price enrichment will degrade to unenriched results")
	}

	// Initialize query extractor
	var extractor extract.Extractor
	if cfg.Extractor.Enabled {
		extractor = extract.NewOpenAIExtractor(&extract.Config{
			APIKey:      cfg.Extractor.APIKey,
			BaseURL:     cfg.Extractor.BaseURL,
			Model:       cfg.Extractor.Model,
			Temperature: float32(cfg.Extractor.Temperature),
		})
		log.Printf("✅ Query extractor initialized (model: %s)", cfg.Extractor.Model)
	} else {
		log.Println("⚠️  OpenAI is disabled - free-text query extraction will not work")
		log.Println("   Set OPENAI_API_KEY environment variable to enable it")
	}

	// Initialize services
	searchService := service.NewSearchService(repo, nftClient, sessionStore, logger)

	log.Println("✅ Services initialized")

	// Initialize handlers
	searchHandler := handler.NewSearchHandler(searchService, extractor, cfg.Search.MaxResults)
	sessionHandler := handler.NewSessionHandler(sessionStore)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "land-plot-search",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		// Session lifecycle
		apiV1.POST("/sessions", sessionHandler.StartSession)
		apiV1.GET("/sessions/:userId", sessionHandler.GetSession)
		apiV1.DELETE("/sessions/:userId", sessionHandler.EndSession)

		// Search endpoints
		apiV1.POST("/search", searchHandler.Search)
		apiV1.POST("/search/extract", searchHandler.ExtractSearch)
		apiV1.GET("/properties/:id", searchHandler.GetProperty)
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("🚀 Starting server on %s", addr)
	log.Printf("📝 API root: http://localhost:%d/api/v1", cfg.Server.Port)

	// Graceful shutdown
	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	log.Println("✅ Server stopped")
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}
