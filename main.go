package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"

	"verdix/config"
	"verdix/database"
	"verdix/gemini"
	"verdix/handlers"
	"verdix/llm"
	"verdix/metrics"
	"verdix/openai"
	"verdix/osm"
	"verdix/rabbitmq"
	"verdix/service"
	"verdix/stubllm"
	"verdix/version"
)

func newLLMClient(cfg *config.Config) llm.Client {
	switch cfg.LLMProvider {
	case "stub":
		return stubllm.NewClient()
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Fatal("OPENAI_API_KEY environment variable is required")
		}
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, "", cfg.LLMTimeout)
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Fatal("GEMINI_API_KEY environment variable is required")
		}
		return gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, gemini.Options{
			Temperature:     cfg.GeminiTemperature,
			TopP:            cfg.GeminiTopP,
			MaxOutputTokens: cfg.GeminiMaxOutputTokens,
			Timeout:         cfg.LLMTimeout,
		})
	default:
		log.Fatalf("Unknown LLM_PROVIDER %q", cfg.LLMProvider)
		return nil
	}
}

func main() {
	// Load configuration
	cfg := config.Load()
	if level, err := log.ParseLevel(cfg.LogLevel); err != nil {
		log.Warnf("Invalid LOG_LEVEL %q, using info", cfg.LogLevel)
	} else {
		log.SetLevel(level)
	}
	metrics.Register()

	v := version.Get("verdix")
	log.WithFields(log.Fields{"version": v.Version, "commit": v.Commit}).Info("Starting verdix")

	client := newLLMClient(cfg)
	log.Infof("Using %s vision model", client.SourceName())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Storage: MySQL when enabled, in-memory history otherwise
	var store database.Store
	var recycling osm.Finder = osm.NewClient(cfg.OverpassURL)
	if cfg.DBEnabled {
		db, err := database.NewDatabase(ctx, cfg.DSN())
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		if err := db.CreateScansTable(ctx); err != nil {
			log.Fatalf("Failed to create scans table: %v", err)
		}
		cached := osm.NewCachedService(db.DB(), recycling)
		if err := cached.CreateCacheTable(ctx); err != nil {
			log.Fatalf("Failed to create recycling cache table: %v", err)
		}
		if n, err := cached.CleanExpiredCache(ctx); err != nil {
			log.Warnf("Failed to clean recycling cache: %v", err)
		} else if n > 0 {
			log.Infof("Removed %d expired recycling cache entries", n)
		}
		store, recycling = db, cached
	} else {
		log.Info("DB_ENABLED is off, keeping scan history in memory")
		store = database.NewMemoryStore()
	}
	defer store.Close()

	var events service.EventPublisher
	if cfg.AMQPEnabled {
		pub, err := rabbitmq.NewPublisher(cfg.GetAMQPURL(), cfg.AMQPExchange, cfg.AMQPScanRoutingKey)
		if err != nil {
			log.Fatalf("Failed to create rabbitmq publisher: %v", err)
		}
		defer pub.Close()
		events = pub
	}

	svc := service.New(client, store, events, service.Options{
		HistoryLimit:      cfg.HistoryLimit,
		MaxImageDimension: cfg.ImageMaxDimension,
		LLMTimeout:        cfg.LLMTimeout,
	})
	h := handlers.NewHandlers(svc, recycling, cfg.RecyclingDefaultRadiusKm, cfg.MaxImageBytes)
	router := handlers.NewRouter(h, handlers.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		JWTSecret:      cfg.JWTSecret,
		RateLimit:      cfg.RateLimit,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infof("Starting HTTP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
