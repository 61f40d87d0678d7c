// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/venueworks/av-concierge/internal/agent"
	"github.com/venueworks/av-concierge/internal/attachment"
	"github.com/venueworks/av-concierge/internal/config"
	"github.com/venueworks/av-concierge/internal/events"
	"github.com/venueworks/av-concierge/internal/handler"
	"github.com/venueworks/av-concierge/internal/llm"
	"github.com/venueworks/av-concierge/internal/middleware"
	"github.com/venueworks/av-concierge/internal/prompt"
	"github.com/venueworks/av-concierge/internal/store"
	"github.com/venueworks/av-concierge/pkg/logger"
	"github.com/venueworks/av-concierge/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "av-concierge", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to Postgres
	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	// Connect to NATS for event publishing; optional
	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		publisher, err = events.Connect(ctx, events.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Warn("failed to connect to NATS, event publishing disabled", zap.Error(err))
			publisher = nil
		} else {
			defer publisher.Close()
			if err := publisher.EnsureStream(ctx); err != nil {
				log.Warn("failed to ensure event stream", zap.Error(err))
			}
		}
	}

	// Initialize LLM client
	llmClient, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	if err != nil {
		log.Error("failed to create OpenAI client", zap.Error(err))
		os.Exit(1)
	}

	// Knowledge base: embedded default unless a file override is configured
	knowledgeBase := ""
	if cfg.KnowledgeBaseFile != "" {
		data, err := os.ReadFile(cfg.KnowledgeBaseFile)
		if err != nil {
			log.Error("failed to read knowledge base file", zap.Error(err))
			os.Exit(1)
		}
		knowledgeBase = string(data)
	}

	// Initialize services
	propertyStore := store.NewPropertyStore(db, log)
	assembler := prompt.NewAssembler(knowledgeBase)
	processor := attachment.NewProcessor(log)
	validator := agent.NewInventoryValidator(propertyStore)
	executors := agent.NewExecutors(propertyStore, validator, log)
	chatService := agent.NewService(propertyStore, assembler, llmClient, executors, publisher, log, agent.Options{
		Model:            cfg.OpenAIModel,
		Temperature:      cfg.LLMTemperature,
		MaxTokens:        cfg.LLMMaxTokens,
		MaxFunctionCalls: cfg.MaxFunctionCalls,
	})

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(db, publisher)
	chatHandler := handler.NewChatHandler(chatService, processor, log)
	propertyHandler := handler.NewPropertyHandler(propertyStore, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/chat", chatHandler.Chat)

		r.Route("/properties/{id}", func(r chi.Router) {
			r.Get("/", propertyHandler.Get)
			r.Get("/rooms", propertyHandler.Rooms)
			r.Get("/inventory", propertyHandler.Inventory)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
