package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"offer-composer-api/internal/cache"
	"offer-composer-api/internal/config"
	"offer-composer-api/internal/drafts"
	"offer-composer-api/internal/events"
	"offer-composer-api/internal/extraction"
	"offer-composer-api/internal/features"
	"offer-composer-api/internal/handler"
	"offer-composer-api/internal/journal"
	"offer-composer-api/internal/lms"
	"offer-composer-api/internal/middleware"
	"offer-composer-api/internal/service"
	"offer-composer-api/internal/tracing"
)

func main() {
	configFile := flag.String("config", "", "Path to JSON config file (env vars take precedence)")
	port := flag.String("port", "", "Server port (overrides config)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize tracing
	if _, err := tracing.InitTracing(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: "offer-composer-api",
		Environment: cfg.Tracing.Environment,
	}); err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracing: %v", err)
		}
	}()

	// Draft store backend: Redis when configured, in-process memory otherwise
	var backend cache.Store
	if cfg.Cache.RedisAddr != "" {
		redisStore, err := cache.NewRedisStore(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		backend = redisStore
		log.Printf("Draft store: redis (%s)", cfg.Cache.RedisAddr)
	} else {
		backend = cache.NewMemoryStore()
		log.Printf("Draft store: in-memory")
	}
	draftStore := drafts.NewStore(backend, time.Duration(cfg.Cache.DraftTTLSeconds)*time.Second)

	// Publish journal
	var jnl *journal.Journal
	if cfg.Journal.Enabled {
		jnl, err = journal.New(cfg.Journal.Path)
		if err != nil {
			log.Fatalf("Failed to initialize journal: %v", err)
		}
		defer jnl.Close()
	}

	// Feature flags
	flags := features.NewManager()
	flags.Register(features.FeatureStrictPercentage, false, "Reject out-of-range percentages instead of clamping")
	flags.Register(features.FeatureEventHooksEnabled, true, "Enable in-process event hooks")
	flags.Register(features.FeatureJournalEnabled, cfg.Journal.Enabled, "Record publish attempts in the journal")

	// Event hooks
	evts := events.NewManager(flags.IsEnabled(features.FeatureEventHooksEnabled))
	defer evts.Shutdown()
	evts.Subscribe(events.EventOfferExtracted, func(ctx context.Context, event events.Event) error {
		if data, ok := event.Data.(events.OfferExtractedData); ok {
			log.Printf("Extracted offer %q into draft %s", data.Record.OfferName, data.DraftID)
		}
		return nil
	})
	evts.Subscribe(events.EventOfferPublished, func(ctx context.Context, event events.Event) error {
		if data, ok := event.Data.(events.OfferPublishedData); ok {
			log.Printf("Publish attempt for %q: %s", data.Record.OfferName, data.Outcome)
		}
		return nil
	})

	// Outbound clients
	extractor := extraction.NewClient(extraction.Config{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		Timeout:     time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second,
	})

	authManager := lms.NewAuthManager(lms.AuthConfig{
		BaseURL:  cfg.LMS.BaseURL,
		Email:    cfg.LMS.Email,
		Password: cfg.LMS.Password,
		App:      cfg.LMS.App,
		Timeout:  time.Duration(cfg.LMS.TimeoutSeconds) * time.Second,
	})

	publisher := lms.NewPublisher(authManager, lms.PublisherConfig{
		BaseURL: cfg.LMS.BaseURL,
		Constants: lms.Constants{
			MerchantID: cfg.LMS.MerchantID,
			ClientID:   cfg.LMS.ClientID,
			Timezone:   cfg.LMS.Timezone,
		},
		Timeout: time.Duration(cfg.LMS.TimeoutSeconds) * time.Second,
	})

	svc := service.NewService(extractor, publisher, draftStore, jnl, evts, flags)

	h := handler.NewHandlerWithOptions(svc, handler.NewHandlerOptions{
		MaxBodySize: cfg.Server.MaxRequestBodySize,
	})

	// Rate limiter
	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimit.Rate, time.Duration(cfg.RateLimit.Window)*time.Second)
		defer rateLimiter.Stop()
	}

	// Setup router
	r := chi.NewRouter()

	// Middleware (order matters)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	if cfg.Tracing.Enabled {
		r.Use(middleware.TracingMiddleware())
	}
	if rateLimiter != nil {
		r.Use(middleware.RateLimitMiddleware(rateLimiter))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(cfg.Server.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Routes
	r.Route("/offers", func(r chi.Router) {
		r.Post("/extract", h.ExtractOffer)
		r.Post("/publish", h.PublishOffer)
		r.Get("/publishes", h.ListPublishes)
		r.Route("/drafts/{draft_id}", func(r chi.Router) {
			r.Get("/", h.GetDraft)
			r.Put("/", h.UpdateDraft)
			r.Post("/publish", h.PublishDraft)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting HTTP server on %s", addr)
	log.Printf("Journal: enabled=%v path=%s", cfg.Journal.Enabled, cfg.Journal.Path)
	log.Printf("Rate limit: enabled=%v %d requests per %d seconds", cfg.RateLimit.Enabled, cfg.RateLimit.Rate, cfg.RateLimit.Window)

	server := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
}
