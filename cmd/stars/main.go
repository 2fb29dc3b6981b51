package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oblozinskyroman/stars/internal/config"
	"github.com/oblozinskyroman/stars/internal/domain"
	"github.com/oblozinskyroman/stars/internal/handler"
	"github.com/oblozinskyroman/stars/internal/infra/cache"
	"github.com/oblozinskyroman/stars/internal/infra/client"
	"github.com/oblozinskyroman/stars/internal/infra/devauth"
	"github.com/oblozinskyroman/stars/internal/infra/observability"
	"github.com/oblozinskyroman/stars/internal/infra/resilience"
	"github.com/oblozinskyroman/stars/internal/infra/supabase"
	"github.com/oblozinskyroman/stars/internal/port"
	"github.com/oblozinskyroman/stars/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("use_supabase", cfg.UseSupabase),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("email_probe_debounce", cfg.EmailProbeDebounce),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "stars-marketplace")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	listingCache := cache.New[[]domain.CompanyWithRating](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("external-apis")

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var authAPI port.AuthAPI
	var profiles port.ProfileStore
	var supabaseClient *supabase.Client

	supabaseConfigured := cfg.UseSupabase && cfg.SupabaseURL != ""
	if supabaseConfigured {
		logger.Info("using Supabase as data backend",
			zap.String("supabase_url", cfg.SupabaseURL),
		)
		supabaseClient = supabase.NewClient(
			httpClient,
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			cb,
			resilienceCfg,
			logger,
		)
		authAPI = supabaseClient
		profiles = supabaseClient
	} else {
		logger.Info("using in-memory auth backend (dev mode)")
		dev := devauth.New(cfg.SupabaseURL, logger)
		authAPI = dev
		profiles = dev
	}

	// --- Services ---
	broker := service.NewSessionBroker()
	probe := service.NewEmailProbe(profiles, cfg.EmailProbeDebounce, logger)
	sessionSvc := service.NewSessionService(authAPI, profiles, probe, broker, metrics, logger)

	var listingSvc *service.ListingService
	var providerSvc *service.ProviderService
	var contactSvc *service.ContactService
	var accountSvc *service.AccountService
	if supabaseClient != nil {
		listingSvc = service.NewListingService(supabaseClient, listingCache, metrics, logger)
		providerSvc = service.NewProviderService(supabaseClient, metrics, logger)
		contactSvc = service.NewContactService(supabaseClient, metrics, logger)
		accountSvc = service.NewAccountService(supabaseClient, supabaseClient, supabaseClient, supabaseClient, metrics, logger)
	} else {
		logger.Warn("listing, provider, contact and account routes unavailable without Supabase")
	}

	assistantClient := client.NewAssistantClient(httpClient, cfg.AssistantURL, cb)
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)
	assistantSvc := service.NewAssistantService(assistantClient, bulkhead, metrics, logger)

	// --- Token validation ---
	var validator handler.TokenValidator
	if supabaseConfigured && cfg.SupabaseJWTSecret != "" {
		validator = handler.NewJWTValidator(cfg.SupabaseJWTSecret)
		logger.Info("validating access tokens locally")
	} else {
		validator = handler.NewRemoteValidator(authAPI)
		logger.Info("validating access tokens via auth API")
	}

	// --- Router ---
	router := handler.NewRouter(handler.Deps{
		Session:            sessionSvc,
		Listing:            listingSvc,
		Provider:           providerSvc,
		Contact:            contactSvc,
		Account:            accountSvc,
		Assistant:          assistantSvc,
		Validator:          validator,
		Metrics:            metrics,
		Logger:             logger,
		AllowedOrigins:     cfg.AllowedOrigins,
		SupabaseConfigured: supabaseConfigured,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
