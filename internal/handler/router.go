package handler

import (
	"net/http"

	"github.com/oblozinskyroman/stars/internal/infra/observability"
	"github.com/oblozinskyroman/stars/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Deps bundles everything the router needs. Data-backed services may be nil
// when Supabase is not configured; their routes then answer 503.
type Deps struct {
	Session   *service.SessionService
	Listing   *service.ListingService
	Provider  *service.ProviderService
	Contact   *service.ContactService
	Account   *service.AccountService
	Assistant *service.AssistantService

	Validator          TokenValidator
	Metrics            *observability.Metrics
	Logger             *zap.Logger
	AllowedOrigins     []string
	SupabaseConfigured bool
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(d.Logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(d.SupabaseConfigured))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Session and auth flows.
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", signUpHandler(d.Session, d.Logger))
			r.Post("/signin", signInHandler(d.Session, d.Logger))
			r.With(OptionalAuth(d.Validator)).Post("/signout", signOutHandler(d.Session))
			r.Post("/magic-link", magicLinkHandler(d.Session, d.Logger))
			r.Post("/password-reset", passwordResetHandler(d.Session, d.Logger))
			r.Post("/resend-verification", resendVerificationHandler(d.Session, d.Logger))
			r.Post("/password-strength", passwordStrengthHandler(d.Session))
			r.Get("/oauth/google", oauthGoogleHandler(d.Session))
			r.Get("/email-available", emailAvailableHandler(d.Session, d.Logger))
		})

		r.With(OptionalAuth(d.Validator)).Get("/session", sessionHandler(d.Session))

		// Public listing and forms.
		if d.Listing != nil {
			r.Get("/companies", listCompaniesHandler(d.Listing))
			r.Post("/companies/retry", retryCompaniesHandler(d.Listing))
		} else {
			r.Get("/companies", dataUnavailableHandler())
		}

		if d.Provider != nil {
			r.With(OptionalAuth(d.Validator)).Post("/providers", submitProviderHandler(d.Provider, d.Logger))
		} else {
			r.Post("/providers", dataUnavailableHandler())
		}

		if d.Contact != nil {
			r.Post("/contact", submitContactHandler(d.Contact, d.Logger))
		} else {
			r.Post("/contact", dataUnavailableHandler())
		}

		// Account pages.
		r.Route("/me", func(r chi.Router) {
			r.Use(RequireAuth(d.Validator, d.Logger))
			if d.Account == nil {
				r.Handle("/*", dataUnavailableHandler())
				return
			}
			r.Get("/", accountOverviewHandler(d.Account, d.Logger))
			r.Put("/profile", updateProfileHandler(d.Account, d.Logger))
			r.Put("/notifications", updateNotificationsHandler(d.Account, d.Logger))
			r.Post("/delete-request", deleteRequestHandler(d.Account, d.Logger))
			r.Get("/companies", myCompaniesHandler(d.Account, d.Logger))
			r.Get("/inquiries", myInquiriesHandler(d.Account, d.Logger))
		})

		// AI assistant.
		r.Post("/assistant", assistantHandler(d.Assistant, d.Logger))

		// Metrics snapshot.
		r.Get("/metrics/site", siteMetricsHandler(d.Metrics))
	})

	return r
}

func dataUnavailableHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusServiceUnavailable, "data backend is not configured")
	}
}
