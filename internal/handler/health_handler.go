package handler

import (
	"net/http"
	"time"

	"github.com/oblozinskyroman/stars/internal/domain"
	"github.com/oblozinskyroman/stars/internal/infra/observability"
)

// ============================================================
// Operational endpoints
// ============================================================

// GET /healthz
func healthzHandler(supabaseConfigured bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC().Format(time.RFC3339)

		backend := "in-memory"
		if supabaseConfigured {
			backend = "supabase"
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status: "ok",
			Services: []domain.ServiceHealth{
				{Name: backend, Status: "configured", LastChecked: now},
			},
			Timestamp: now,
		})
	}
}

// GET /readyz
func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// GET /v1/metrics/site
func siteMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetSiteSnapshot())
	}
}
