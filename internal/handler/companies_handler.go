package handler

import (
	"net/http"
	"strings"

	"github.com/oblozinskyroman/stars/internal/domain"
	"github.com/oblozinskyroman/stars/internal/service"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Company listing endpoints
// ============================================================

func parseCompanyQuery(r *http.Request) domain.CompanyQuery {
	q := domain.CompanyQuery{
		Service: r.URL.Query().Get("service"),
		Search:  r.URL.Query().Get("q"),
		SortBy:  r.URL.Query().Get("sort"),
	}
	if raw := r.URL.Query().Get("filters"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			if f = strings.TrimSpace(f); f != "" {
				q.Filters = append(q.Filters, f)
			}
		}
	}
	return q
}

// GET /v1/companies?service=&q=&filters=&sort=
//
// Every call issues a fresh query; the composer drops stale responses on its
// own, so hammering this endpoint with changing inputs is safe.
func listCompaniesHandler(svc *service.ListingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "handler.ListCompanies")
		defer span.End()

		q := parseCompanyQuery(r)
		span.SetAttributes(
			attribute.String("query.service", q.Service),
			attribute.String("query.sort", q.SortBy),
		)

		snapshot := svc.Query(ctx, q)
		writeJSON(w, http.StatusOK, snapshot)
	}
}

// POST /v1/companies/retry?service=&q=&filters=&sort=
//
// User-initiated retry. The caller resubmits its own query parameters, so
// one client's retry never replays another client's search. Nothing retries
// automatically.
func retryCompaniesHandler(svc *service.ListingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "handler.RetryCompanies")
		defer span.End()

		writeJSON(w, http.StatusOK, svc.Retry(ctx, parseCompanyQuery(r)))
	}
}
