package handler

import (
	"net/http"

	"github.com/oblozinskyroman/stars/internal/domain"
	"github.com/oblozinskyroman/stars/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Form submission endpoints
// ============================================================

// POST /v1/providers
//
// Mounted behind OptionalAuth: the service decides on identity only after
// the honeypot short-circuit, so bots without a session still see success.
func submitProviderHandler(svc *service.ProviderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "handler.SubmitProvider")
		defer span.End()

		var form domain.ProviderForm
		if err := decodeJSON(r, &form); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := svc.Submit(r.Context(), UserIDFromContext(r.Context()), form)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, result)
	}
}

// POST /v1/contact
func submitContactHandler(svc *service.ContactService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "handler.SubmitContact")
		defer span.End()

		var form domain.ContactForm
		if err := decodeJSON(r, &form); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := svc.Submit(r.Context(), form)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, result)
	}
}
