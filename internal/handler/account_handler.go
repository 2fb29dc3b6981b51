package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/oblozinskyroman/stars/internal/domain"
	"github.com/oblozinskyroman/stars/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Account endpoints (all behind RequireAuth)
// ============================================================

// GET /v1/me
func accountOverviewHandler(svc *service.AccountService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "handler.AccountOverview")
		defer span.End()

		overview, err := svc.Overview(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, overview)
	}
}

// PUT /v1/me/profile
func updateProfileHandler(svc *service.AccountService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "handler.UpdateProfile")
		defer span.End()

		var req domain.UpdateProfileRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		profile, err := svc.UpdateProfile(ctx, UserIDFromContext(ctx), req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// PUT /v1/me/notifications
func updateNotificationsHandler(svc *service.AccountService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "handler.UpdateNotifications")
		defer span.End()

		var req domain.UpdateNotificationsRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := svc.UpdateNotifications(ctx, UserIDFromContext(ctx), req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "Nastavenia notifikácií boli uložené"})
	}
}

// POST /v1/me/delete-request
func deleteRequestHandler(svc *service.AccountService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "handler.DeleteRequest")
		defer span.End()

		var req domain.DeletionRequestBody
		if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := svc.RequestDeletion(ctx, UserIDFromContext(ctx), req.Reason); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusAccepted, domain.SuccessResponse{
			Message: "Žiadosť o zmazanie účtu bola zaznamenaná",
		})
	}
}

// GET /v1/me/companies
func myCompaniesHandler(svc *service.AccountService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "handler.MyCompanies")
		defer span.End()

		companies, err := svc.OwnedCompanies(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, companies)
	}
}

// GET /v1/me/inquiries
func myInquiriesHandler(svc *service.AccountService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "handler.MyInquiries")
		defer span.End()

		inquiries, err := svc.OwnedInquiries(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, inquiries)
	}
}
