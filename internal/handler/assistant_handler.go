package handler

import (
	"net/http"

	"github.com/oblozinskyroman/stars/internal/domain"
	"github.com/oblozinskyroman/stars/internal/service"

	"go.uber.org/zap"
)

// POST /v1/assistant
func assistantHandler(svc *service.AssistantService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "handler.Assistant")
		defer span.End()

		var req domain.AssistantRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		reply, err := svc.Ask(ctx, req.Prompt)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, reply)
	}
}
