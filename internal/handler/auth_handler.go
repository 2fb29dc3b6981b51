package handler

import (
	"net/http"

	"github.com/oblozinskyroman/stars/internal/domain"
	"github.com/oblozinskyroman/stars/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Auth endpoints
// ============================================================

// POST /v1/auth/signup
func signUpHandler(svc *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "handler.SignUp")
		defer span.End()

		var req domain.SignUpRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := svc.SignUp(r.Context(), req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

// POST /v1/auth/signin
func signInHandler(svc *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "handler.SignIn")
		defer span.End()

		var req domain.SignInRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		resp, err := svc.SignIn(r.Context(), req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// POST /v1/auth/signout
func signOutHandler(svc *service.SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "handler.SignOut")
		defer span.End()

		// Optimistic: local state clears regardless of revocation outcome.
		svc.SignOut(r.Context(), AccessTokenFromContext(r.Context()))
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "Boli ste odhlásený"})
	}
}

// POST /v1/auth/magic-link
func magicLinkHandler(svc *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.MagicLinkRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := svc.SendMagicLink(r.Context(), req.Email); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "Magic link bol odoslaný na váš e-mail!"})
	}
}

// POST /v1/auth/password-reset
func passwordResetHandler(svc *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.PasswordResetRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "Odkaz na obnovenie hesla bol odoslaný na váš e-mail!"})
	}
}

// POST /v1/auth/resend-verification
func resendVerificationHandler(svc *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.ResendVerificationRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := svc.ResendVerification(r.Context(), req.Email); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "Verifikačný e-mail bol znova odoslaný!"})
	}
}

// GET /v1/auth/oauth/google
func oauthGoogleHandler(svc *service.SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirectTo := r.URL.Query().Get("redirect_to")
		writeJSON(w, http.StatusOK, domain.OAuthURLResponse{
			URL: svc.OAuthURL("google", redirectTo),
		})
	}
}

// GET /v1/session
//
// Never fails: an invalid or missing session reports logged-out with 200.
func sessionHandler(svc *service.SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := svc.CheckSession(r.Context(), AccessTokenFromContext(r.Context()))
		writeJSON(w, http.StatusOK, state)
	}
}

// GET /v1/auth/email-available?email=&client=
//
// The optional client parameter identifies one signup form instance so its
// keystrokes debounce against each other; without it the caller's address
// (set by the RealIP middleware) scopes the debounce.
func emailAvailableHandler(svc *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.URL.Query().Get("email")
		if email == "" {
			writeError(w, http.StatusBadRequest, "email query parameter is required")
			return
		}

		clientKey := r.URL.Query().Get("client")
		if clientKey == "" {
			clientKey = r.RemoteAddr
		}

		result, err := svc.EmailAvailable(r.Context(), clientKey, email)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// POST /v1/auth/password-strength
func passwordStrengthHandler(svc *service.SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Password string `json:"password"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		writeJSON(w, http.StatusOK, svc.PasswordStrength(req.Password))
	}
}
