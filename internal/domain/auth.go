package domain

import "time"

// ============================================================
// Auth: request / response types (matches frontend API contract)
// ============================================================

// SignUpRequest is the body for POST /v1/auth/signup.
type SignUpRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	ConfirmPassword  string `json:"confirmPassword"`
	Name             string `json:"name"`
	TermsAccepted    bool   `json:"termsAccepted"`
	MarketingConsent bool   `json:"marketingConsent"`
}

// SignUpResponse is the body for 201 from POST /v1/auth/signup.
type SignUpResponse struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// SignInRequest is the body for POST /v1/auth/signin.
type SignInRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// SignInResponse is the body for 200 from POST /v1/auth/signin.
type SignInResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
	UserID       string `json:"userId"`
	DisplayName  string `json:"displayName"`
}

// MagicLinkRequest is the body for POST /v1/auth/magic-link.
type MagicLinkRequest struct {
	Email string `json:"email"`
}

// PasswordResetRequest is the body for POST /v1/auth/password-reset.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// ResendVerificationRequest is the body for POST /v1/auth/resend-verification.
type ResendVerificationRequest struct {
	Email string `json:"email"`
}

// OAuthURLResponse carries the provider redirect URL for OAuth sign-in.
type OAuthURLResponse struct {
	URL string `json:"url"`
}

// EmailAvailability is the advisory result of the debounced e-mail probe.
// It is never authoritative: the sign-up call decides uniqueness.
type EmailAvailability struct {
	Email     string `json:"email"`
	Checked   bool   `json:"checked"`
	Available bool   `json:"available"`
}

// AuthUser is the identity the auth collaborator reports for a session.
type AuthUser struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	EmailConfirmed bool   `json:"emailConfirmed"`
	Name           string `json:"name"`
}

// Session is the token pair issued by the auth collaborator.
type Session struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	Persistent   bool      `json:"persistent"`
	User         *AuthUser `json:"user"`
}

// SessionState is the projection the rest of the application reads: whether a
// session is present and who it belongs to. It is discarded and rebuilt whole
// on every reported auth change.
type SessionState struct {
	LoggedIn    bool   `json:"loggedIn"`
	UserID      string `json:"userId,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// Auth event kinds delivered to session subscribers.
const (
	AuthEventSignedIn  = "SIGNED_IN"
	AuthEventSignedOut = "SIGNED_OUT"
	AuthEventRefreshed = "TOKEN_REFRESHED"
)

// AuthEvent is broadcast by the session controller whenever the externally
// reported session changes.
type AuthEvent struct {
	Type  string       `json:"type"`
	State SessionState `json:"state"`
}

// PasswordStrength is the deterministic 0-4 strength estimate with the
// suggestions the scorer produced.
type PasswordStrength struct {
	Score       int      `json:"score"`
	Suggestions []string `json:"suggestions,omitempty"`
}
