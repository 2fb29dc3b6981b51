// Package service contains the application logic between the HTTP handlers
// and the external collaborators.
package service

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oblozinskyroman/stars/internal/domain"
	"github.com/oblozinskyroman/stars/internal/infra/observability"
	"github.com/oblozinskyroman/stars/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service")

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// SessionService owns the authentication flows and is the single writer of
// the current session state. Everything else reads the state through
// CurrentState or subscribes to the broker.
type SessionService struct {
	auth     port.AuthAPI
	profiles port.ProfileStore
	probe    *EmailProbe
	broker   *SessionBroker
	metrics  *observability.Metrics
	logger   *zap.Logger

	// checkSeq orders concurrent session checks; only the newest one may
	// overwrite the state.
	checkSeq atomic.Uint64

	mu      sync.RWMutex
	applied uint64
	state   domain.SessionState
}

// NewSessionService wires the session controller.
func NewSessionService(auth port.AuthAPI, profiles port.ProfileStore, probe *EmailProbe, broker *SessionBroker, metrics *observability.Metrics, logger *zap.Logger) *SessionService {
	return &SessionService{
		auth:     auth,
		profiles: profiles,
		probe:    probe,
		broker:   broker,
		metrics:  metrics,
		logger:   logger,
	}
}

// CurrentState returns the last applied session state.
func (s *SessionService) CurrentState() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe exposes the broker to callers that need auth transitions.
func (s *SessionService) Subscribe() (<-chan domain.AuthEvent, func()) {
	return s.broker.Subscribe()
}

// CheckSession resolves the identity behind the token and rebuilds the
// session state from scratch. Any failure degrades to logged-out; the
// method never returns an error for a bad session.
//
// Checks may overlap (initial load plus auth-change events). Each check
// takes a sequence number up front and only the newest one is allowed to
// apply its result, so a slow early check cannot overwrite a fast later one.
func (s *SessionService) CheckSession(ctx context.Context, accessToken string) domain.SessionState {
	ctx, span := tracer.Start(ctx, "SessionService.CheckSession")
	defer span.End()

	seq := s.checkSeq.Add(1)

	state := domain.SessionState{}
	if accessToken != "" {
		user, err := s.auth.GetUser(ctx, accessToken)
		if err != nil {
			s.logger.Debug("session check degraded to logged out", zap.Error(err))
		} else {
			state = domain.SessionState{LoggedIn: true, UserID: user.ID, DisplayName: user.Name}
			if profile, err := s.profiles.GetProfile(ctx, user.ID); err == nil && profile.Name != "" {
				state.DisplayName = profile.Name
			}
		}
	}

	if !s.apply(seq, state) {
		// A newer check finished first; report its state instead.
		return s.CurrentState()
	}
	return state
}

// apply installs the state if seq is still the newest applied check.
func (s *SessionService) apply(seq uint64, state domain.SessionState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.applied {
		return false
	}
	s.applied = seq
	s.state = state
	return true
}

// SignUp runs the local gates in order and only then calls the collaborator:
// password confirmation, terms, strength threshold, advisory e-mail probe.
// A failed gate returns a field error without any network call.
func (s *SessionService) SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.SignUpResponse, error) {
	ctx, span := tracer.Start(ctx, "SessionService.SignUp")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if email == "" || !emailPattern.MatchString(email) {
		return nil, &domain.ErrValidation{Field: "email", Message: "Zadajte platný e-mail"}
	}
	if req.Password != req.ConfirmPassword {
		return nil, &domain.ErrValidation{Field: "confirmPassword", Message: "Heslá sa nezhodujú"}
	}
	if !req.TermsAccepted {
		return nil, &domain.ErrValidation{Field: "terms", Message: "Musíte súhlasiť s podmienkami používania"}
	}
	if strength := ScorePassword(req.Password); strength.Score < MinPasswordScore {
		return nil, &domain.ErrValidation{Field: "password", Message: "Heslo je príliš slabé. Použite silnejšie heslo."}
	}

	// Advisory pre-check; a positive hit saves a doomed sign-up call, but
	// the collaborator remains the authority on uniqueness.
	if taken, err := s.profiles.EmailTaken(ctx, email); err == nil && taken {
		return nil, &domain.ErrConflict{Message: "Tento e-mail už je registrovaný"}
	}

	metadata := map[string]any{
		"name":              strings.TrimSpace(req.Name),
		"marketing_consent": req.MarketingConsent,
	}
	user, err := s.auth.SignUp(ctx, email, req.Password, metadata)
	if err != nil {
		s.metrics.IncrExternalError("supabase/auth")
		return nil, err
	}

	s.logger.Info("user signed up", zap.String("user_id", user.ID))
	return &domain.SignUpResponse{
		UserID:  user.ID,
		Message: "Registrácia úspešná! Skontrolujte si e-mail pre potvrdenie.",
	}, nil
}

// SignIn exchanges credentials for a session and re-runs the session check.
// Collaborator failures surface verbatim; there is no retry on this path.
func (s *SessionService) SignIn(ctx context.Context, req domain.SignInRequest) (*domain.SignInResponse, error) {
	ctx, span := tracer.Start(ctx, "SessionService.SignIn")
	defer span.End()

	sess, err := s.auth.SignInWithPassword(ctx, strings.TrimSpace(req.Email), req.Password, req.RememberMe)
	if err != nil {
		return nil, err
	}

	state := s.CheckSession(ctx, sess.AccessToken)
	s.broker.Publish(domain.AuthEvent{Type: domain.AuthEventSignedIn, State: state})

	displayName := state.DisplayName
	if displayName == "" && sess.User != nil {
		displayName = sess.User.Name
	}

	return &domain.SignInResponse{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresIn:    int(time.Until(sess.ExpiresAt).Seconds()),
		UserID:       state.UserID,
		DisplayName:  displayName,
	}, nil
}

// SignOut clears the local state first, then revokes the session. The local
// clear is optimistic: a failed revocation is logged, not surfaced.
func (s *SessionService) SignOut(ctx context.Context, accessToken string) {
	ctx, span := tracer.Start(ctx, "SessionService.SignOut")
	defer span.End()

	seq := s.checkSeq.Add(1)
	s.apply(seq, domain.SessionState{})
	s.broker.Publish(domain.AuthEvent{Type: domain.AuthEventSignedOut, State: domain.SessionState{}})

	if accessToken == "" {
		return
	}
	if err := s.auth.SignOut(ctx, accessToken); err != nil {
		s.metrics.IncrExternalError("supabase/auth")
		s.logger.Warn("sign-out revocation failed", zap.Error(err))
	}
}

// SendMagicLink requests a one-time sign-in link.
func (s *SessionService) SendMagicLink(ctx context.Context, email string) error {
	if email = strings.TrimSpace(email); !emailPattern.MatchString(email) {
		return &domain.ErrValidation{Field: "email", Message: "Zadajte platný e-mail"}
	}
	return s.auth.SendMagicLink(ctx, email)
}

// RequestPasswordReset triggers the recovery flow.
func (s *SessionService) RequestPasswordReset(ctx context.Context, email string) error {
	if email = strings.TrimSpace(email); !emailPattern.MatchString(email) {
		return &domain.ErrValidation{Field: "email", Message: "Zadajte platný e-mail"}
	}
	return s.auth.RequestPasswordReset(ctx, email)
}

// ResendVerification re-sends the confirmation e-mail.
func (s *SessionService) ResendVerification(ctx context.Context, email string) error {
	if email = strings.TrimSpace(email); !emailPattern.MatchString(email) {
		return &domain.ErrValidation{Field: "email", Message: "Zadajte platný e-mail"}
	}
	return s.auth.ResendVerification(ctx, email)
}

// OAuthURL builds the provider redirect for browser OAuth.
func (s *SessionService) OAuthURL(provider, redirectTo string) string {
	return s.auth.OAuthURL(provider, redirectTo)
}

// EmailAvailable runs the debounced advisory probe. The client key scopes
// the debounce to one caller so that concurrent users do not suppress each
// other's probes.
func (s *SessionService) EmailAvailable(ctx context.Context, clientKey, email string) (domain.EmailAvailability, error) {
	return s.probe.Probe(ctx, clientKey, email)
}

// PasswordStrength scores a candidate password.
func (s *SessionService) PasswordStrength(password string) domain.PasswordStrength {
	return ScorePassword(password)
}
