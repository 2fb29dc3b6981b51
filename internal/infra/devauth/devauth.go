// Package devauth is an in-memory auth and profile backend for local
// development, used when Supabase is not configured. Sessions live in
// process memory; everything is lost on restart.
package devauth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/oblozinskyroman/stars/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = time.Hour

type user struct {
	id           string
	email        string
	passwordHash []byte
	name         string
	confirmed    bool
}

// Store holds users, sessions and profiles behind one mutex.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*user           // keyed by lowercase e-mail
	sessions map[string]*domain.Session // keyed by access token
	profiles map[string]*domain.Profile // keyed by user id
	baseURL  string
	logger   *zap.Logger
}

// New creates an empty dev backend.
func New(baseURL string, logger *zap.Logger) *Store {
	return &Store{
		users:    make(map[string]*user),
		sessions: make(map[string]*domain.Session),
		profiles: make(map[string]*domain.Profile),
		baseURL:  baseURL,
		logger:   logger,
	}
}

// --- port.AuthAPI ---

func (s *Store) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*domain.AuthUser, error) {
	key := strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[key]; exists {
		return nil, &domain.ErrAuth{Message: "User already registered"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	name, _ := metadata["name"].(string)
	u := &user{
		id:           uuid.New().String(),
		email:        key,
		passwordHash: hash,
		name:         name,
		confirmed:    true, // no e-mail delivery in dev mode
	}
	s.users[key] = u
	s.profiles[u.id] = &domain.Profile{
		ID:        u.id,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	s.logger.Debug("devauth: user registered", zap.String("user_id", u.id))
	return &domain.AuthUser{ID: u.id, Email: u.email, EmailConfirmed: true, Name: name}, nil
}

func (s *Store) SignInWithPassword(ctx context.Context, email, password string, persist bool) (*domain.Session, error) {
	key := strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[key]
	if !ok || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) != nil {
		// Same message for unknown user and wrong password.
		return nil, &domain.ErrAuth{Message: "Invalid login credentials"}
	}

	sess := &domain.Session{
		AccessToken:  uuid.New().String(),
		RefreshToken: uuid.New().String(),
		ExpiresAt:    time.Now().Add(sessionTTL),
		Persistent:   persist,
		User:         &domain.AuthUser{ID: u.id, Email: u.email, EmailConfirmed: u.confirmed, Name: u.name},
	}
	s.sessions[sess.AccessToken] = sess
	return sess, nil
}

func (s *Store) SignOut(ctx context.Context, accessToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, accessToken)
	return nil
}

func (s *Store) GetUser(ctx context.Context, accessToken string) (*domain.AuthUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[accessToken]
	if !ok || time.Now().After(sess.ExpiresAt) {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired session"}
	}
	return sess.User, nil
}

func (s *Store) SendMagicLink(ctx context.Context, email string) error {
	s.logger.Info("devauth: magic link requested (not delivered)", zap.String("email", email))
	return nil
}

func (s *Store) RequestPasswordReset(ctx context.Context, email string) error {
	s.logger.Info("devauth: password reset requested (not delivered)", zap.String("email", email))
	return nil
}

func (s *Store) ResendVerification(ctx context.Context, email string) error {
	return nil
}

func (s *Store) OAuthURL(provider, redirectTo string) string {
	v := url.Values{}
	v.Set("provider", provider)
	if redirectTo != "" {
		v.Set("redirect_to", redirectTo)
	}
	return fmt.Sprintf("%s/auth/v1/authorize?%s", s.baseURL, v.Encode())
}

// --- port.ProfileStore ---

func (s *Store) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: userID}
	}
	cp := *p
	return &cp, nil
}

func (s *Store) UpsertProfile(ctx context.Context, userID string, updates map[string]any) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		p = &domain.Profile{ID: userID, CreatedAt: time.Now().UTC()}
		s.profiles[userID] = p
	}
	if v, ok := updates["name"].(string); ok {
		p.Name = v
	}
	if v, ok := updates["city"].(string); ok {
		p.City = v
	}
	if v, ok := updates["phone"].(string); ok {
		p.Phone = v
	}
	p.UpdatedAt = time.Now().UTC()

	cp := *p
	return &cp, nil
}

func (s *Store) UpdateNotificationPrefs(ctx context.Context, userID string, email, push bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return &domain.ErrNotFound{Resource: "profile", ID: userID}
	}
	p.EmailNotificationsEnabled = email
	p.PushNotificationsEnabled = push
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) EmailTaken(ctx context.Context, email string) (bool, error) {
	key := strings.ToLower(strings.TrimSpace(email))

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, taken := s.users[key]
	return taken, nil
}
