// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the service layer
// from the Supabase adapters and the AI-proxy client.
package port

import (
	"context"

	"github.com/oblozinskyroman/stars/internal/domain"
)

// AuthAPI is the hosted auth collaborator (session issuance, password hashing,
// OAuth and e-mail delivery all happen on its side). Every method is a single
// remote operation; no local state machine sits behind this interface.
type AuthAPI interface {
	// GetUser resolves the identity behind an access token. A missing or
	// expired session is an error; callers decide whether to degrade.
	GetUser(ctx context.Context, accessToken string) (*domain.AuthUser, error)

	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*domain.AuthUser, error)
	SignInWithPassword(ctx context.Context, email, password string, persist bool) (*domain.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	SendMagicLink(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResendVerification(ctx context.Context, email string) error

	// OAuthURL builds the provider redirect URL; no network call involved.
	OAuthURL(provider, redirectTo string) string
}

// ProfileStore reads and writes the profiles table.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	UpsertProfile(ctx context.Context, userID string, updates map[string]any) (*domain.Profile, error)
	UpdateNotificationPrefs(ctx context.Context, userID string, email, push bool) error

	// EmailTaken is the advisory availability lookup behind the debounced
	// probe. The result is a hint only; the sign-up call is authoritative.
	EmailTaken(ctx context.Context, email string) (bool, error)
}

// CompanyStore queries and creates companies.
type CompanyStore interface {
	// ListApproved issues one declarative query for approved companies
	// matching q, already ordered by the requested sort.
	ListApproved(ctx context.Context, q domain.CompanyQuery) ([]domain.CompanyWithRating, error)

	InsertCompany(ctx context.Context, c *domain.Company) (*domain.Company, error)
	ListOwnedCompanies(ctx context.Context, userID string) ([]domain.Company, error)
}

// InquiryStore lists inquiries owned by an identity (read-only).
type InquiryStore interface {
	ListOwnedInquiries(ctx context.Context, userID string) ([]domain.Inquiry, error)
}

// ContactStore persists contact-form messages.
type ContactStore interface {
	InsertMessage(ctx context.Context, m *domain.ContactMessage) error
}

// AccountStore records account-deletion requests. Deletion itself is an
// external admin operation; this service only files the request.
type AccountStore interface {
	CreateDeletionRequest(ctx context.Context, r *domain.DeletionRequest) error
}

// AssistantCaller invokes the opaque AI-proxy function.
type AssistantCaller interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
