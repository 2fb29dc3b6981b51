package supabase

import (
	"context"
	"time"

	"github.com/oblozinskyroman/stars/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// ContactStore / AccountStore: write-only tables
// ============================================================

// InsertMessage persists a contact-form message.
func (c *Client) InsertMessage(ctx context.Context, m *domain.ContactMessage) error {
	ctx, span := tracer.Start(ctx, "Supabase.InsertContactMessage")
	defer span.End()

	data := map[string]any{
		"id":      uuid.New().String(),
		"name":    m.Name,
		"email":   m.Email,
		"subject": m.Subject,
		"message": m.Message,
	}

	_, err := c.cb.Execute(func() (any, error) {
		return c.doPost(ctx, "contact_messages", data)
	})
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/contact", Err: err}
	}
	return nil
}

// CreateDeletionRequest files an account-deletion request. Removal itself is
// an admin operation; only the request is recorded here.
func (c *Client) CreateDeletionRequest(ctx context.Context, r *domain.DeletionRequest) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateDeletionRequest")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", r.UserID))

	data := map[string]any{
		"id":           uuid.New().String(),
		"user_id":      r.UserID,
		"reason":       r.Reason,
		"requested_at": time.Now().UTC().Format(time.RFC3339),
	}

	_, err := c.cb.Execute(func() (any, error) {
		return c.doPost(ctx, "account_deletion_requests", data)
	})
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/account", Err: err}
	}
	return nil
}
