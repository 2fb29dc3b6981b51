package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/oblozinskyroman/stars/internal/domain"
	"github.com/oblozinskyroman/stars/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// InquiryStore implementation: inquiries via PostgREST
// ============================================================

// ListOwnedInquiries fetches a user's inquiries, newest first. Inquiries
// are created through another surface; this service only reads them.
func (c *Client) ListOwnedInquiries(ctx context.Context, userID string) ([]domain.Inquiry, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListInquiriesByOwner")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var inquiries []domain.Inquiry

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("inquiries?user_id=eq.%s&order=created_at.desc", userID)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				inquiries = []domain.Inquiry{}
				return nil
			}

			var rows []domain.Inquiry
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode inquiries: %w", err)
			}
			inquiries = rows
			return nil
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/inquiries", Err: err}
	}

	return inquiries, nil
}
