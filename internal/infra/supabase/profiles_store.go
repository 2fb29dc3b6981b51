package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/oblozinskyroman/stars/internal/domain"
	"github.com/oblozinskyroman/stars/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// ProfileStore implementation: profiles via PostgREST
// ============================================================

// GetProfile fetches a user's profile row.
func (c *Client) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var profile *domain.Profile

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("profiles?id=eq.%s&limit=1", userID)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				return &domain.ErrNotFound{Resource: "profile", ID: userID}
			}

			var rows []domain.Profile
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode profile: %w", err)
			}
			if len(rows) == 0 {
				return &domain.ErrNotFound{Resource: "profile", ID: userID}
			}
			profile = &rows[0]
			return nil
		})
	})

	if err != nil {
		var nf *domain.ErrNotFound
		if errors.As(err, &nf) {
			return nil, nf
		}
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}

	return profile, nil
}

// UpsertProfile merges the given columns into the user's profile row,
// creating it when absent, and returns the stored row.
func (c *Client) UpsertProfile(ctx context.Context, userID string, updates map[string]any) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpsertProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	data := map[string]any{"id": userID}
	for k, v := range updates {
		data[k] = v
	}
	data["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	var profile *domain.Profile
	_, err := c.cb.Execute(func() (any, error) {
		body, err := c.doUpsert(ctx, "profiles", data)
		if err != nil {
			return nil, err
		}

		var rows []domain.Profile
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode upserted profile: %w", err)
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("upsert returned no representation")
		}
		profile = &rows[0]
		return nil, nil
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}
	return profile, nil
}

// UpdateNotificationPrefs persists the two notification toggles.
func (c *Client) UpdateNotificationPrefs(ctx context.Context, userID string, email, push bool) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateNotificationPrefs")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	path := fmt.Sprintf("profiles?id=eq.%s", userID)
	updates := map[string]any{
		"email_notifications_enabled": email,
		"push_notifications_enabled":  push,
		"updated_at":                  time.Now().UTC().Format(time.RFC3339),
	}

	_, err := c.cb.Execute(func() (any, error) {
		return nil, c.doPatch(ctx, path, updates)
	})
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}
	return nil
}

// EmailTaken checks whether a profile already claims the address. The lookup
// is advisory; sign-up remains the authoritative check.
func (c *Client) EmailTaken(ctx context.Context, email string) (bool, error) {
	ctx, span := tracer.Start(ctx, "Supabase.EmailTaken")
	defer span.End()

	var taken bool

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("profiles?email=eq.%s&select=id&limit=1", url.QueryEscape(email))
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}
			taken = body != nil && string(body) != "[]"
			return nil
		})
	})

	if err != nil {
		return false, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}
	return taken, nil
}
