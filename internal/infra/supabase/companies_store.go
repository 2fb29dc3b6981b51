package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oblozinskyroman/stars/internal/domain"
	"github.com/oblozinskyroman/stars/internal/infra/resilience"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// CompanyStore implementation: companies via PostgREST
// ============================================================

// listQueryPath composes the one declarative query for the public listing.
// The read targets the companies_with_rating view, visibility is always
// restricted to approved rows, and ordering is pushed down so the response
// arrives sorted.
func listQueryPath(q domain.CompanyQuery, now time.Time) string {
	var parts []string
	parts = append(parts, "select=*", "status=eq.approved")

	if q.Service != "" {
		parts = append(parts, "services=cs."+url.QueryEscape("{"+q.Service+"}"))
	}

	if s := strings.TrimSpace(q.Search); s != "" {
		pattern := "*" + s + "*"
		or := fmt.Sprintf("(name.ilike.%s,description.ilike.%s,location.ilike.%s)",
			pattern, pattern, pattern)
		parts = append(parts, "or="+url.QueryEscape(or))
	}

	for _, f := range q.Filters {
		switch f {
		case domain.FilterRating4Plus:
			parts = append(parts, "average_rating=gte.4")
		case domain.FilterHasReviews:
			parts = append(parts, "review_count=gt.0")
		case domain.FilterToday:
			midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			parts = append(parts, "created_at=gte."+url.QueryEscape(midnight.Format(time.RFC3339)))
		case domain.FilterLast7Days:
			bound := now.AddDate(0, 0, -7)
			parts = append(parts, "created_at=gte."+url.QueryEscape(bound.Format(time.RFC3339)))
		}
	}

	// Rows without reviews carry null ratings; nullslast keeps them from
	// floating to the top of rating-ordered results.
	var order string
	switch q.SortBy {
	case domain.SortRating:
		order = "average_rating.desc.nullslast,review_count.desc.nullslast"
	case domain.SortNewest:
		order = "created_at.desc"
	case domain.SortName:
		order = "name.asc"
	case domain.SortReviewCount:
		order = "review_count.desc.nullslast,average_rating.desc.nullslast"
	default: // best match
		order = "average_rating.desc.nullslast,review_count.desc.nullslast,created_at.desc"
	}
	parts = append(parts, "order="+order)

	return "companies_with_rating?" + strings.Join(parts, "&")
}

// ListApproved fetches approved companies matching the query.
func (c *Client) ListApproved(ctx context.Context, q domain.CompanyQuery) ([]domain.CompanyWithRating, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListApproved")
	defer span.End()
	span.SetAttributes(
		attribute.String("query.service", q.Service),
		attribute.String("query.sort", q.SortBy),
	)

	var companies []domain.CompanyWithRating

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := listQueryPath(q, time.Now().UTC())
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				companies = []domain.CompanyWithRating{}
				return nil
			}

			var rows []domain.CompanyWithRating
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode companies: %w", err)
			}
			companies = rows
			return nil
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/companies", Err: err}
	}

	return companies, nil
}

// InsertCompany creates a new company row. The status is forced to pending
// before the write; moderation happens elsewhere.
func (c *Client) InsertCompany(ctx context.Context, company *domain.Company) (*domain.Company, error) {
	ctx, span := tracer.Start(ctx, "Supabase.InsertCompany")
	defer span.End()

	data := map[string]any{
		"id":          uuid.New().String(),
		"user_id":     company.UserID,
		"name":        company.Name,
		"description": company.Description,
		"services":    company.Services,
		"location":    company.Location,
		"email":       company.Email,
		"phone":       company.Phone,
		"logo_url":    company.LogoURL,
		"status":      domain.CompanyStatusPending,
	}

	var created *domain.Company
	_, err := c.cb.Execute(func() (any, error) {
		body, err := c.doPost(ctx, "companies", data)
		if err != nil {
			return nil, err
		}

		var rows []domain.Company
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode created company: %w", err)
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("insert returned no representation")
		}
		created = &rows[0]
		return nil, nil
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/companies", Err: err}
	}
	return created, nil
}

// ListOwnedCompanies fetches the companies owned by a user, newest first.
func (c *Client) ListOwnedCompanies(ctx context.Context, userID string) ([]domain.Company, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCompaniesByOwner")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var companies []domain.Company

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("companies?user_id=eq.%s&order=created_at.desc", userID)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				companies = []domain.Company{}
				return nil
			}

			var rows []domain.Company
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode companies: %w", err)
			}
			companies = rows
			return nil
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/companies", Err: err}
	}

	return companies, nil
}
