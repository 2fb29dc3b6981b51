package service

import (
	"context"
	"strings"

	"github.com/oblozinskyroman/stars/internal/domain"
	"github.com/oblozinskyroman/stars/internal/infra/observability"
	"github.com/oblozinskyroman/stars/internal/port"

	"go.uber.org/zap"
)

// ProviderService handles the add-company form: synchronous validation,
// honeypot drop, auth precondition, normalization, and exactly one insert.
type ProviderService struct {
	companies port.CompanyStore
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewProviderService wires the add-company form handler.
func NewProviderService(companies port.CompanyStore, metrics *observability.Metrics, logger *zap.Logger) *ProviderService {
	return &ProviderService{companies: companies, metrics: metrics, logger: logger}
}

// validateProviderForm checks every required field after trimming and the
// e-mail shape, reporting all failures at once.
func validateProviderForm(f domain.ProviderForm) map[string]string {
	fields := make(map[string]string)

	required := map[string]string{
		"name":        f.Name,
		"description": f.Description,
		"services":    f.Services,
		"location":    f.Location,
		"email":       f.Email,
		"phone":       f.Phone,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			fields[field] = "Toto pole je povinné"
		}
	}

	if _, ok := fields["email"]; !ok && !emailPattern.MatchString(strings.TrimSpace(f.Email)) {
		fields["email"] = "Neplatný formát e-mailu"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

// splitServices turns the comma-separated services text into a trimmed,
// non-empty list.
func splitServices(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Submit runs the fixed pipeline: validation, honeypot short-circuit, auth
// check, normalization, one insert. A honeypot hit reports success and
// writes nothing.
func (s *ProviderService) Submit(ctx context.Context, userID string, form domain.ProviderForm) (*domain.SubmitResult, error) {
	ctx, span := tracer.Start(ctx, "ProviderService.Submit")
	defer span.End()

	if fields := validateProviderForm(form); fields != nil {
		return nil, &domain.ErrFieldValidation{Fields: fields}
	}

	if form.Website != "" {
		s.metrics.IncrHoneypotDrop("provider")
		s.logger.Info("provider submission dropped by honeypot")
		return &domain.SubmitResult{OK: true}, nil
	}

	if userID == "" {
		return nil, &domain.ErrUnauthorized{Message: "Musíte byť prihlásený, aby ste mohli pridať firmu."}
	}

	company := &domain.Company{
		UserID:      userID,
		Name:        strings.TrimSpace(form.Name),
		Description: strings.TrimSpace(form.Description),
		Services:    splitServices(form.Services),
		Location:    strings.TrimSpace(form.Location),
		Email:       strings.TrimSpace(form.Email),
		Phone:       strings.TrimSpace(form.Phone),
		LogoURL:     strings.TrimSpace(form.LogoURL),
		Status:      domain.CompanyStatusPending,
	}

	created, err := s.companies.InsertCompany(ctx, company)
	if err != nil {
		s.metrics.IncrExternalError("supabase/companies")
		return nil, err
	}

	s.logger.Info("company submitted for review",
		zap.String("company_id", created.ID),
		zap.String("user_id", userID),
	)
	return &domain.SubmitResult{OK: true, Company: created}, nil
}
