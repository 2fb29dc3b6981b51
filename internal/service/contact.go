package service

import (
	"context"
	"strings"

	"github.com/oblozinskyroman/stars/internal/domain"
	"github.com/oblozinskyroman/stars/internal/infra/observability"
	"github.com/oblozinskyroman/stars/internal/port"

	"go.uber.org/zap"
)

// ContactService handles the contact form with the same pipeline as the
// provider form, minus the auth precondition.
type ContactService struct {
	store   port.ContactStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewContactService wires the contact form handler.
func NewContactService(store port.ContactStore, metrics *observability.Metrics, logger *zap.Logger) *ContactService {
	return &ContactService{store: store, metrics: metrics, logger: logger}
}

func validateContactForm(f domain.ContactForm) map[string]string {
	fields := make(map[string]string)

	required := map[string]string{
		"name":    f.Name,
		"email":   f.Email,
		"subject": f.Subject,
		"message": f.Message,
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

// Submit validates and stores one contact message. Honeypot hits report
// success without a write.
func (s *ContactService) Submit(ctx context.Context, form domain.ContactForm) (*domain.SubmitResult, error) {
	ctx, span := tracer.Start(ctx, "ContactService.Submit")
	defer span.End()

	if fields := validateContactForm(form); fields != nil {
		return nil, &domain.ErrFieldValidation{Fields: fields}
	}

	if form.Website != "" {
		s.metrics.IncrHoneypotDrop("contact")
		s.logger.Info("contact submission dropped by honeypot")
		return &domain.SubmitResult{OK: true}, nil
	}

	msg := &domain.ContactMessage{
		Name:    strings.TrimSpace(form.Name),
		Email:   strings.TrimSpace(form.Email),
		Subject: strings.TrimSpace(form.Subject),
		Message: strings.TrimSpace(form.Message),
	}
	if err := s.store.InsertMessage(ctx, msg); err != nil {
		s.metrics.IncrExternalError("supabase/contact")
		return nil, err
	}

	return &domain.SubmitResult{OK: true}, nil
}
