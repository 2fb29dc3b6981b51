package service

import (
	"context"
	"strings"
	"time"

	"github.com/oblozinskyroman/stars/internal/domain"
	"github.com/oblozinskyroman/stars/internal/infra/observability"
	"github.com/oblozinskyroman/stars/internal/port"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AccountService serves the account page: the profile plus owned companies
// and inquiries, profile updates, notification toggles, and deletion
// requests.
type AccountService struct {
	profiles  port.ProfileStore
	companies port.CompanyStore
	inquiries port.InquiryStore
	account   port.AccountStore
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewAccountService wires the account page service.
func NewAccountService(profiles port.ProfileStore, companies port.CompanyStore, inquiries port.InquiryStore, account port.AccountStore, metrics *observability.Metrics, logger *zap.Logger) *AccountService {
	return &AccountService{
		profiles:  profiles,
		companies: companies,
		inquiries: inquiries,
		account:   account,
		metrics:   metrics,
		logger:    logger,
	}
}

// Overview loads everything the account page renders. The profile fetch
// gates the rest; companies are loaded only for providers. Companies and
// inquiries load concurrently.
func (s *AccountService) Overview(ctx context.Context, userID string) (*domain.AccountOverview, error) {
	ctx, span := tracer.Start(ctx, "AccountService.Overview")
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("account_overview", time.Since(start)) }()

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	overview := &domain.AccountOverview{
		Profile:   profile,
		Companies: []domain.Company{},
		Inquiries: []domain.Inquiry{},
	}

	g, ctx := errgroup.WithContext(ctx)

	if profile.IsProvider {
		g.Go(func() error {
			companies, err := s.companies.ListOwnedCompanies(ctx, userID)
			if err != nil {
				return err
			}
			overview.Companies = companies
			return nil
		})
	}

	g.Go(func() error {
		inquiries, err := s.inquiries.ListOwnedInquiries(ctx, userID)
		if err != nil {
			return err
		}
		overview.Inquiries = inquiries
		return nil
	})

	if err := g.Wait(); err != nil {
		s.metrics.IncrExternalError("supabase/profiles")
		return nil, err
	}
	return overview, nil
}

// OwnedCompanies lists the caller's companies, newest first.
func (s *AccountService) OwnedCompanies(ctx context.Context, userID string) ([]domain.Company, error) {
	ctx, span := tracer.Start(ctx, "AccountService.OwnedCompanies")
	defer span.End()

	companies, err := s.companies.ListOwnedCompanies(ctx, userID)
	if err != nil {
		s.metrics.IncrExternalError("supabase/companies")
		return nil, err
	}
	return companies, nil
}

// OwnedInquiries lists the caller's inquiries, newest first.
func (s *AccountService) OwnedInquiries(ctx context.Context, userID string) ([]domain.Inquiry, error) {
	ctx, span := tracer.Start(ctx, "AccountService.OwnedInquiries")
	defer span.End()

	inquiries, err := s.inquiries.ListOwnedInquiries(ctx, userID)
	if err != nil {
		s.metrics.IncrExternalError("supabase/inquiries")
		return nil, err
	}
	return inquiries, nil
}

// UpdateProfile merges the editable profile fields.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "AccountService.UpdateProfile")
	defer span.End()

	if strings.TrimSpace(req.Name) == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "Toto pole je povinné"}
	}

	updates := map[string]any{
		"name":  strings.TrimSpace(req.Name),
		"city":  strings.TrimSpace(req.City),
		"phone": strings.TrimSpace(req.Phone),
	}
	profile, err := s.profiles.UpsertProfile(ctx, userID, updates)
	if err != nil {
		s.metrics.IncrExternalError("supabase/profiles")
		return nil, err
	}
	return profile, nil
}

// UpdateNotifications persists the two notification toggles.
func (s *AccountService) UpdateNotifications(ctx context.Context, userID string, req domain.UpdateNotificationsRequest) error {
	ctx, span := tracer.Start(ctx, "AccountService.UpdateNotifications")
	defer span.End()

	if err := s.profiles.UpdateNotificationPrefs(ctx, userID, req.EmailEnabled, req.PushEnabled); err != nil {
		s.metrics.IncrExternalError("supabase/profiles")
		return err
	}
	return nil
}

// RequestDeletion files an account-deletion request. Actual removal is an
// admin operation elsewhere; this only records the ask.
func (s *AccountService) RequestDeletion(ctx context.Context, userID, reason string) error {
	ctx, span := tracer.Start(ctx, "AccountService.RequestDeletion")
	defer span.End()

	req := &domain.DeletionRequest{
		UserID: userID,
		Reason: strings.TrimSpace(reason),
	}
	if err := s.account.CreateDeletionRequest(ctx, req); err != nil {
		s.metrics.IncrExternalError("supabase/profiles")
		return err
	}

	s.logger.Info("account deletion requested", zap.String("user_id", userID))
	return nil
}
