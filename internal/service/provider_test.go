package service_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/oblozinskyroman/stars/internal/domain"
	"github.com/oblozinskyroman/stars/internal/infra/observability"
	"github.com/oblozinskyroman/stars/internal/service"

	"go.uber.org/zap"
)

// recordingCompanyStore captures inserts so tests can assert on writes.
type recordingCompanyStore struct {
	inserted []*domain.Company
}

func (s *recordingCompanyStore) ListApproved(context.Context, domain.CompanyQuery) ([]domain.CompanyWithRating, error) {
	return nil, nil
}

func (s *recordingCompanyStore) InsertCompany(_ context.Context, c *domain.Company) (*domain.Company, error) {
	s.inserted = append(s.inserted, c)
	created := *c
	created.ID = "company-1"
	return &created, nil
}

func (s *recordingCompanyStore) ListOwnedCompanies(context.Context, string) ([]domain.Company, error) {
	return nil, nil
}

func validForm() domain.ProviderForm {
	return domain.ProviderForm{
		Name:        "Fix It",
		Description: "Plumbing",
		Services:    "Vodár, Murár",
		Location:    "Bratislava",
		Email:       "a@b.sk",
		Phone:       "+421900000000",
	}
}

func newProviderService(store *recordingCompanyStore) *service.ProviderService {
	return service.NewProviderService(store, observability.NewMetrics(), zap.NewNop())
}

func TestProviderSubmit_NormalizesAndForcesPending(t *testing.T) {
	store := &recordingCompanyStore{}
	svc := newProviderService(store)

	result, err := svc.Submit(context.Background(), "user-1", validForm())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.OK || result.Company == nil {
		t.Fatal("expected a created company")
	}

	if len(store.inserted) != 1 {
		t.Fatalf("expected exactly one insert, got %d", len(store.inserted))
	}
	stored := store.inserted[0]

	if want := []string{"Vodár", "Murár"}; !reflect.DeepEqual(stored.Services, want) {
		t.Errorf("services = %v, want %v", stored.Services, want)
	}
	if stored.Status != domain.CompanyStatusPending {
		t.Errorf("status = %q, want %q", stored.Status, domain.CompanyStatusPending)
	}
	if stored.UserID != "user-1" {
		t.Errorf("user id = %q, want user-1", stored.UserID)
	}
}

func TestProviderSubmit_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.ProviderForm)
		wantKey string
	}{
		{"missing name", func(f *domain.ProviderForm) { f.Name = "" }, "name"},
		{"whitespace name", func(f *domain.ProviderForm) { f.Name = "   " }, "name"},
		{"missing description", func(f *domain.ProviderForm) { f.Description = "" }, "description"},
		{"missing services", func(f *domain.ProviderForm) { f.Services = "" }, "services"},
		{"missing location", func(f *domain.ProviderForm) { f.Location = "" }, "location"},
		{"missing email", func(f *domain.ProviderForm) { f.Email = "" }, "email"},
		{"missing phone", func(f *domain.ProviderForm) { f.Phone = "" }, "phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &recordingCompanyStore{}
			svc := newProviderService(store)

			form := validForm()
			tt.mutate(&form)

			_, err := svc.Submit(context.Background(), "user-1", form)
			fieldErr, ok := err.(*domain.ErrFieldValidation)
			if !ok {
				t.Fatalf("expected *domain.ErrFieldValidation, got %T", err)
			}
			if _, present := fieldErr.Fields[tt.wantKey]; !present {
				t.Errorf("expected field %q to be flagged, got %v", tt.wantKey, fieldErr.Fields)
			}
			if len(store.inserted) != 0 {
				t.Error("expected no write on validation failure")
			}
		})
	}
}

func TestProviderSubmit_EmailShape(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"a@b.co", true},
		{"name@firma.sk", true},
		{"a@b", false},
		{"a b@c.sk", false},
		{"plainaddress", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			store := &recordingCompanyStore{}
			svc := newProviderService(store)

			form := validForm()
			form.Email = tt.email

			_, err := svc.Submit(context.Background(), "user-1", form)
			if tt.valid && err != nil {
				t.Errorf("expected %q to be accepted, got %v", tt.email, err)
			}
			if !tt.valid {
				fieldErr, ok := err.(*domain.ErrFieldValidation)
				if !ok {
					t.Fatalf("expected *domain.ErrFieldValidation, got %T", err)
				}
				if got := fieldErr.Fields["email"]; got != "Neplatný formát e-mailu" {
					t.Errorf("email field message = %q, want the Slovak format message", got)
				}
			}
		})
	}
}

// A filled honeypot reports success and writes nothing.
func TestProviderSubmit_HoneypotSilentDrop(t *testing.T) {
	store := &recordingCompanyStore{}
	svc := newProviderService(store)

	form := validForm()
	form.Website = "http://spam.example"

	result, err := svc.Submit(context.Background(), "", form)
	if err != nil {
		t.Fatalf("expected apparent success, got %v", err)
	}
	if !result.OK {
		t.Error("expected OK=true for a honeypot drop")
	}
	if result.Company != nil {
		t.Error("expected no company in a honeypot result")
	}
	if len(store.inserted) != 0 {
		t.Error("expected no write for a honeypot submission")
	}
}

func TestProviderSubmit_RequiresAuthentication(t *testing.T) {
	store := &recordingCompanyStore{}
	svc := newProviderService(store)

	_, err := svc.Submit(context.Background(), "", validForm())
	if _, ok := err.(*domain.ErrUnauthorized); !ok {
		t.Fatalf("expected *domain.ErrUnauthorized, got %T", err)
	}
	if len(store.inserted) != 0 {
		t.Error("expected no write without authentication")
	}
}
