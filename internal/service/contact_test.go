package service_test

import (
	"context"
	"testing"

	"github.com/oblozinskyroman/stars/internal/domain"
	"github.com/oblozinskyroman/stars/internal/infra/observability"
	"github.com/oblozinskyroman/stars/internal/service"

	"go.uber.org/zap"
)

type recordingContactStore struct {
	messages []*domain.ContactMessage
}

func (s *recordingContactStore) InsertMessage(_ context.Context, m *domain.ContactMessage) error {
	s.messages = append(s.messages, m)
	return nil
}

func validContactForm() domain.ContactForm {
	return domain.ContactForm{
		Name:    "Jana",
		Email:   "jana@example.sk",
		Subject: "Otázka",
		Message: "Dobrý deň, mám otázku.",
	}
}

func TestContactSubmit_StoresTrimmedMessage(t *testing.T) {
	store := &recordingContactStore{}
	svc := service.NewContactService(store, observability.NewMetrics(), zap.NewNop())

	form := validContactForm()
	form.Name = "  Jana  "

	result, err := svc.Submit(context.Background(), form)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.OK {
		t.Error("expected OK=true")
	}
	if len(store.messages) != 1 {
		t.Fatalf("expected one stored message, got %d", len(store.messages))
	}
	if store.messages[0].Name != "Jana" {
		t.Errorf("name = %q, want trimmed %q", store.messages[0].Name, "Jana")
	}
}

func TestContactSubmit_ValidationBlocksWrite(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.ContactForm)
		wantKey string
	}{
		{"missing name", func(f *domain.ContactForm) { f.Name = "" }, "name"},
		{"missing subject", func(f *domain.ContactForm) { f.Subject = " " }, "subject"},
		{"missing message", func(f *domain.ContactForm) { f.Message = "" }, "message"},
		{"bad email", func(f *domain.ContactForm) { f.Email = "not-an-address" }, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &recordingContactStore{}
			svc := service.NewContactService(store, observability.NewMetrics(), zap.NewNop())

			form := validContactForm()
			tt.mutate(&form)

			_, err := svc.Submit(context.Background(), form)
			fieldErr, ok := err.(*domain.ErrFieldValidation)
			if !ok {
				t.Fatalf("expected *domain.ErrFieldValidation, got %T", err)
			}
			if _, present := fieldErr.Fields[tt.wantKey]; !present {
				t.Errorf("expected field %q flagged, got %v", tt.wantKey, fieldErr.Fields)
			}
			if len(store.messages) != 0 {
				t.Error("expected no write on validation failure")
			}
		})
	}
}

func TestContactSubmit_HoneypotSilentDrop(t *testing.T) {
	store := &recordingContactStore{}
	svc := service.NewContactService(store, observability.NewMetrics(), zap.NewNop())

	form := validContactForm()
	form.Website = "http://spam.example"

	result, err := svc.Submit(context.Background(), form)
	if err != nil {
		t.Fatalf("expected apparent success, got %v", err)
	}
	if !result.OK {
		t.Error("expected OK=true for a honeypot drop")
	}
	if len(store.messages) != 0 {
		t.Error("expected no write for a honeypot submission")
	}
}
