package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oblozinskyroman/stars/internal/domain"
	"github.com/oblozinskyroman/stars/internal/service"

	"go.uber.org/zap"
)

// countingProfileStore counts EmailTaken lookups.
type countingProfileStore struct {
	lookups atomic.Int64
	taken   map[string]bool
}

func (s *countingProfileStore) EmailTaken(_ context.Context, email string) (bool, error) {
	s.lookups.Add(1)
	return s.taken[email], nil
}

func (s *countingProfileStore) GetProfile(context.Context, string) (*domain.Profile, error) {
	return nil, &domain.ErrNotFound{Resource: "profile"}
}

func (s *countingProfileStore) UpsertProfile(context.Context, string, map[string]any) (*domain.Profile, error) {
	return &domain.Profile{}, nil
}

func (s *countingProfileStore) UpdateNotificationPrefs(context.Context, string, bool, bool) error {
	return nil
}

func TestEmailProbe_ReportsAvailability(t *testing.T) {
	store := &countingProfileStore{taken: map[string]bool{"taken@example.com": true}}
	probe := service.NewEmailProbe(store, time.Millisecond, zap.NewNop())

	result, err := probe.Probe(context.Background(), "form-1", "Taken@Example.com ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.Checked {
		t.Fatal("expected the probe to run")
	}
	if result.Available {
		t.Error("expected taken@example.com to be unavailable")
	}

	result, err = probe.Probe(context.Background(), "form-1", "free@example.com")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.Available {
		t.Error("expected free@example.com to be available")
	}
}

// A burst of probes from one client inside the debounce window must cost at
// most one lookup.
func TestEmailProbe_DebouncesBursts(t *testing.T) {
	store := &countingProfileStore{}
	probe := service.NewEmailProbe(store, 50*time.Millisecond, zap.NewNop())

	inputs := []string{"a@b.sk", "ab@b.sk", "abc@b.sk", "abcd@b.sk", "abcde@b.sk"}

	var wg sync.WaitGroup
	for _, email := range inputs {
		wg.Add(1)
		go func(email string) {
			defer wg.Done()
			probe.Probe(context.Background(), "form-1", email)
		}(email)
		time.Sleep(2 * time.Millisecond) // well inside the window
	}
	wg.Wait()

	if got := store.lookups.Load(); got > 1 {
		t.Errorf("expected at most one lookup for the burst, got %d", got)
	}
}

// Two clients typing at the same time debounce independently; one user's
// keystroke must not suppress another user's probe.
func TestEmailProbe_ClientsDoNotSuppressEachOther(t *testing.T) {
	store := &countingProfileStore{taken: map[string]bool{"jana@example.sk": true}}
	probe := service.NewEmailProbe(store, 20*time.Millisecond, zap.NewNop())

	var wg sync.WaitGroup
	results := make([]domain.EmailAvailability, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0], _ = probe.Probe(context.Background(), "form-1", "jana@example.sk")
	}()
	go func() {
		defer wg.Done()
		results[1], _ = probe.Probe(context.Background(), "form-2", "peter@example.sk")
	}()
	wg.Wait()

	for i, r := range results {
		if !r.Checked {
			t.Errorf("probe %d was suppressed by the other client", i)
		}
	}
	if got := store.lookups.Load(); got != 2 {
		t.Errorf("expected two lookups, got %d", got)
	}
}

func TestEmailProbe_CancelledContext(t *testing.T) {
	store := &countingProfileStore{}
	probe := service.NewEmailProbe(store, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := probe.Probe(ctx, "form-1", "a@b.sk"); err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
	if got := store.lookups.Load(); got != 0 {
		t.Errorf("expected no lookups, got %d", got)
	}
}
