package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oblozinskyroman/stars/internal/domain"
	"github.com/oblozinskyroman/stars/internal/port"

	"go.uber.org/zap"
)

// EmailProbe debounces availability lookups against the profile store.
// Rapid successive probes from the same client supersede each other: only
// the latest input still standing when its delay elapses actually hits the
// store, so a burst of keystrokes costs at most one lookup. Generations
// are tracked per client key, so concurrent users typing at the same time
// never suppress each other's probes.
//
// The result is advisory. Sign-up remains the authoritative uniqueness
// check; a probe failure is reported as "unknown", never as an error.
type EmailProbe struct {
	store    port.ProfileStore
	debounce time.Duration
	logger   *zap.Logger

	mu  sync.Mutex
	gen map[string]uint64
}

// NewEmailProbe creates a probe with the given debounce window.
func NewEmailProbe(store port.ProfileStore, debounce time.Duration, logger *zap.Logger) *EmailProbe {
	return &EmailProbe{
		store:    store,
		debounce: debounce,
		logger:   logger,
		gen:      make(map[string]uint64),
	}
}

// Probe waits out the debounce window and, if no newer probe under the same
// client key arrived in the meantime, asks the store whether the address is
// taken. A superseded probe returns Checked=false without touching the
// store. An empty client key falls back to the address itself.
func (p *EmailProbe) Probe(ctx context.Context, clientKey, email string) (domain.EmailAvailability, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if clientKey == "" {
		clientKey = email
	}

	p.mu.Lock()
	p.gen[clientKey]++
	gen := p.gen[clientKey]
	p.mu.Unlock()

	timer := time.NewTimer(p.debounce)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return domain.EmailAvailability{Email: email}, ctx.Err()
	case <-timer.C:
	}

	p.mu.Lock()
	superseded := gen != p.gen[clientKey]
	if !superseded {
		delete(p.gen, clientKey)
	}
	p.mu.Unlock()
	if superseded {
		return domain.EmailAvailability{Email: email}, nil
	}

	taken, err := p.store.EmailTaken(ctx, email)
	if err != nil {
		// Advisory only: log and report unknown.
		p.logger.Warn("email probe failed", zap.Error(err))
		return domain.EmailAvailability{Email: email}, nil
	}

	return domain.EmailAvailability{
		Email:     email,
		Checked:   true,
		Available: !taken,
	}, nil
}
