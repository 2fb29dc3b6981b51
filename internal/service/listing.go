package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/oblozinskyroman/stars/internal/domain"
	"github.com/oblozinskyroman/stars/internal/infra/observability"
	"github.com/oblozinskyroman/stars/internal/port"

	"go.uber.org/zap"
)

// localizedListingError is what the listing snapshot reports for any
// collaborator failure. The underlying error goes to the log, not the user.
const localizedListingError = "Nepodarilo sa načítať zoznam firiem. Skúste to znova."

// ListingService composes company listing queries and keeps the latest
// settled result as a shared snapshot. Every input change issues a new
// query immediately; there is no manual search trigger.
//
// Queries race, but only over the shared snapshot. Each caller always gets
// the result of its own query back; the snapshot takes a monotonically
// increasing token per query and a result may only land there if no newer
// query has been issued since, so a slow early response can never
// overwrite a fast later one.
type ListingService struct {
	store   port.CompanyStore
	cache   port.Cache[[]domain.CompanyWithRating]
	metrics *observability.Metrics
	logger  *zap.Logger

	token atomic.Uint64

	mu       sync.RWMutex
	applied  uint64
	snapshot domain.ListingSnapshot
}

// NewListingService wires the listing composer.
func NewListingService(store port.CompanyStore, cache port.Cache[[]domain.CompanyWithRating], metrics *observability.Metrics, logger *zap.Logger) *ListingService {
	return &ListingService{
		store:   store,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		snapshot: domain.ListingSnapshot{
			Companies: []domain.CompanyWithRating{},
		},
	}
}

// cacheKey canonicalizes a query: filter order does not matter.
func cacheKey(q domain.CompanyQuery) string {
	filters := append([]string(nil), q.Filters...)
	sort.Strings(filters)
	return fmt.Sprintf("%s|%s|%s|%s",
		q.Service,
		strings.ToLower(strings.TrimSpace(q.Search)),
		strings.Join(filters, ","),
		q.SortBy,
	)
}

// Query issues one listing query and returns its result to the caller.
// The shared snapshot only absorbs the result when it is still the newest
// issued query; a stale result never leaks into another caller's response.
func (s *ListingService) Query(ctx context.Context, q domain.CompanyQuery) domain.ListingSnapshot {
	ctx, span := tracer.Start(ctx, "ListingService.Query")
	defer span.End()

	token := s.token.Add(1)
	s.metrics.IncrListingQuery(q.SortBy)

	key := cacheKey(q)
	if companies, ok := s.cache.Get(key); ok {
		s.metrics.IncrCacheHit("listing")
		return s.settle(token, q, companies, "")
	}
	s.metrics.IncrCacheMiss("listing")

	companies, err := s.store.ListApproved(ctx, q)
	if err != nil {
		s.metrics.IncrExternalError("supabase/companies")
		s.logger.Error("listing query failed", zap.Error(err), zap.String("key", key))
		return s.settle(token, q, []domain.CompanyWithRating{}, localizedListingError)
	}

	s.cache.Set(key, companies)
	return s.settle(token, q, companies, "")
}

// settle builds the caller's result and installs it into the shared
// snapshot unless a newer query owns the snapshot by now.
func (s *ListingService) settle(token uint64, q domain.CompanyQuery, companies []domain.CompanyWithRating, errMsg string) domain.ListingSnapshot {
	result := domain.ListingSnapshot{
		Companies: companies,
		Loading:   false,
		Error:     errMsg,
		Query:     q,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if token < s.applied || token < s.token.Load() {
		// A newer query owns the snapshot; the caller still gets its own result.
		s.metrics.IncrStaleDropped()
		return result
	}

	s.applied = token
	s.snapshot = result
	return result
}

// Snapshot returns the latest settled listing state.
func (s *ListingService) Snapshot() domain.ListingSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Retry re-issues the caller's query unchanged. Retries are user-initiated;
// nothing on this path retries by itself.
func (s *ListingService) Retry(ctx context.Context, q domain.CompanyQuery) domain.ListingSnapshot {
	return s.Query(ctx, q)
}
