package calendar

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/contestboard/arena/internal/clientdata"
)

// DefaultCacheTTL is how long a fetched calendar is served without refetching
const DefaultCacheTTL = 5 * time.Minute

// Service serves the calendar from memory while fresh, refetches when
// stale, and falls back to the last good copy when upstream fails
type Service struct {
	fetcher Fetcher
	cache   *clientdata.Repository // optional persisted copy
	key     string
	ttl     time.Duration
	now     func() time.Time
	log     zerolog.Logger

	inflight singleflight.Group

	mu        sync.RWMutex
	events    []EconomicEvent
	fetchedAt time.Time
}

// NewService creates a new calendar service. cache may be nil; key names the
// persisted copy (the feed URL).
func NewService(fetcher Fetcher, cache *clientdata.Repository, key string, ttl time.Duration, log zerolog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{
		fetcher: fetcher,
		cache:   cache,
		key:     key,
		ttl:     ttl,
		now:     time.Now,
		log:     log.With().Str("service", "calendar").Logger(),
	}
}

// Events returns the calendar, fetching from upstream when the cached copy
// is older than the TTL
func (s *Service) Events(ctx context.Context) ([]EconomicEvent, error) {
	if events, ok := s.fresh(); ok {
		return events, nil
	}
	return s.Refresh(ctx)
}

// Refresh fetches from upstream regardless of cache age. Non-empty results
// replace the cache; on failure the last good copy is returned. Concurrent
// callers share one upstream fetch.
func (s *Service) Refresh(ctx context.Context) ([]EconomicEvent, error) {
	ch := s.inflight.DoChan("refresh", func() (interface{}, error) {
		// detached so one caller giving up does not fail the others
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Minute)
		defer cancel()
		return s.refresh(fetchCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]EconomicEvent), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Service) refresh(ctx context.Context) ([]EconomicEvent, error) {
	events, err := s.fetcher.Fetch(ctx)
	if err != nil {
		if stale, ok := s.stale(); ok {
			s.log.Warn().Err(err).Int("events", len(stale)).Msg("Calendar fetch failed, serving stale copy")
			return stale, nil
		}
		s.log.Error().Err(err).Msg("Calendar fetch failed with nothing cached")
		return nil, ErrUnavailable
	}

	if len(events) > 0 {
		s.store(events)
	}
	return events, nil
}

// Warm loads the persisted copy into memory, keeping its original fetch time
// so freshness is judged correctly
func (s *Service) Warm() {
	if s.cache == nil {
		return
	}

	entry, err := s.cache.Get(clientdata.NamespaceCalendar, s.key)
	if err != nil || entry == nil {
		if err != nil {
			s.log.Warn().Err(err).Msg("Failed to read persisted calendar")
		}
		return
	}

	var events []EconomicEvent
	if err := entry.Decode(&events); err != nil {
		s.log.Warn().Err(err).Msg("Discarding unreadable persisted calendar")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchedAt.IsZero() || entry.FetchedAt.After(s.fetchedAt) {
		s.events = events
		s.fetchedAt = entry.FetchedAt
	}
	s.log.Info().Int("events", len(events)).Time("fetched_at", entry.FetchedAt).Msg("Loaded persisted calendar")
}

// Run refreshes the calendar; it lets the service be scheduled as a job
func (s *Service) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	_, err := s.Refresh(ctx)
	return err
}

// Name returns the job name
func (s *Service) Name() string {
	return "calendar_refresh"
}

func (s *Service) fresh() ([]EconomicEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.events == nil || s.now().Sub(s.fetchedAt) >= s.ttl {
		return nil, false
	}
	return s.events, true
}

func (s *Service) stale() ([]EconomicEvent, bool) {
	s.mu.RLock()
	events := s.events
	s.mu.RUnlock()
	if events != nil {
		return events, true
	}

	// a restart leaves only the persisted copy
	s.Warm()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events, s.events != nil
}

func (s *Service) store(events []EconomicEvent) {
	now := s.now()

	s.mu.Lock()
	s.events = events
	s.fetchedAt = now
	s.mu.Unlock()

	if s.cache == nil {
		return
	}
	if err := s.cache.Store(clientdata.NamespaceCalendar, s.key, events, clientdata.TTLCalendar); err != nil {
		s.log.Warn().Err(err).Msg("Failed to persist calendar")
	}
}
