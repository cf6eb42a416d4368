package weather

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Service fans out to weather providers and aggregates their readings.
// It remembers the last good snapshot per location so a total provider
// outage can be bridged for up to staleAfter.
type Service struct {
	providers  []Provider
	staleAfter time.Duration
	clock      clockwork.Clock

	mu       sync.RWMutex
	lastGood map[string]WeatherSnapshot
}

// NewService creates a new Service. A zero staleAfter disables the fallback.
func NewService(providers []Provider, staleAfter time.Duration) *Service {
	return &Service{
		providers:  providers,
		staleAfter: staleAfter,
		clock:      clockwork.NewRealClock(),
		lastGood:   make(map[string]WeatherSnapshot),
	}
}

// WithClock swaps the time source, for tests.
func (s *Service) WithClock(c clockwork.Clock) *Service {
	s.clock = c
	return s
}

// Current fetches from all providers concurrently for the given location
// and aggregates the successful readings.
func (s *Service) Current(ctx context.Context, loc Location) (WeatherSnapshot, error) {
	if len(s.providers) == 0 {
		return WeatherSnapshot{}, fmt.Errorf("no weather providers configured")
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		readings []ProviderReading
	)

	for _, p := range s.providers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := p.Fetch(ctx, loc)
			if err != nil {
				// Partial success is fine.
				log.Warn().Err(err).Str("provider", p.Name()).Str("location", loc.Name).Msg("weather fetch failed")
				return
			}

			mu.Lock()
			readings = append(readings, r)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(readings) == 0 {
		if snap, ok := s.recent(loc); ok {
			log.Warn().Str("location", loc.Name).Time("as_of", snap.Timestamp).Msg("all weather providers failed; serving last good snapshot")
			return snap, nil
		}
		return WeatherSnapshot{}, fmt.Errorf("%s: %w", loc.Name, ErrNoReadings)
	}

	snap := AggregateReadings(loc, readings)
	log.Debug().Str("location", loc.Name).Int("providers", len(readings)).Float64("temperature", snap.Temperature).Msg("weather aggregated")

	s.mu.Lock()
	s.lastGood[loc.Key()] = snap
	s.mu.Unlock()
	return snap, nil
}

func (s *Service) recent(loc Location) (WeatherSnapshot, bool) {
	if s.staleAfter <= 0 {
		return WeatherSnapshot{}, false
	}

	s.mu.RLock()
	snap, ok := s.lastGood[loc.Key()]
	s.mu.RUnlock()

	if !ok || s.clock.Since(snap.Timestamp) > s.staleAfter {
		return WeatherSnapshot{}, false
	}
	return snap, true
}
