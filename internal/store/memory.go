package store

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/wildfire-risk/internal/assessment"
)

// ErrNotFound is returned when no prediction is stored for a given location.
var ErrNotFound = assessment.ErrNotFound

// MemoryStore is a concurrency-safe in-memory prediction store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key, value: predictions ordered by CreatedAt
	data map[string][]assessment.Prediction

	maxHistory int           // max number of predictions per location
	maxAge     time.Duration // optional max age for predictions
	clock      clockwork.Clock
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory or maxAge is <= 0, that limit is disabled. Expired
// predictions are dropped on write and hidden from reads.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string][]assessment.Prediction),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		clock:      clockwork.NewRealClock(),
	}
}

// WithClock swaps the time source used for age retention.
func (s *MemoryStore) WithClock(c clockwork.Clock) *MemoryStore {
	s.clock = c
	return s
}

// Save appends a prediction for its location and enforces retention.
func (s *MemoryStore) Save(_ context.Context, p assessment.Prediction) error {
	key := p.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	history := insertOrdered(s.data[key], p)

	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}

	history = history[s.firstLive(history):]

	if len(history) == 0 {
		delete(s.data, key)
		return nil
	}
	s.data[key] = history
	return nil
}

// Latest returns the most recent prediction for a location.
func (s *MemoryStore) Latest(_ context.Context, location string) (assessment.Prediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[assessment.LocationKey(location)]
	history = history[s.firstLive(history):]
	if len(history) == 0 {
		return assessment.Prediction{}, ErrNotFound
	}
	return history[len(history)-1], nil
}

// Range returns all predictions for a location between from and to (inclusive).
func (s *MemoryStore) Range(_ context.Context, location string, from, to time.Time) ([]assessment.Prediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[assessment.LocationKey(location)]

	var result []assessment.Prediction
	for _, p := range history[s.firstLive(history):] {
		if !p.CreatedAt.Before(from) && !p.CreatedAt.After(to) {
			result = append(result, p)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

// firstLive returns the index of the first prediction within maxAge.
func (s *MemoryStore) firstLive(history []assessment.Prediction) int {
	if s.maxAge <= 0 {
		return 0
	}
	cutoff := s.clock.Now().Add(-s.maxAge)
	i := 0
	for i < len(history) && history[i].CreatedAt.Before(cutoff) {
		i++
	}
	return i
}

// insertOrdered keeps history sorted by CreatedAt; the common case appends.
func insertOrdered(history []assessment.Prediction, p assessment.Prediction) []assessment.Prediction {
	i := len(history)
	for i > 0 && history[i-1].CreatedAt.After(p.CreatedAt) {
		i--
	}
	history = append(history, assessment.Prediction{})
	copy(history[i+1:], history[i:])
	history[i] = p
	return history
}
