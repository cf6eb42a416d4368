package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"go.etcd.io/bbolt"

	"github.com/i474232898/wildfire-risk/internal/assessment"
)

const (
	predictionsBucket = "predictions"
	// tsWidth is the zero-padded width of the timestamp part of a key, so
	// byte order matches time order.
	tsWidth = 20
)

// maxNanoTime is the last instant UnixNano can represent.
var maxNanoTime = time.Unix(0, math.MaxInt64)

// BoltStore persists predictions in a BoltDB file. Each location gets a
// nested bucket keyed by "<unixnano>_<id>".
type BoltStore struct {
	db         *bbolt.DB
	maxHistory int
	maxAge     time.Duration
	clock      clockwork.Clock
}

// NewBoltStore opens (or creates) the database at path. Expired predictions
// are deleted on write and hidden from reads.
func NewBoltStore(path string, maxHistory int, maxAge time.Duration) (*BoltStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(predictionsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create predictions bucket: %w", err)
	}

	return &BoltStore{db: db, maxHistory: maxHistory, maxAge: maxAge, clock: clockwork.NewRealClock()}, nil
}

// WithClock swaps the time source used for age retention.
func (s *BoltStore) WithClock(c clockwork.Clock) *BoltStore {
	s.clock = c
	return s
}

func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *BoltStore) Save(_ context.Context, p assessment.Prediction) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prediction: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.Bucket([]byte(predictionsBucket)).CreateBucketIfNotExists([]byte(p.Key()))
		if err != nil {
			return fmt.Errorf("create location bucket: %w", err)
		}
		if err := b.Put(predictionKey(p.CreatedAt, p.ID), data); err != nil {
			return fmt.Errorf("put prediction: %w", err)
		}
		return s.trim(b)
	})
}

// trim drops the oldest entries beyond the count and age limits.
func (s *BoltStore) trim(b *bbolt.Bucket) error {
	if s.maxAge <= 0 && s.maxHistory <= 0 {
		return nil
	}

	var keys [][]byte
	c := b.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		keys = append(keys, bytes.Clone(k))
	}

	drop := 0
	if s.maxAge > 0 {
		cutoff := s.cutoff()
		for drop < len(keys) && bytes.Compare(keys[drop][:tsWidth], cutoff) < 0 {
			drop++
		}
	}
	if s.maxHistory > 0 && len(keys)-drop > s.maxHistory {
		drop = len(keys) - s.maxHistory
	}

	for _, k := range keys[:drop] {
		if err := b.Delete(k); err != nil {
			return fmt.Errorf("trim prediction: %w", err)
		}
	}
	return nil
}

func (s *BoltStore) Latest(_ context.Context, location string) (assessment.Prediction, error) {
	var p assessment.Prediction
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(predictionsBucket)).Bucket([]byte(assessment.LocationKey(location)))
		if b == nil {
			return ErrNotFound
		}
		k, v := b.Cursor().Last()
		if v == nil || bytes.Compare(k[:tsWidth], s.cutoff()) < 0 {
			return ErrNotFound
		}
		return json.Unmarshal(v, &p)
	})
	if err != nil {
		return assessment.Prediction{}, err
	}
	return p, nil
}

func (s *BoltStore) Range(_ context.Context, location string, from, to time.Time) ([]assessment.Prediction, error) {
	var out []assessment.Prediction
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(predictionsBucket)).Bucket([]byte(assessment.LocationKey(location)))
		if b == nil {
			return nil
		}

		start, end := tsPrefix(from), tsPrefix(to)
		if cutoff := s.cutoff(); bytes.Compare(cutoff, start) > 0 {
			start = cutoff
		}
		c := b.Cursor()
		for k, v := c.Seek(start); k != nil && bytes.Compare(k[:tsWidth], end) <= 0; k, v = c.Next() {
			var p assessment.Prediction
			if err := json.Unmarshal(v, &p); err != nil {
				log.Warn().Err(err).Str("key", string(k)).Msg("skipping malformed prediction")
				continue
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// cutoff is the key prefix of the oldest live prediction; all keys are
// live when no age limit is set.
func (s *BoltStore) cutoff() []byte {
	if s.maxAge <= 0 {
		return tsPrefix(time.Time{})
	}
	return tsPrefix(s.clock.Now().Add(-s.maxAge))
}

// tsPrefix saturates outside the UnixNano range so far-future bounds stay
// above every key and pre-epoch bounds below.
func tsPrefix(t time.Time) []byte {
	var ns int64
	switch {
	case t.After(maxNanoTime):
		ns = math.MaxInt64
	case t.Before(time.Unix(0, 0)):
		ns = 0
	default:
		ns = t.UnixNano()
	}
	return []byte(fmt.Sprintf("%0*d", tsWidth, ns))
}

func predictionKey(t time.Time, id string) []byte {
	return append(tsPrefix(t), []byte("_"+id)...)
}
