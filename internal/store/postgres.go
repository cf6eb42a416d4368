package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/wildfire-risk/internal/assessment"
)

const createPredictionsTable = `
CREATE TABLE IF NOT EXISTS predictions (
	id           TEXT PRIMARY KEY,
	location_key TEXT        NOT NULL,
	probability  DOUBLE PRECISION NOT NULL,
	payload      JSONB       NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS predictions_location_created_idx
	ON predictions (location_key, created_at);
`

// PostgresStore keeps predictions in a predictions table. Count and age
// limits are enforced per location on write; expired rows are hidden from
// reads.
type PostgresStore struct {
	db         *sql.DB
	maxHistory int
	maxAge     time.Duration
	clock      clockwork.Clock
}

// NewPostgresStore connects to dsn, verifies the connection and creates the
// schema when missing. A limit <= 0 is disabled.
func NewPostgresStore(ctx context.Context, dsn string, maxHistory int, maxAge time.Duration) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{db: db, maxHistory: maxHistory, maxAge: maxAge, clock: clockwork.NewRealClock()}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	log.Info().Msg("postgres prediction store ready")
	return s, nil
}

// Migrate creates the predictions table and index if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createPredictionsTable); err != nil {
		return fmt.Errorf("migrate predictions: %w", err)
	}
	return nil
}

// WithClock swaps the time source used for age retention.
func (s *PostgresStore) WithClock(c clockwork.Clock) *PostgresStore {
	s.clock = c
	return s
}

func (s *PostgresStore) cutoff() time.Time {
	if s.maxAge <= 0 {
		return time.Time{}
	}
	return s.clock.Now().Add(-s.maxAge).UTC()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Save(ctx context.Context, p assessment.Prediction) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prediction: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO predictions (id, location_key, probability, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO NOTHING`,
		p.ID, p.Key(), p.Probability, payload, p.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}

	if s.maxAge > 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM predictions WHERE location_key = $1 AND created_at < $2`,
			p.Key(), s.cutoff()); err != nil {
			return fmt.Errorf("trim expired predictions: %w", err)
		}
	}
	if s.maxHistory > 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM predictions WHERE id = ANY(
				SELECT id FROM predictions WHERE location_key = $1
				ORDER BY created_at DESC OFFSET $2)`,
			p.Key(), s.maxHistory); err != nil {
			return fmt.Errorf("trim prediction history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// purge removes every prediction for the given location keys.
func (s *PostgresStore) purge(ctx context.Context, keys ...string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM predictions WHERE location_key = ANY($1)`, pq.Array(keys))
	return err
}

func (s *PostgresStore) Latest(ctx context.Context, location string) (assessment.Prediction, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM predictions
		 WHERE location_key = $1 AND created_at >= $2
		 ORDER BY created_at DESC LIMIT 1`,
		assessment.LocationKey(location), s.cutoff()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return assessment.Prediction{}, ErrNotFound
	}
	if err != nil {
		return assessment.Prediction{}, fmt.Errorf("query latest prediction: %w", err)
	}

	var p assessment.Prediction
	if err := json.Unmarshal(payload, &p); err != nil {
		return assessment.Prediction{}, fmt.Errorf("decode prediction: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Range(ctx context.Context, location string, from, to time.Time) ([]assessment.Prediction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM predictions
		 WHERE location_key = $1 AND created_at BETWEEN $2 AND $3 AND created_at >= $4
		 ORDER BY created_at`,
		assessment.LocationKey(location), from.UTC(), to.UTC(), s.cutoff())
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var out []assessment.Prediction
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		var p assessment.Prediction
		if err := json.Unmarshal(payload, &p); err != nil {
			log.Warn().Err(err).Msg("skipping malformed prediction")
			continue
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate predictions: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}
