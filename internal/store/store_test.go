package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/wildfire-risk/internal/assessment"
)

var (
	t0        = time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)
	farFuture = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
)

func prediction(location string, at time.Time, prob float64) assessment.Prediction {
	return assessment.Prediction{
		ID:                fmt.Sprintf("%s-%d", location, at.Unix()),
		Location:          location,
		Probability:       prob,
		ModelType:         assessment.ModelType,
		FeatureImportance: map[string]float64{"temperature": 1},
		CreatedAt:         at,
	}
}

// testLocations are purged from postgres before each shared test.
var testLocations = []string{"Redding, CA", "Chico", "Paradise", "Fresno"}

// backends returns every store implementation, all sharing the same fake
// clock. Postgres joins when DATABASE_URL is set.
func backends(t *testing.T, maxHistory int, maxAge time.Duration, clock clockwork.Clock) map[string]assessment.Store {
	t.Helper()

	bolt, err := NewBoltStore(filepath.Join(t.TempDir(), "predictions.db"), maxHistory, maxAge)
	require.NoError(t, err)
	t.Cleanup(func() { bolt.Close() })

	out := map[string]assessment.Store{
		"memory": NewMemoryStore(maxHistory, maxAge).WithClock(clock),
		"bolt":   bolt.WithClock(clock),
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		ctx := context.Background()
		pg, err := NewPostgresStore(ctx, dsn, maxHistory, maxAge)
		require.NoError(t, err)
		t.Cleanup(func() { pg.Close() })

		keys := make([]string, len(testLocations))
		for i, l := range testLocations {
			keys[i] = assessment.LocationKey(l)
		}
		require.NoError(t, pg.purge(ctx, keys...))
		out["postgres"] = pg.WithClock(clock)
	}
	return out
}

func TestStore_LatestAndRange(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t, 0, 0, clockwork.NewFakeClockAt(t0)) {
		t.Run(name, func(t *testing.T) {
			for i := range 4 {
				require.NoError(t, s.Save(ctx, prediction("Redding, CA", t0.Add(time.Duration(i)*time.Hour), float64(10*i))))
			}
			require.NoError(t, s.Save(ctx, prediction("Chico", t0, 55)))

			latest, err := s.Latest(ctx, "  redding,   ca ")
			require.NoError(t, err)
			assert.Equal(t, 30.0, latest.Probability)
			assert.True(t, latest.CreatedAt.Equal(t0.Add(3*time.Hour)))

			got, err := s.Range(ctx, "Redding, CA", t0.Add(time.Hour), t0.Add(2*time.Hour))
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, 10.0, got[0].Probability)
			assert.Equal(t, 20.0, got[1].Probability)

			got, err = s.Range(ctx, "Redding, CA", t0, farFuture)
			require.NoError(t, err)
			assert.Len(t, got, 4)

			got, err = s.Range(ctx, "Redding, CA", time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC), t0.Add(time.Hour))
			require.NoError(t, err)
			assert.Len(t, got, 2)

			_, err = s.Range(ctx, "Redding, CA", t0.Add(-2*time.Hour), t0.Add(-time.Hour))
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = s.Latest(ctx, "Paradise")
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = s.Range(ctx, "Paradise", t0, t0.Add(time.Hour))
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_RetentionByCount(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t, 2, 0, clockwork.NewFakeClockAt(t0)) {
		t.Run(name, func(t *testing.T) {
			for i := range 5 {
				require.NoError(t, s.Save(ctx, prediction("Fresno", t0.Add(time.Duration(i)*time.Minute), float64(i))))
			}

			got, err := s.Range(ctx, "Fresno", t0, t0.Add(time.Hour))
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, 3.0, got[0].Probability)
			assert.Equal(t, 4.0, got[1].Probability)
		})
	}
}

func TestStore_RetentionByAge(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(t0.Add(3 * time.Hour))
	for name, s := range backends(t, 0, 2*time.Hour, clock) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Save(ctx, prediction("Fresno", t0, 1)))
			require.NoError(t, s.Save(ctx, prediction("Fresno", t0.Add(2*time.Hour), 2)))

			got, err := s.Range(ctx, "Fresno", t0.Add(-time.Hour), t0.Add(4*time.Hour))
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, 2.0, got[0].Probability)
		})
	}
}

func TestStore_ExpiredHiddenOnRead(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(t0)
	for name, s := range backends(t, 0, time.Hour, clock) {
		t.Run(name, func(t *testing.T) {
			saved := clock.Now()
			require.NoError(t, s.Save(ctx, prediction("Chico", saved, 40)))

			_, err := s.Latest(ctx, "Chico")
			require.NoError(t, err)

			// No write happens after the clock moves past maxAge.
			clock.Advance(2 * time.Hour)

			_, err = s.Latest(ctx, "Chico")
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = s.Range(ctx, "Chico", saved.Add(-time.Hour), farFuture)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestTsPrefix(t *testing.T) {
	tests := map[string]struct {
		at   time.Time
		want string
	}{
		"epoch":           {time.Unix(0, 0), "00000000000000000000"},
		"regular":         {t0, "01722513600000000000"},
		"before epoch":    {time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC), "00000000000000000000"},
		"zero time":       {time.Time{}, "00000000000000000000"},
		"after year 2262": {farFuture, "09223372036854775807"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := tsPrefix(tt.at)
			require.Len(t, got, tsWidth)
			assert.Equal(t, tt.want, string(got))
		})
	}

	assert.Positive(t, bytes.Compare(tsPrefix(farFuture), tsPrefix(t0)))
}

func TestMemoryStore_AllExpired(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0, time.Hour).WithClock(clockwork.NewFakeClockAt(t0))

	require.NoError(t, s.Save(ctx, prediction("Fresno", t0.Add(-2*time.Hour), 1)))

	_, err := s.Latest(ctx, "Fresno")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_OutOfOrderSave(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0, 0)

	require.NoError(t, s.Save(ctx, prediction("Fresno", t0.Add(time.Hour), 2)))
	require.NoError(t, s.Save(ctx, prediction("Fresno", t0, 1)))

	latest, err := s.Latest(ctx, "Fresno")
	require.NoError(t, err)
	assert.Equal(t, 2.0, latest.Probability)
}

func TestBoltStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "predictions.db")

	s, err := NewBoltStore(path, 0, 0)
	require.NoError(t, err)
	p := prediction("Paradise, CA", t0, 88.4)
	p.VegetationIndex = &assessment.VegetationIndex{NDVI: ptr(0.12)}
	require.NoError(t, s.Save(ctx, p))
	require.NoError(t, s.Close())

	s, err = NewBoltStore(path, 0, 0)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Latest(ctx, "paradise, ca")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	require.NotNil(t, got.VegetationIndex)
	assert.Equal(t, 0.12, *got.VegetationIndex.NDVI)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()

	s, err := NewPostgresStore(ctx, dsn, 0, 0)
	require.NoError(t, err)
	defer s.Close()

	location := fmt.Sprintf("test-%d", time.Now().UnixNano())
	require.NoError(t, s.Save(ctx, prediction(location, t0, 12)))
	require.NoError(t, s.Save(ctx, prediction(location, t0.Add(time.Hour), 34)))

	latest, err := s.Latest(ctx, location)
	require.NoError(t, err)
	assert.Equal(t, 34.0, latest.Probability)

	got, err := s.Range(ctx, location, t0, t0.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = s.Latest(ctx, location+"-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func ptr(v float64) *float64 { return &v }
