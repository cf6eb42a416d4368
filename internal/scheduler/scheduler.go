package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/wildfire-risk/internal/assessment"
)

const (
	defaultInterval = 15 * time.Minute
	jobTimeout      = 30 * time.Second
)

// Assessor scores a location. It is satisfied by *assessment.Service.
type Assessor interface {
	Assess(ctx context.Context, location string) (assessment.Prediction, error)
}

// Scheduler periodically re-assesses a watchlist of locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	assessor  Assessor
	locations []string
	interval  time.Duration
	runs      prometheus.Counter
}

// New creates a new Scheduler. runs may be nil.
func New(locations []string, interval time.Duration, assessor Assessor, runs prometheus.Counter) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		assessor:  assessor,
		locations: locations,
		interval:  interval,
		runs:      runs,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		log.Info().Msg("scheduler: no locations configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Info().Int("locations", len(s.locations)).Dur("interval", s.interval).Msg("scheduler started")
	return nil
}

// RunOnce assesses every watched location concurrently and returns the
// number of failures.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	log.Debug().Msg("scheduler: running watchlist assessment")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures int
	)
	for _, loc := range s.locations {
		wg.Add(1)
		go func() {
			defer wg.Done()

			jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
			defer cancel()

			p, err := s.assessor.Assess(jobCtx, loc)
			if err != nil {
				log.Warn().Err(err).Str("location", loc).Msg("scheduler: assessment failed")
				mu.Lock()
				failures++
				mu.Unlock()
				return
			}
			log.Debug().Str("location", loc).Float64("probability", p.Probability).Msg("scheduler: assessed")
		}()
	}
	wg.Wait()

	if s.runs != nil {
		s.runs.Inc()
	}
	log.Info().Int("locations", len(s.locations)).Int("failures", failures).Msg("scheduler: completed watchlist assessment")
	return failures
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
