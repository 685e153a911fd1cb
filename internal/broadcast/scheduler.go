package broadcast

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler fires a job once per calendar day at a fixed wall-clock time in a
// configured zone. If the process is down at the scheduled time, that day is
// skipped; there is no catch-up.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	ctx    context.Context
	cancel context.CancelFunc
	firing atomic.Bool
	job    func(ctx context.Context)
}

// NewScheduler parses at as "HH:MM" wall-clock time in loc.
func NewScheduler(at string, loc *time.Location, job func(ctx context.Context)) (*Scheduler, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return nil, fmt.Errorf("parse broadcast time %q: %w", at, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		spec:   fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()),
		ctx:    ctx,
		cancel: cancel,
		job:    job,
	}, nil
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		// Still firing from a previous trigger: skip, next day is independent.
		if !s.firing.CompareAndSwap(false, true) {
			log.Printf("previous broadcast pass still running, skipping trigger")
			return
		}
		defer s.firing.Store(false)
		s.job(s.ctx)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("scheduler started, daily broadcast at %s", s.spec)
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Printf("scheduler stopped")
}

// Firing reports whether a broadcast pass is currently in flight.
func (s *Scheduler) Firing() bool { return s.firing.Load() }

// IsRunning reports whether the scheduler has a registered entry.
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
