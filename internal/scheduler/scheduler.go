package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	HourlySweepSpec       = "0 * * * *"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
)

// Sweeper drops expired popup sessions.
type Sweeper interface {
	Sweep(now time.Time) int
	Len() int
}

type Scheduler struct {
	ctx      context.Context
	cron     *cron.Cron
	sessions Sweeper
	now      func() time.Time
	log      *slog.Logger
}

func New(ctx context.Context, sessions Sweeper, log *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:      ctx,
		cron:     c,
		sessions: sessions,
		now:      time.Now,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(HourlySweepSpec, s.sweepSessions); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sweepSessions() {
	select {
	case <-s.ctx.Done():
		s.log.InfoContext(s.ctx, "Scheduler context is done",
			"error", s.ctx.Err())
		return
	default:
	}

	removed := s.sessions.Sweep(s.now())
	if removed == 0 {
		return
	}

	s.log.InfoContext(s.ctx, "Expired sessions are swept",
		"removedCount", removed,
		"remainingCount", s.sessions.Len())
}
