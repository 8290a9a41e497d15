package stock

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"apexpos/backend/internal/logging"
)

const replayBatch = 100

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler replays the adjustment outbox on a cron schedule.
type Scheduler struct {
	sched    *cron.Cron
	adjuster *Adjuster
	log      zerolog.Logger
}

func NewScheduler(adjuster *Adjuster, spec string, loc *time.Location, logger zerolog.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	s := &Scheduler{
		adjuster: adjuster,
		log:      logger.With().Str("component", "stock-retry").Logger(),
	}
	cronLog := logging.CronLogger{Log: s.log}
	s.sched = cron.New(
		cron.WithLocation(loc),
		cron.WithParser(cronParser),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	if _, err := s.sched.AddFunc(spec, s.RunOnce); err != nil {
		return nil, errors.Wrapf(err, "schedule stock retry %q", spec)
	}
	return s, nil
}

// RunOnce replays one batch of queued adjustments.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	applied, err := s.adjuster.ReplayPending(ctx, replayBatch)
	if err != nil {
		s.log.Error().Err(err).Msg("stock retry run failed")
		return
	}
	if applied > 0 {
		s.log.Info().Int("applied", applied).Msg("queued stock adjustments applied")
	}
}

func (s *Scheduler) Start() {
	s.sched.Start()
}

// Stop halts the schedule and waits for a running replay, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.sched.Stop().Done():
	case <-ctx.Done():
		s.log.Warn().Msg("stock retry still running at shutdown")
	}
}
