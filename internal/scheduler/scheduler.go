package scheduler

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rohits-web03/codedrop/internal/transfer"
)

// Sweeper is the part of the transfer manager the scheduler drives.
type Sweeper interface {
	Sweep(ctx context.Context) (*transfer.SweepReport, error)
}

type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	logger  *zap.Logger
}

// New registers the expiry sweep on schedule, in cron syntax or a descriptor
// such as "@every 1h". Runs never overlap.
func New(ctx context.Context, schedule string, sweeper Sweeper, logger *zap.Logger) (*Scheduler, error) {
	cl := cronLogger{logger: logger.Sugar()}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	s := &Scheduler{cron: c, sweeper: sweeper, logger: logger}

	if _, err := c.AddFunc(schedule, func() { s.RunSweep(ctx) }); err != nil {
		return nil, errors.Wrapf(err, "parse sweep schedule %q", schedule)
	}
	return s, nil
}

// RunSweep performs one sweep and logs its outcome.
func (s *Scheduler) RunSweep(ctx context.Context) {
	report, err := s.sweeper.Sweep(ctx)
	if err != nil {
		s.logger.Error("expiry sweep failed", zap.Error(err))
		return
	}
	if len(report.Failed) > 0 {
		s.logger.Warn("expiry sweep left transfers behind", zap.Int("failed", len(report.Failed)))
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for a running sweep to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
