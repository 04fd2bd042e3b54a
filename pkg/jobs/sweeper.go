package jobs

import (
	"context"
	"time"

	"github.com/artem13815/career/pkg/logger"
)

// SweepFunc fails work that has been PROCESSING for too long and returns how
// many records it touched.
type SweepFunc func(ctx context.Context) (int64, error)

type Sweeper struct {
	sweeps   map[string]SweepFunc
	interval time.Duration
	log      *logger.Logger
}

func NewSweeper(interval time.Duration, log *logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{sweeps: map[string]SweepFunc{}, interval: interval, log: log.With("component", "StaleSweeper")}
}

func (s *Sweeper) Add(name string, fn SweepFunc) { s.sweeps[name] = fn }

func (s *Sweeper) Run(ctx context.Context) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.SweepOnce(ctx)
		}
	}
}

func (s *Sweeper) SweepOnce(ctx context.Context) {
	for name, fn := range s.sweeps {
		n, err := fn(ctx)
		if err != nil {
			s.log.Warn("Sweep failed", "sweep", name, "error", err)
			continue
		}
		if n > 0 {
			s.log.Info("Stale records marked failed", "sweep", name, "count", n)
		}
	}
}
