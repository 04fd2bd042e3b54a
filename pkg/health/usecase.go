package health

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Checker represents a dependency health check.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// ReadinessUseCase describes readiness verification.
type ReadinessUseCase interface {
	Report(ctx context.Context) Report
}

const (
	StatusUp   = "up"
	StatusDown = "down"
)

// CheckResult is the outcome of one dependency check.
type CheckResult struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report lists every checker in registration order; Ready is true only when
// all of them are up.
type Report struct {
	Ready  bool          `json:"ready"`
	Checks []CheckResult `json:"checks"`
}

type service struct {
	checkers []Checker
}

// NewService aggregates dependency checkers. Nil checkers are skipped.
func NewService(checkers ...Checker) ReadinessUseCase {
	s := &service{}
	for _, ch := range checkers {
		if ch != nil {
			s.checkers = append(s.checkers, ch)
		}
	}
	return s
}

// Report runs all checkers concurrently; results keep registration order.
func (s *service) Report(ctx context.Context) Report {
	rep := Report{Ready: true, Checks: make([]CheckResult, len(s.checkers))}
	var g errgroup.Group
	for i, ch := range s.checkers {
		i, ch := i, ch
		g.Go(func() error {
			res := CheckResult{Name: ch.Name(), Status: StatusUp}
			if err := ch.Check(ctx); err != nil {
				res.Status = StatusDown
				res.Error = err.Error()
			}
			rep.Checks[i] = res
			return nil
		})
	}
	_ = g.Wait()
	for _, res := range rep.Checks {
		if res.Status != StatusUp {
			rep.Ready = false
		}
	}
	return rep
}
