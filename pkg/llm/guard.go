package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"

	"github.com/artem13815/career/pkg/apperr"
)

type GuardOptions struct {
	// MaxRetries is the number of extra attempts after the first one.
	MaxRetries int
	RetryBase  time.Duration
	// PerMinute caps outbound calls; zero disables limiting.
	PerMinute int
}

type guarded struct {
	next    ChatModel
	limiter *rate.Limiter
	opts    GuardOptions
}

// Guard wraps a model with rate limiting and bounded retry of transient upstream
// failures. Format errors and other failures are returned immediately.
func Guard(next ChatModel, opts GuardOptions) ChatModel {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = 500 * time.Millisecond
	}
	g := &guarded{next: next, opts: opts}
	if opts.PerMinute > 0 {
		burst := opts.PerMinute / 10
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(float64(opts.PerMinute)/60.0), burst)
	}
	return g
}

func (g *guarded) Complete(ctx context.Context, systemPrompt string, history []Message) (string, error) {
	backoff := retry.WithMaxRetries(uint64(g.opts.MaxRetries), retry.NewExponential(g.opts.RetryBase))
	backoff = retry.WithCappedDuration(30*time.Second, backoff)

	var out string
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		res, err := g.next.Complete(ctx, systemPrompt, history)
		if err != nil {
			if errors.Is(err, apperr.ErrTransientUpstream) {
				return retry.RetryableError(err)
			}
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return "", err
	}
	return out, nil
}
