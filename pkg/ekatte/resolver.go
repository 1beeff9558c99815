package ekatte

import (
	"context"
	"time"

	"github.com/db-afk/GRAO-tables-processing/pkg/constants"
	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
	"github.com/db-afk/GRAO-tables-processing/pkg/logging"
	"github.com/db-afk/GRAO-tables-processing/pkg/retry"
)

// Lookuper returns the register candidates for a settlement name.
type Lookuper interface {
	Lookup(ctx context.Context, settlement string) ([]Candidate, error)
}

// Resolver maps settlement keys to codes.
type Resolver struct {
	lookup Lookuper
	policy retry.Policy
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithDelays replaces the wait schedule between lookup attempts.
func WithDelays(delays ...time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.policy.Delays = delays
	}
}

// WithSleeper replaces the function used to wait between attempts.
func WithSleeper(s retry.Sleeper) ResolverOption {
	return func(r *Resolver) {
		r.policy.Sleep = s
	}
}

// WithRetryHook registers a callback invoked before every retry.
func WithRetryHook(fn func(attempt int, delay time.Duration, err error)) ResolverOption {
	return func(r *Resolver) {
		r.policy.OnRetry = fn
	}
}

// NewResolver creates a resolver retrying failed lookups on the
// 10s/15s/20s schedule.
func NewResolver(l Lookuper, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		lookup: l,
		policy: retry.Policy{
			Name:      "directory lookup",
			Delays:    constants.DirectoryRetrySchedule(),
			Retryable: Retryable,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retryable reports whether a lookup failure may succeed on a later attempt:
// transport failures and malformed pages are retried, anything else is not.
func Retryable(err error) bool {
	return errors.IsTransport(err) || errors.IsMalformedResponse(err)
}

// Resolve returns the code of the settlement identified by key. A key that
// matches no candidate yields an error satisfying errors.IsNoMatch; a lookup
// that keeps failing yields one satisfying errors.IsRetriesExhausted.
func (r *Resolver) Resolve(ctx context.Context, key Key) (Code, error) {
	candidates, err := retry.Do(ctx, r.policy, func(ctx context.Context) ([]Candidate, error) {
		return r.lookup.Lookup(ctx, key.Settlement)
	})
	if err != nil {
		return "", err
	}

	code, ok := Match(key, candidates)
	if !ok {
		return "", errors.NewNoMatchError(key.String(), len(candidates))
	}
	logging.FromContext(ctx).Debug().
		Str("settlement", key.String()).
		Str("ekatte", string(code)).
		Int("candidates", len(candidates)).
		Msg("Resolved settlement")
	return code, nil
}
