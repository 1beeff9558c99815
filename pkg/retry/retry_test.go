package retry_test

import (
	"context"
	"testing"
	"time"

	"github.com/db-afk/GRAO-tables-processing/pkg/constants"
	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
	"github.com/db-afk/GRAO-tables-processing/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	waits []time.Duration
}

func (r *recorder) sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

func (r *recorder) total() time.Duration {
	var sum time.Duration
	for _, d := range r.waits {
		sum += d
	}
	return sum
}

func directoryPolicy(r *recorder) retry.Policy {
	return retry.Policy{
		Name:   "directory lookup",
		Delays: constants.DirectoryRetrySchedule(),
		Sleep:  r.sleep,
	}
}

func TestDoSucceedsAfterThreeFailures(t *testing.T) {
	rec := &recorder{}
	calls := 0

	got, err := retry.Do(context.Background(), directoryPolicy(rec), func(context.Context) (string, error) {
		calls++
		if calls <= 3 {
			return "", errors.NewAPIError("nsi", 503, "unavailable")
		}
		return "10135", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "10135", got)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{10 * time.Second, 15 * time.Second, 20 * time.Second}, rec.waits)
	assert.Equal(t, 45*time.Second, rec.total())
}

func TestDoExhausts(t *testing.T) {
	rec := &recorder{}
	calls := 0
	last := errors.NewAPIError("nsi", 500, "boom")

	_, err := retry.Do(context.Background(), directoryPolicy(rec), func(context.Context) (int, error) {
		calls++
		return 0, last
	})

	require.Error(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, 45*time.Second, rec.total())
	assert.True(t, errors.IsRetriesExhausted(err))
	assert.True(t, errors.IsTransport(err))
	assert.ErrorIs(t, err, last)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	rec := &recorder{}
	p := directoryPolicy(rec)
	p.Retryable = func(err error) bool { return !errors.IsNoMatch(err) }
	calls := 0

	_, err := retry.Do(context.Background(), p, func(context.Context) (string, error) {
		calls++
		return "", errors.NewNoMatchError("k", 0)
	})

	assert.True(t, errors.IsNoMatch(err))
	assert.False(t, errors.IsRetriesExhausted(err))
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.waits)
}

func TestDoOnRetryHook(t *testing.T) {
	rec := &recorder{}
	p := directoryPolicy(rec)
	var attempts []int
	p.OnRetry = func(attempt int, _ time.Duration, _ error) { attempts = append(attempts, attempt) }

	_, _ = retry.Do(context.Background(), p, func(context.Context) (int, error) {
		return 0, errors.New("fail")
	})
	assert.Equal(t, []int{1, 2, 3}, attempts)
}

func TestDoCanceledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := retry.Policy{Name: "op", Delays: []time.Duration{time.Hour}}
	calls := 0

	start := time.Now()
	_, err := retry.Do(ctx, p, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("fail")
	})

	assert.True(t, errors.IsCanceled(err))
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), time.Minute)
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, retry.SleepContext(context.Background(), 0))
	require.NoError(t, retry.SleepContext(context.Background(), time.Millisecond))
}
