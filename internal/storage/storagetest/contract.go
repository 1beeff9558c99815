// Package storagetest holds the behaviour every disambiguation store
// backend must share.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/db-afk/GRAO-tables-processing/pkg/disambiguation"
	"github.com/db-afk/GRAO-tables-processing/pkg/ekatte"
	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
)

// Opener opens a store in dir. Calling it twice with the same dir must
// reach the same persisted state.
type Opener func(t *testing.T, dir string) disambiguation.Store

// CountingResolver answers from a fixed table and counts calls.
type CountingResolver struct {
	Codes map[ekatte.Key]ekatte.Code
	Calls int
}

// Resolve implements disambiguation.Resolver.
func (r *CountingResolver) Resolve(_ context.Context, key ekatte.Key) (ekatte.Code, error) {
	r.Calls++
	if code, ok := r.Codes[key]; ok {
		return code, nil
	}
	return "", errors.NewNoMatchError(key.String(), 0)
}

var (
	petrovo = ekatte.Key{Region: "ВАРНА", Municipality: "АВРЕН", Settlement: "ПЕТРОВО"}
	bankya  = ekatte.Key{Region: "СОФИЯ", Municipality: "СТОЛИЧНА", Settlement: "БАНКЯ"}
	nowhere = ekatte.Key{Region: "ВАРНА", Municipality: "АВРЕН", Settlement: "НИКЪДЕ"}
)

func entries() []disambiguation.Entry {
	return []disambiguation.Entry{
		{Key: petrovo, Origin: disambiguation.Origin{Region: "ВАРНА", Municipality: "АВРЕН", Settlement: "С. ПЕТРОВО"}},
		{Key: bankya, Origin: disambiguation.Origin{Region: "СОФИЯ", Municipality: "СТОЛИЧНА", Settlement: "ГР. БАНКЯ"}},
		{Key: nowhere, Origin: disambiguation.Origin{Region: "ВАРНА", Municipality: "АВРЕН", Settlement: "С. НИКЪДЕ"}},
	}
}

// Contract runs the shared backend tests.
func Contract(t *testing.T, open Opener) {
	t.Helper()

	t.Run("EmptyLoad", func(t *testing.T) {
		store := open(t, t.TempDir())
		snap, err := store.Load(context.Background())
		require.NoError(t, err)
		assert.Empty(t, snap.Forward)
		assert.Empty(t, snap.Reverse)
		assert.Empty(t, snap.Failures)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		ctx := context.Background()
		dir := t.TempDir()
		store := open(t, dir)

		forward := map[ekatte.Key]ekatte.Code{petrovo: "56784"}
		reverse := map[ekatte.Code]disambiguation.Origin{"56784": {Region: "ВАРНА", Municipality: "АВРЕН", Settlement: "С. ПЕТРОВО"}}
		require.NoError(t, store.SaveMappings(ctx, forward, reverse))

		forward[bankya] = "02676"
		reverse["02676"] = disambiguation.Origin{Region: "СОФИЯ", Municipality: "СТОЛИЧНА", Settlement: "ГР. БАНКЯ"}
		require.NoError(t, store.SaveMappings(ctx, forward, reverse))
		require.NoError(t, store.SaveFailures(ctx, []ekatte.Key{nowhere}))
		require.NoError(t, store.Close())

		snap, err := open(t, dir).Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, forward, snap.Forward)
		assert.Equal(t, reverse, snap.Reverse)
		assert.Equal(t, []ekatte.Key{nowhere}, snap.Failures)
	})

	t.Run("FailuresAreReplaced", func(t *testing.T) {
		ctx := context.Background()
		dir := t.TempDir()
		store := open(t, dir)

		require.NoError(t, store.SaveFailures(ctx, []ekatte.Key{nowhere, bankya}))
		require.NoError(t, store.SaveFailures(ctx, []ekatte.Key{petrovo}))
		require.NoError(t, store.Close())

		snap, err := open(t, dir).Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []ekatte.Key{petrovo}, snap.Failures)
	})

	t.Run("SecondRunMakesNoLookups", func(t *testing.T) {
		ctx := context.Background()
		dir := t.TempDir()
		resolver := &CountingResolver{Codes: map[ekatte.Key]ekatte.Code{petrovo: "56784", bankya: "02676"}}

		store := open(t, dir)
		cache, err := disambiguation.Load(ctx, store)
		require.NoError(t, err)
		report, err := disambiguation.New(cache, resolver).Run(ctx, entries())
		require.NoError(t, err)
		assert.Equal(t, 2, report.Resolved)
		assert.Equal(t, []ekatte.Key{nowhere}, report.Failures)
		assert.Equal(t, 3, resolver.Calls)
		require.NoError(t, store.Close())

		// Failed keys are retried, resolved ones are not.
		resolver.Calls = 0
		store = open(t, dir)
		cache, err = disambiguation.Load(ctx, store)
		require.NoError(t, err)
		report, err = disambiguation.New(cache, resolver).Run(ctx, entries()[:2])
		require.NoError(t, err)
		assert.Equal(t, 2, report.Cached)
		assert.Zero(t, resolver.Calls)
		assert.Empty(t, report.Failures)

		code, ok := cache.Code(petrovo)
		assert.True(t, ok)
		assert.Equal(t, ekatte.Code("56784"), code)
		require.NoError(t, store.Close())
	})
}
