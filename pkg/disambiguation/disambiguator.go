package disambiguation

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/db-afk/GRAO-tables-processing/pkg/ekatte"
	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
	"github.com/db-afk/GRAO-tables-processing/pkg/logging"
	"github.com/db-afk/GRAO-tables-processing/pkg/names"
	"github.com/db-afk/GRAO-tables-processing/pkg/tables"
)

// Resolver maps a key to its code.
type Resolver interface {
	Resolve(ctx context.Context, key ekatte.Key) (ekatte.Code, error)
}

// Outcome classifies what happened to one key.
type Outcome string

// Outcomes reported to observers.
const (
	OutcomeCached   Outcome = "cached"
	OutcomeResolved Outcome = "resolved"
	OutcomeNoMatch  Outcome = "no_match"
	OutcomeError    Outcome = "error"
)

// Observer is notified once per key.
type Observer func(outcome Outcome, elapsed time.Duration)

// Entry is a key to resolve together with the triple it came from.
type Entry struct {
	Key    ekatte.Key
	Origin Origin
}

// KeyFor builds the lookup key of a table record: the region, municipality
// and the settlement name after its type abbreviation, all normalized.
func KeyFor(r tables.FullRecord) ekatte.Key {
	settlement := r.Settlement
	if _, after, ok := strings.Cut(settlement, "."); ok {
		settlement = after
	}
	return ekatte.Key{
		Region:       names.Normalize(strings.TrimSpace(r.Region)),
		Municipality: names.Normalize(strings.TrimSpace(r.Municipality)),
		Settlement:   names.Normalize(strings.TrimSpace(settlement)),
	}
}

// EntriesFor collects the distinct keys of the given records, keeping the
// first origin seen for each key, in key order.
func EntriesFor(records ...[]tables.FullRecord) []Entry {
	seen := make(map[ekatte.Key]Origin)
	for _, rs := range records {
		for _, r := range rs {
			k := KeyFor(r)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = Origin{Region: r.Region, Municipality: r.Municipality, Settlement: r.Settlement}
		}
	}
	out := make([]Entry, 0, len(seen))
	for _, k := range SortedKeys(seen) {
		out = append(out, Entry{Key: k, Origin: seen[k]})
	}
	return out
}

// Report summarizes a disambiguation run.
type Report struct {
	Total    int
	Cached   int
	Resolved int
	Failures []ekatte.Key
}

// Disambiguator resolves keys that are not yet in the cache. It is the only
// writer of its cache.
type Disambiguator struct {
	cache    *Cache
	resolver Resolver
	observe  Observer
}

// Option configures a Disambiguator.
type Option func(*Disambiguator)

// WithObserver registers a per-key observer.
func WithObserver(o Observer) Option {
	return func(d *Disambiguator) {
		d.observe = o
	}
}

// New creates a Disambiguator.
func New(cache *Cache, resolver Resolver, opts ...Option) *Disambiguator {
	d := &Disambiguator{cache: cache, resolver: resolver}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run resolves every entry missing from the cache, one at a time in key
// order. Each success is persisted before the next key is looked up. Keys
// without a match are collected and written as the new failure set once all
// entries are done. Any other error aborts the run.
func (d *Disambiguator) Run(ctx context.Context, entries []Entry) (*Report, error) {
	sorted := append([]Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key.Less(sorted[j].Key) })

	log := logging.FromContext(ctx)
	report := &Report{Total: len(sorted)}
	failures := make(map[ekatte.Key]struct{})

	for _, e := range sorted {
		if d.cache.Resolved(e.Key) {
			report.Cached++
			d.notify(OutcomeCached, 0)
			continue
		}

		start := time.Now()
		keyCtx := logging.WithSettlement(ctx, e.Key.String())
		code, err := d.resolver.Resolve(keyCtx, e.Key)
		switch {
		case err == nil:
			if err := d.cache.Put(ctx, e.Key, e.Origin, code); err != nil {
				return report, err
			}
			report.Resolved++
			d.notify(OutcomeResolved, time.Since(start))
		case errors.IsNoMatch(err):
			failures[e.Key] = struct{}{}
			d.notify(OutcomeNoMatch, time.Since(start))
			logging.FromContext(keyCtx).Info().Msg("No register match")
		default:
			d.notify(OutcomeError, time.Since(start))
			return report, errors.WrapResource("resolve", "settlement", e.Key.String(), err)
		}
	}

	report.Failures = SortedKeys(failures)
	if err := d.cache.ReplaceFailures(ctx, report.Failures); err != nil {
		return report, err
	}

	log.Info().
		Int("keys", report.Total).
		Int("cached", report.Cached).
		Int("resolved", report.Resolved).
		Int("failures", len(report.Failures)).
		Msg("Disambiguation finished")
	return report, nil
}

func (d *Disambiguator) notify(o Outcome, elapsed time.Duration) {
	if d.observe != nil {
		d.observe(o, elapsed)
	}
}
