// Package files is the flat-file backend of the disambiguation cache: one
// YAML document per collection, each replaced atomically on save.
package files

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/db-afk/GRAO-tables-processing/pkg/constants"
	"github.com/db-afk/GRAO-tables-processing/pkg/disambiguation"
	"github.com/db-afk/GRAO-tables-processing/pkg/ekatte"
	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
	"github.com/db-afk/GRAO-tables-processing/pkg/save"
)

type forwardEntry struct {
	ekatte.Key `yaml:",inline"`
	Code       ekatte.Code `yaml:"ekatte"`
}

type reverseEntry struct {
	Code                  ekatte.Code `yaml:"ekatte"`
	disambiguation.Origin `yaml:",inline"`
}

// Store keeps the cache in a directory.
type Store struct {
	dir string
}

var _ disambiguation.Store = (*Store)(nil)

// New returns a store rooted at dir. The directory is created on first save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(blob string) string {
	return filepath.Join(s.dir, blob+save.FormatYAML.Extension())
}

// Load reads every collection. Missing files are empty collections.
func (s *Store) Load(ctx context.Context) (*disambiguation.Snapshot, error) {
	snap := &disambiguation.Snapshot{
		Forward: make(map[ekatte.Key]ekatte.Code),
		Reverse: make(map[ekatte.Code]disambiguation.Origin),
	}

	var fwd []forwardEntry
	if err := load(s.path(constants.ForwardBlob), &fwd); err != nil {
		return nil, err
	}
	for _, e := range fwd {
		snap.Forward[e.Key] = e.Code
	}

	var rev []reverseEntry
	if err := load(s.path(constants.ReverseBlob), &rev); err != nil {
		return nil, err
	}
	for _, e := range rev {
		snap.Reverse[e.Code] = e.Origin
	}

	if err := load(s.path(constants.FailuresBlob), &snap.Failures); err != nil {
		return nil, err
	}
	return snap, ctx.Err()
}

func load(path string, v any) error {
	err := save.Load(path, v)
	if errors.IsNotFound(err) {
		return nil
	}
	return err
}

// SaveMappings rewrites both mapping files.
func (s *Store) SaveMappings(ctx context.Context, forward map[ekatte.Key]ekatte.Code, reverse map[ekatte.Code]disambiguation.Origin) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fwd := make([]forwardEntry, 0, len(forward))
	for _, k := range disambiguation.SortedKeys(forward) {
		fwd = append(fwd, forwardEntry{Key: k, Code: forward[k]})
	}
	if err := save.Value(fwd, save.WithPath(s.path(constants.ForwardBlob)), save.WithFormat(save.FormatYAML)); err != nil {
		return err
	}

	rev := make([]reverseEntry, 0, len(reverse))
	for code, o := range reverse {
		rev = append(rev, reverseEntry{Code: code, Origin: o})
	}
	sort.Slice(rev, func(i, j int) bool { return rev[i].Code < rev[j].Code })
	return save.Value(rev, save.WithPath(s.path(constants.ReverseBlob)), save.WithFormat(save.FormatYAML))
}

// SaveFailures rewrites the failures file.
func (s *Store) SaveFailures(ctx context.Context, failures []ekatte.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if failures == nil {
		failures = []ekatte.Key{}
	}
	return save.Value(failures, save.WithPath(s.path(constants.FailuresBlob)), save.WithFormat(save.FormatYAML))
}

// Close is a no-op; every save is already on disk.
func (s *Store) Close() error {
	return nil
}
