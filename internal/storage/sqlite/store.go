// Package sqlite is the embedded-database backend of the disambiguation
// cache. Each collection lives in its own table; saves run in a single
// transaction so a crash leaves either the old or the new state on disk.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/db-afk/GRAO-tables-processing/pkg/constants"
	"github.com/db-afk/GRAO-tables-processing/pkg/disambiguation"
	"github.com/db-afk/GRAO-tables-processing/pkg/ekatte"
	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS ` + constants.ForwardBlob + ` (
	region       TEXT NOT NULL,
	municipality TEXT NOT NULL,
	settlement   TEXT NOT NULL,
	ekatte       TEXT NOT NULL,
	PRIMARY KEY (region, municipality, settlement)
);
CREATE TABLE IF NOT EXISTS ` + constants.ReverseBlob + ` (
	ekatte       TEXT PRIMARY KEY,
	region       TEXT NOT NULL,
	municipality TEXT NOT NULL,
	settlement   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS ` + constants.FailuresBlob + ` (
	region       TEXT NOT NULL,
	municipality TEXT NOT NULL,
	settlement   TEXT NOT NULL,
	PRIMARY KEY (region, municipality, settlement)
);
`

// Store is a disambiguation.Store backed by a SQLite database file.
type Store struct {
	db   *sql.DB
	path string

	// Mapping entries are never removed, so only rows that differ from
	// the last committed state are written.
	mu      sync.Mutex
	forward map[ekatte.Key]ekatte.Code
	reverse map[ekatte.Code]disambiguation.Origin
}

var _ disambiguation.Store = (*Store)(nil)

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("open", path, err)
	}
	for _, pragma := range []string{"PRAGMA journal_mode = WAL", "PRAGMA synchronous = FULL"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, errors.WrapIO("configure", path, fmt.Errorf("%s: %w", pragma, err))
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("migrate", path, err)
	}

	return &Store{
		db:      db,
		path:    path,
		forward: make(map[ekatte.Key]ekatte.Code),
		reverse: make(map[ekatte.Code]disambiguation.Origin),
	}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads all three collections.
func (s *Store) Load(ctx context.Context) (*disambiguation.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &disambiguation.Snapshot{
		Forward: make(map[ekatte.Key]ekatte.Code),
		Reverse: make(map[ekatte.Code]disambiguation.Origin),
	}

	rows, err := s.db.QueryContext(ctx, `SELECT region, municipality, settlement, ekatte FROM `+constants.ForwardBlob)
	if err != nil {
		return nil, errors.WrapResource("load", "cache", constants.ForwardBlob, err)
	}
	for rows.Next() {
		var k ekatte.Key
		var code string
		if err := rows.Scan(&k.Region, &k.Municipality, &k.Settlement, &code); err != nil {
			_ = rows.Close()
			return nil, errors.WrapResource("load", "cache", constants.ForwardBlob, err)
		}
		snap.Forward[k] = ekatte.Code(code)
	}
	if err := closeRows(rows); err != nil {
		return nil, errors.WrapResource("load", "cache", constants.ForwardBlob, err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT ekatte, region, municipality, settlement FROM `+constants.ReverseBlob)
	if err != nil {
		return nil, errors.WrapResource("load", "cache", constants.ReverseBlob, err)
	}
	for rows.Next() {
		var o disambiguation.Origin
		var code string
		if err := rows.Scan(&code, &o.Region, &o.Municipality, &o.Settlement); err != nil {
			_ = rows.Close()
			return nil, errors.WrapResource("load", "cache", constants.ReverseBlob, err)
		}
		snap.Reverse[ekatte.Code(code)] = o
	}
	if err := closeRows(rows); err != nil {
		return nil, errors.WrapResource("load", "cache", constants.ReverseBlob, err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT region, municipality, settlement FROM `+constants.FailuresBlob+
		` ORDER BY region, municipality, settlement`)
	if err != nil {
		return nil, errors.WrapResource("load", "cache", constants.FailuresBlob, err)
	}
	for rows.Next() {
		var k ekatte.Key
		if err := rows.Scan(&k.Region, &k.Municipality, &k.Settlement); err != nil {
			_ = rows.Close()
			return nil, errors.WrapResource("load", "cache", constants.FailuresBlob, err)
		}
		snap.Failures = append(snap.Failures, k)
	}
	if err := closeRows(rows); err != nil {
		return nil, errors.WrapResource("load", "cache", constants.FailuresBlob, err)
	}

	for k, v := range snap.Forward {
		s.forward[k] = v
	}
	for k, v := range snap.Reverse {
		s.reverse[k] = v
	}
	return snap, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	return rows.Close()
}

// SaveMappings brings both mapping tables in line with the given maps.
func (s *Store) SaveMappings(ctx context.Context, forward map[ekatte.Key]ekatte.Code, reverse map[ekatte.Code]disambiguation.Origin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapResource("save", "cache", "mappings", err)
	}
	defer func() { _ = tx.Rollback() }()

	var fwdWritten []ekatte.Key
	for k, code := range forward {
		if prev, ok := s.forward[k]; ok && prev == code {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO `+constants.ForwardBlob+` (region, municipality, settlement, ekatte) VALUES (?, ?, ?, ?)`,
			k.Region, k.Municipality, k.Settlement, string(code)); err != nil {
			return errors.WrapResource("save", "cache", constants.ForwardBlob, err)
		}
		fwdWritten = append(fwdWritten, k)
	}

	var revWritten []ekatte.Code
	for code, o := range reverse {
		if prev, ok := s.reverse[code]; ok && prev == o {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO `+constants.ReverseBlob+` (ekatte, region, municipality, settlement) VALUES (?, ?, ?, ?)`,
			string(code), o.Region, o.Municipality, o.Settlement); err != nil {
			return errors.WrapResource("save", "cache", constants.ReverseBlob, err)
		}
		revWritten = append(revWritten, code)
	}

	if err := tx.Commit(); err != nil {
		return errors.WrapResource("save", "cache", "mappings", err)
	}
	for _, k := range fwdWritten {
		s.forward[k] = forward[k]
	}
	for _, c := range revWritten {
		s.reverse[c] = reverse[c]
	}
	return nil
}

// SaveFailures replaces the failure table.
func (s *Store) SaveFailures(ctx context.Context, failures []ekatte.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapResource("save", "cache", constants.FailuresBlob, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+constants.FailuresBlob); err != nil {
		return errors.WrapResource("save", "cache", constants.FailuresBlob, err)
	}
	for _, k := range failures {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO `+constants.FailuresBlob+` (region, municipality, settlement) VALUES (?, ?, ?)`,
			k.Region, k.Municipality, k.Settlement); err != nil {
			return errors.WrapResource("save", "cache", constants.FailuresBlob, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.WrapResource("save", "cache", constants.FailuresBlob, err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
