package query

import (
	"context"
	"fmt"
	"log/slog"
)

// Backend selects which translator a Store routes to. The value is resolved
// once from configuration at construction and never changes for the process
// lifetime.
type Backend int

const (
	// BackendLocal routes to the embedded SQLite translator.
	BackendLocal Backend = iota
	// BackendRemote routes to the managed Postgres translator.
	BackendRemote
)

// String returns the backend name as used in config and logs.
func (b Backend) String() string {
	if b == BackendRemote {
		return "remote"
	}
	return "local"
}

// Store is the public query adapter. It owns the two translator handles and
// dispatches every operation on the backend selected at construction.
//
// Store is stateless apart from those immutable handles and is safe for
// concurrent use.
type Store struct {
	backend Backend
	remote  Translator
	local   Translator
	logger  *slog.Logger
}

// NewStore builds a Store routing to the given backend. The local translator
// is required; the remote one may be nil, in which case remote-selected calls
// fall back to local (see translator).
func NewStore(backend Backend, remote, local Translator, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{backend: backend, remote: remote, local: local, logger: logger}
}

// Backend reports which backend the store was configured for.
func (s *Store) Backend() Backend {
	return s.backend
}

// translator resolves the translator for one call. The only call-time branch
// the adapter permits: a remote selection without a usable remote handle is
// served locally instead of crashing, so partially configured environments
// still work. The fallback is logged, not surfaced as an error.
func (s *Store) translator() Translator {
	if s.backend == BackendRemote {
		if s.remote != nil {
			return s.remote
		}
		s.logger.Warn("remote backend selected but not configured, falling back to local")
	}
	return s.local
}

// Select executes a query descriptor against the configured backend.
func (s *Store) Select(ctx context.Context, q Query) (*Result, error) {
	if err := ValidateWhere(q.Where, false); err != nil {
		return nil, err
	}
	res, err := s.translator().Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", q.Table, err)
	}
	return res, nil
}

// Insert adds rows and echoes them back.
func (s *Store) Insert(ctx context.Context, table string, rows []Record) ([]Record, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	res, err := s.translator().Insert(ctx, table, rows, true)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", table, err)
	}
	return res.Rows, nil
}

// InsertOne adds a single row and returns it as a single record rather than
// a one-element slice.
func (s *Store) InsertOne(ctx context.Context, table string, row Record) (Record, error) {
	rows, err := s.Insert(ctx, table, []Record{row})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Update applies patch to all rows matching the equality-only conditions and
// returns the updated rows.
func (s *Store) Update(ctx context.Context, table string, patch Record, where []Condition) ([]Record, error) {
	if len(patch) == 0 {
		return nil, ErrEmptyPatch
	}
	if len(where) == 0 {
		return nil, ErrNoConditions
	}
	if err := ValidateWhere(where, true); err != nil {
		return nil, err
	}
	res, err := s.translator().Update(ctx, table, patch, where, true)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", table, err)
	}
	return res.Rows, nil
}

// Delete removes rows matching the equality-only conditions. Matching zero
// rows is a successful no-op.
func (s *Store) Delete(ctx context.Context, table string, where []Condition) error {
	if len(where) == 0 {
		return ErrNoConditions
	}
	if err := ValidateWhere(where, true); err != nil {
		return err
	}
	if err := s.translator().Delete(ctx, table, where); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

// Count returns the number of rows matching the conditions, independent of
// any select.
func (s *Store) Count(ctx context.Context, table string, where []Condition) (int64, error) {
	if err := ValidateWhere(where, false); err != nil {
		return 0, err
	}
	n, err := s.translator().Count(ctx, table, where)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
