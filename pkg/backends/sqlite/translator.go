// Package sqlite implements the query.Translator contract against an
// embedded SQLite database file using the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/fleetstack-labs/fleetwatch/pkg/query"
)

// dialect is the SQLite rendering configuration: ? placeholders, expanded
// IN lists, LOWER()-folded LIKE since SQLite's LIKE is case-insensitive for
// ASCII only.
var dialect = query.Dialect{
	Placeholder: func(int) string { return "?" },
	ArrayIn:     false,
	FoldLike:    true,
}

// Translator executes descriptors against SQLite.
type Translator struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// New wraps an existing database handle. If logger is nil, a discard logger
// is used.
func New(db *sql.DB, logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Translator{db: db, logger: logger}
}

// Open opens the database file, creating it if needed. Use ":memory:" for an
// in-memory database. File databases get foreign keys and WAL journaling.
func Open(path string, logger *slog.Logger) (*Translator, error) {
	dsn := path
	if path == ":memory:" {
		dsn = ":memory:?_pragma=foreign_keys(1)"
	} else {
		dsn = fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Each pooled connection would see its own empty in-memory
		// database, so pin the pool to one.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	t := New(db, logger)
	t.path = path
	t.logger.Debug("opened sqlite database", slog.String("path", path))
	return t, nil
}

// Close closes the database file.
func (t *Translator) Close() error {
	if t.db != nil {
		return t.db.Close()
	}
	return nil
}

// DB exposes the underlying handle for migrations and seeding.
func (t *Translator) DB() *sql.DB {
	return t.db
}

// Name identifies this backend in logs and errors.
func (t *Translator) Name() string {
	return "sqlite"
}

// Select builds and runs a SELECT. Unlike the Postgres translator, the total
// match count comes from a second COUNT(*) statement without the page
// bounds, so it is exact regardless of limit and offset.
func (t *Translator) Select(ctx context.Context, q query.Query) (*query.Result, error) {
	whereSQL, args, err := query.RenderWhere(dialect, q.Where)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", columnList(q.Columns), query.QuoteIdent(q.Table))
	if whereSQL != "" {
		sb.WriteString(" WHERE " + whereSQL)
	}
	if q.OrderBy != nil {
		dir := "ASC"
		if q.OrderBy.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s", query.QuoteIdent(q.OrderBy.Column), dir)
	}
	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	} else if q.Offset > 0 {
		// SQLite requires a LIMIT clause before OFFSET.
		sb.WriteString(" LIMIT -1")
	}
	if q.Offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", q.Offset)
	}

	rows, err := t.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite select failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	recs, err := query.ScanRows(rows)
	if err != nil {
		return nil, err
	}

	res := &query.Result{Rows: recs}
	if q.WithCount {
		res.Count, err = t.Count(ctx, q.Table, q.Where)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Insert adds rows with a multi-row VALUES list and RETURNING when requested.
func (t *Translator) Insert(ctx context.Context, table string, rows []query.Record, returning bool) (*query.Result, error) {
	if len(rows) == 0 {
		return &query.Result{}, nil
	}

	cols := sortedColumns(rows[0])
	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", query.QuoteIdent(table), columnList(cols))

	args := make([]any, 0, len(rows)*len(cols))
	tuples := make([]string, len(rows))
	holders := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
	for i, row := range rows {
		for _, col := range cols {
			args = append(args, row[col])
		}
		tuples[i] = holders
	}
	sb.WriteString(strings.Join(tuples, ", "))

	if !returning {
		if _, err := t.db.ExecContext(ctx, sb.String(), args...); err != nil {
			return nil, fmt.Errorf("sqlite insert failed: %w", err)
		}
		return &query.Result{}, nil
	}

	sb.WriteString(" RETURNING *")
	out, err := t.queryRecords(ctx, sb.String(), args)
	if err != nil {
		return nil, fmt.Errorf("sqlite insert failed: %w", err)
	}
	return &query.Result{Rows: out}, nil
}

// Update applies a partial patch to all rows matching the equality-only
// conditions.
func (t *Translator) Update(ctx context.Context, table string, patch query.Record, where []query.Condition, returning bool) (*query.Result, error) {
	if err := query.ValidateWhere(where, true); err != nil {
		return nil, err
	}

	cols := sortedColumns(patch)
	args := make([]any, 0, len(cols)+len(where))
	sets := make([]string, len(cols))
	for i, col := range cols {
		args = append(args, patch[col])
		sets[i] = query.QuoteIdent(col) + " = ?"
	}

	whereSQL, whereArgs, err := query.RenderWhere(dialect, where)
	if err != nil {
		return nil, err
	}
	args = append(args, whereArgs...)

	var sb strings.Builder
	fmt.Fprintf(&sb, "UPDATE %s SET %s", query.QuoteIdent(table), strings.Join(sets, ", "))
	if whereSQL != "" {
		sb.WriteString(" WHERE " + whereSQL)
	}

	if !returning {
		if _, err := t.db.ExecContext(ctx, sb.String(), args...); err != nil {
			return nil, fmt.Errorf("sqlite update failed: %w", err)
		}
		return &query.Result{}, nil
	}

	sb.WriteString(" RETURNING *")
	out, err := t.queryRecords(ctx, sb.String(), args)
	if err != nil {
		return nil, fmt.Errorf("sqlite update failed: %w", err)
	}
	return &query.Result{Rows: out}, nil
}

// Delete removes rows matching the equality-only conditions. Zero matches is
// a successful no-op.
func (t *Translator) Delete(ctx context.Context, table string, where []query.Condition) error {
	if err := query.ValidateWhere(where, true); err != nil {
		return err
	}
	whereSQL, args, err := query.RenderWhere(dialect, where)
	if err != nil {
		return err
	}
	stmt := fmt.Sprintf("DELETE FROM %s", query.QuoteIdent(table))
	if whereSQL != "" {
		stmt += " WHERE " + whereSQL
	}
	if _, err := t.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("sqlite delete failed: %w", err)
	}
	return nil
}

// Count returns the number of rows matching the conditions.
func (t *Translator) Count(ctx context.Context, table string, where []query.Condition) (int64, error) {
	whereSQL, args, err := query.RenderWhere(dialect, where)
	if err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf("SELECT COUNT(*) FROM %s", query.QuoteIdent(table))
	if whereSQL != "" {
		stmt += " WHERE " + whereSQL
	}
	var n int64
	if err := t.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite count failed: %w", err)
	}
	return n, nil
}

func (t *Translator) queryRecords(ctx context.Context, stmt string, args []any) ([]query.Record, error) {
	rows, err := t.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return query.ScanRows(rows)
}

func columnList(cols []string) string {
	if len(cols) == 0 {
		return "*"
	}
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = query.QuoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}

func sortedColumns(rec query.Record) []string {
	cols := make([]string, 0, len(rec))
	for col := range rec {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

var _ query.Translator = (*Translator)(nil)
