// Package postgres implements the query.Translator contract against a
// managed Postgres-compatible service using the pgx driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/fleetstack-labs/fleetwatch/pkg/query"
)

// countColumn is the synthetic window column carrying the total match count.
const countColumn = "__total"

// dialect is the Postgres rendering configuration: $N placeholders, native
// array membership, case-insensitive ILIKE.
var dialect = query.Dialect{
	Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	ArrayIn:     true,
	FoldLike:    false,
}

// Config holds connection settings for the remote backend.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
}

// DSN builds a key=value connection string the way pgx expects it.
func (c Config) DSN() string {
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == 0 {
		port = 5432
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "require"
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s", host, port, c.Database, sslmode)
	if c.User != "" {
		dsn += fmt.Sprintf(" user=%s", c.User)
	}
	if c.Password != "" {
		dsn += fmt.Sprintf(" password=%s", c.Password)
	}
	return dsn
}

// Translator executes descriptors against Postgres.
type Translator struct {
	db     *sql.DB
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

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Translator, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	t := New(db, logger)
	t.logger.Debug("connected to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))
	return t, nil
}

// Close releases the database handle.
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
	return "postgres"
}

// Select builds and runs a SELECT. The total match count, when requested,
// rides along as a COUNT(*) OVER() window column so one round-trip serves
// both the page and the pagination total.
func (t *Translator) Select(ctx context.Context, q query.Query) (*query.Result, error) {
	cols := columnList(q.Columns)
	if q.WithCount {
		cols += ", COUNT(*) OVER() AS " + countColumn
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", cols, query.QuoteIdent(q.Table))

	whereSQL, args, err := query.RenderWhere(dialect, q.Where)
	if err != nil {
		return nil, err
	}
	if whereSQL != "" {
		sb.WriteString(" WHERE " + whereSQL)
	}
	appendOrder(&sb, q.OrderBy)
	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	}
	if q.Offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", q.Offset)
	}

	rows, err := t.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("postgres select failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	recs, err := query.ScanRows(rows)
	if err != nil {
		return nil, err
	}

	res := &query.Result{Rows: recs}
	if q.WithCount {
		res.Count = extractTotal(recs)
		if len(recs) == 0 && q.Offset > 0 {
			// The window column vanishes with the empty page; ask again
			// without the page bounds.
			res.Count, err = t.Count(ctx, q.Table, q.Where)
			if err != nil {
				return nil, err
			}
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
	for i, row := range rows {
		holders := make([]string, len(cols))
		for j, col := range cols {
			args = append(args, row[col])
			holders[j] = dialect.Placeholder(len(args))
		}
		tuples[i] = "(" + strings.Join(holders, ", ") + ")"
	}
	sb.WriteString(strings.Join(tuples, ", "))

	if !returning {
		if _, err := t.db.ExecContext(ctx, sb.String(), args...); err != nil {
			return nil, fmt.Errorf("postgres insert failed: %w", err)
		}
		return &query.Result{}, nil
	}

	sb.WriteString(" RETURNING *")
	out, err := t.queryRecords(ctx, sb.String(), args)
	if err != nil {
		return nil, fmt.Errorf("postgres insert failed: %w", err)
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
		sets[i] = fmt.Sprintf("%s = %s", query.QuoteIdent(col), dialect.Placeholder(len(args)))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "UPDATE %s SET %s", query.QuoteIdent(table), strings.Join(sets, ", "))
	whereSQL, whereArgs, err := renderWhereFrom(dialect, where, len(args))
	if err != nil {
		return nil, err
	}
	args = append(args, whereArgs...)
	if whereSQL != "" {
		sb.WriteString(" WHERE " + whereSQL)
	}

	if !returning {
		if _, err := t.db.ExecContext(ctx, sb.String(), args...); err != nil {
			return nil, fmt.Errorf("postgres update failed: %w", err)
		}
		return &query.Result{}, nil
	}

	sb.WriteString(" RETURNING *")
	out, err := t.queryRecords(ctx, sb.String(), args)
	if err != nil {
		return nil, fmt.Errorf("postgres update failed: %w", err)
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
		return fmt.Errorf("postgres delete failed: %w", err)
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
		return 0, fmt.Errorf("postgres count failed: %w", err)
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

// columnList renders a projection; nil means all columns.
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

// sortedColumns returns the record's columns in a stable order so generated
// statements are deterministic.
func sortedColumns(rec query.Record) []string {
	cols := make([]string, 0, len(rec))
	for col := range rec {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func appendOrder(sb *strings.Builder, o *query.Order) {
	if o == nil {
		return
	}
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	fmt.Fprintf(sb, " ORDER BY %s %s", query.QuoteIdent(o.Column), dir)
}

// renderWhereFrom renders conditions with placeholders starting after the
// given offset, for statements whose SET list already consumed some.
func renderWhereFrom(d query.Dialect, where []query.Condition, offset int) (string, []any, error) {
	shifted := query.Dialect{
		Placeholder: func(n int) string { return d.Placeholder(n + offset) },
		ArrayIn:     d.ArrayIn,
		FoldLike:    d.FoldLike,
	}
	return query.RenderWhere(shifted, where)
}

// extractTotal pulls the window count out of the scanned page and strips the
// synthetic column from every record.
func extractTotal(recs []query.Record) int64 {
	var total int64
	for i, rec := range recs {
		if i == 0 {
			total = asInt64(rec[countColumn])
		}
		delete(rec, countColumn)
	}
	return total
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case string:
		var out int64
		_, _ = fmt.Sscan(n, &out)
		return out
	default:
		return 0
	}
}

var _ query.Translator = (*Translator)(nil)
