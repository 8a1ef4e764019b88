// Package query defines the backend-neutral query contract for FleetWatch.
//
// This package contains the descriptor types callers build (Query, Condition,
// Record) and the Translator interface that backend implementations satisfy.
// Concrete translators live in pkg/backends/ subdirectories; the Store in
// store.go routes every call to the translator selected at construction.
package query

import "context"

// Record is a single row keyed by column name.
type Record map[string]any

// Order describes a single-column sort.
type Order struct {
	Column string
	Desc   bool
}

// Query is the descriptor for a select operation.
//
// Columns nil (or empty) selects all columns. Where clauses are conjoined
// with AND. WithCount requests the total number of matching rows ignoring
// Limit and Offset, so pagination UIs can size themselves from one call.
type Query struct {
	Table     string
	Columns   []string
	Where     []Condition
	OrderBy   *Order
	Limit     int
	Offset    int
	WithCount bool
}

// Result is the uniform shape every operation returns.
//
// Rows is populated by select and by list insert/update when returning is
// requested. Row is populated by single-record inserts. Count is only
// meaningful when the operation asked for one.
type Result struct {
	Rows  []Record
	Row   Record
	Count int64
}

// Translator maps descriptors to queries against one concrete backend.
// Implementations must be stateless and safe for concurrent use; the only
// state they hold is their driver handle.
type Translator interface {
	// Select executes the query and returns matching rows. When q.WithCount
	// is set the result carries the total match count ignoring Limit/Offset.
	Select(ctx context.Context, q Query) (*Result, error)

	// Insert adds rows to the table. When returning is true the inserted
	// rows are echoed back, one result row per input row.
	Insert(ctx context.Context, table string, rows []Record, returning bool) (*Result, error)

	// Update applies patch to every row matching the equality-only
	// conditions. Non-equality conditions are a translation error.
	Update(ctx context.Context, table string, patch Record, where []Condition, returning bool) (*Result, error)

	// Delete removes rows matching the equality-only conditions. Deleting
	// zero rows is not an error.
	Delete(ctx context.Context, table string, where []Condition) error

	// Count returns the number of rows matching the conditions.
	Count(ctx context.Context, table string, where []Condition) (int64, error)

	// Name identifies the backend for logs and errors.
	Name() string
}
