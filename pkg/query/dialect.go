package query

import (
	"fmt"
	"strings"
)

// Dialect captures the syntax points where the two backends diverge.
// Everything else about clause rendering is shared.
type Dialect struct {
	// Placeholder formats the n-th bind parameter (1-based): $N or ?.
	Placeholder func(n int) string

	// ArrayIn renders set membership as field = ANY($n) with a single
	// array argument instead of an expanded IN (?, ?, ...) list.
	ArrayIn bool

	// FoldLike wraps both LIKE operands in LOWER() for backends whose
	// LIKE is not case-insensitive by default.
	FoldLike bool
}

// QuoteIdent makes an identifier safe to interpolate into SQL. Identifiers
// come from compiled-in table and column names, not user input; quoting
// exists to keep reserved words like "group" usable as columns.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// whereWriter accumulates rendered clauses and their bind arguments.
type whereWriter struct {
	d       Dialect
	clauses []string
	args    []any
}

func (w *whereWriter) placeholder() string {
	return w.d.Placeholder(len(w.args))
}

func (w *whereWriter) bind(v any) string {
	w.args = append(w.args, v)
	return w.placeholder()
}

// RenderWhere turns a condition chain into a SQL fragment (without the
// leading WHERE keyword) plus its bind arguments. Callers must have run
// ValidateWhere first; an unexpected shape here is a programming error and
// is still surfaced, never downgraded.
func RenderWhere(d Dialect, where []Condition) (string, []any, error) {
	w := &whereWriter{d: d}
	var parts []string
	for _, c := range where {
		clause, err := w.render(c)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, clause)
	}
	return strings.Join(parts, " AND "), w.args, nil
}

func (w *whereWriter) render(c Condition) (string, error) {
	switch c.Op {
	case OpEq:
		return fmt.Sprintf("%s = %s", QuoteIdent(c.Field), w.bind(c.Value)), nil
	case OpGt:
		return fmt.Sprintf("%s > %s", QuoteIdent(c.Field), w.bind(c.Value)), nil
	case OpGte:
		return fmt.Sprintf("%s >= %s", QuoteIdent(c.Field), w.bind(c.Value)), nil
	case OpLt:
		return fmt.Sprintf("%s < %s", QuoteIdent(c.Field), w.bind(c.Value)), nil
	case OpLte:
		return fmt.Sprintf("%s <= %s", QuoteIdent(c.Field), w.bind(c.Value)), nil
	case OpLike:
		pattern := "%" + fmt.Sprintf("%v", c.Value) + "%"
		if w.d.FoldLike {
			return fmt.Sprintf("LOWER(%s) LIKE LOWER(%s)", QuoteIdent(c.Field), w.bind(pattern)), nil
		}
		return fmt.Sprintf("%s ILIKE %s", QuoteIdent(c.Field), w.bind(pattern)), nil
	case OpIn:
		values, ok := c.Value.([]any)
		if !ok {
			return "", &UnsupportedConditionError{Op: c.Op, Reason: "value is not a list"}
		}
		if w.d.ArrayIn {
			// Homogeneous lists bind as a single array argument; mixed
			// lists fall through to the expanded form the driver can
			// always encode.
			if typed, ok := typedSlice(values); ok {
				return fmt.Sprintf("%s = ANY(%s)", QuoteIdent(c.Field), w.bind(typed)), nil
			}
		}
		if len(values) == 0 {
			// Membership in the empty set matches nothing.
			return "1 = 0", nil
		}
		holders := make([]string, len(values))
		for i, v := range values {
			holders[i] = w.bind(v)
		}
		return fmt.Sprintf("%s IN (%s)", QuoteIdent(c.Field), strings.Join(holders, ", ")), nil
	case OpOr:
		var parts []string
		for _, nested := range c.Group {
			clause, err := w.render(nested)
			if err != nil {
				return "", err
			}
			parts = append(parts, clause)
		}
		return "(" + strings.Join(parts, " OR ") + ")", nil
	default:
		return "", &UnsupportedConditionError{Op: c.Op, Reason: "unknown operator"}
	}
}

// typedSlice converts a homogeneous []any into a concrete slice the Postgres
// driver can encode as an array parameter.
func typedSlice(values []any) (any, bool) {
	if len(values) == 0 {
		return []string{}, true
	}
	switch values[0].(type) {
	case string:
		out := make([]string, len(values))
		for i, v := range values {
			s, ok := v.(string)
			if !ok {
				return nil, false
			}
			out[i] = s
		}
		return out, true
	case int:
		out := make([]int64, len(values))
		for i, v := range values {
			n, ok := v.(int)
			if !ok {
				return nil, false
			}
			out[i] = int64(n)
		}
		return out, true
	case int64:
		out := make([]int64, len(values))
		for i, v := range values {
			n, ok := v.(int64)
			if !ok {
				return nil, false
			}
			out[i] = n
		}
		return out, true
	case float64:
		out := make([]float64, len(values))
		for i, v := range values {
			f, ok := v.(float64)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	default:
		return nil, false
	}
}
