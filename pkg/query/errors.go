package query

import (
	"errors"
	"fmt"
)

// ErrNoConditions is returned when update or delete is called with an empty
// condition chain. Requiring at least one condition keeps a malformed caller
// from rewriting a whole table.
var ErrNoConditions = errors.New("update/delete requires at least one condition")

// ErrEmptyPatch is returned when update is called with no columns to set.
var ErrEmptyPatch = errors.New("update requires a non-empty patch")

// UnsupportedConditionError reports a condition shape the translators cannot
// map to a query.
type UnsupportedConditionError struct {
	Op     Op
	Reason string
}

func (e *UnsupportedConditionError) Error() string {
	return fmt.Sprintf("unsupported condition %q: %s", e.Op, e.Reason)
}

// NonEqualityConditionError reports a non-equality operator passed to an
// operation that only accepts equality conditions (update, delete).
type NonEqualityConditionError struct {
	Field string
	Op    Op
}

func (e *NonEqualityConditionError) Error() string {
	return fmt.Sprintf("condition on %q uses operator %q: update and delete accept equality only", e.Field, e.Op)
}
