package query

// Op identifies a condition operator.
type Op int

const (
	// OpEq matches rows where the field equals the value.
	OpEq Op = iota
	// OpIn matches rows where the field is one of a list of values.
	OpIn
	// OpGt, OpGte, OpLt, OpLte are numeric/lexicographic comparisons.
	OpGt
	OpGte
	OpLt
	OpLte
	// OpLike is a case-insensitive substring match.
	OpLike
	// OpOr groups nested conditions into a disjunction.
	OpOr
)

// String returns the operator name as used in logs and errors.
func (o Op) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpIn:
		return "in"
	case OpGt:
		return "gt"
	case OpGte:
		return "gte"
	case OpLt:
		return "lt"
	case OpLte:
		return "lte"
	case OpLike:
		return "like"
	case OpOr:
		return "or"
	default:
		return "unknown"
	}
}

// Condition is a single filter clause. Build values with the constructor
// functions below; the zero value of Op is equality, so a bare
// Condition{Field: "x", Value: v} still means x = v.
//
// For OpIn the value is a []any of candidates. For OpOr the Group field
// holds the nested conditions and Field/Value are unused.
type Condition struct {
	Field string
	Op    Op
	Value any
	Group []Condition
}

// Eq matches rows where field equals value.
func Eq(field string, value any) Condition {
	return Condition{Field: field, Op: OpEq, Value: value}
}

// In matches rows where field is one of values.
func In(field string, values ...any) Condition {
	return Condition{Field: field, Op: OpIn, Value: values}
}

// Gt matches rows where field is greater than value.
func Gt(field string, value any) Condition {
	return Condition{Field: field, Op: OpGt, Value: value}
}

// Gte matches rows where field is greater than or equal to value.
func Gte(field string, value any) Condition {
	return Condition{Field: field, Op: OpGte, Value: value}
}

// Lt matches rows where field is less than value.
func Lt(field string, value any) Condition {
	return Condition{Field: field, Op: OpLt, Value: value}
}

// Lte matches rows where field is less than or equal to value.
func Lte(field string, value any) Condition {
	return Condition{Field: field, Op: OpLte, Value: value}
}

// Like matches rows where field contains substr, ignoring case.
func Like(field, substr string) Condition {
	return Condition{Field: field, Op: OpLike, Value: substr}
}

// Or groups conditions into a disjunction. The group renders as a single
// parenthesized clause ANDed with its siblings, so
// Where: []Condition{Eq("status", "open"), Or(Gt("speed", 120), Eq("severity", "high"))}
// means status = 'open' AND (speed > 120 OR severity = 'high').
func Or(conds ...Condition) Condition {
	return Condition{Op: OpOr, Group: conds}
}

// ValidateWhere checks that every condition in the chain is renderable.
// When equalityOnly is set (update and delete), any operator other than
// plain equality is rejected.
func ValidateWhere(where []Condition, equalityOnly bool) error {
	for _, c := range where {
		if equalityOnly && c.Op != OpEq {
			return &NonEqualityConditionError{Field: c.Field, Op: c.Op}
		}
		switch c.Op {
		case OpEq, OpGt, OpGte, OpLt, OpLte, OpLike:
			if c.Field == "" {
				return &UnsupportedConditionError{Op: c.Op, Reason: "missing field"}
			}
		case OpIn:
			if c.Field == "" {
				return &UnsupportedConditionError{Op: c.Op, Reason: "missing field"}
			}
			if _, ok := c.Value.([]any); !ok {
				return &UnsupportedConditionError{Op: c.Op, Reason: "value is not a list"}
			}
		case OpOr:
			if len(c.Group) == 0 {
				return &UnsupportedConditionError{Op: c.Op, Reason: "empty group"}
			}
			if err := ValidateWhere(c.Group, false); err != nil {
				return err
			}
		default:
			return &UnsupportedConditionError{Op: c.Op, Reason: "unknown operator"}
		}
	}
	return nil
}
