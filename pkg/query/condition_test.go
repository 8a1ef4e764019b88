package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	assert.Equal(t, Condition{Field: "status", Op: OpEq, Value: "open"}, Eq("status", "open"))
	assert.Equal(t, Condition{Field: "speed", Op: OpGt, Value: 120}, Gt("speed", 120))
	assert.Equal(t, Condition{Field: "speed", Op: OpGte, Value: 120}, Gte("speed", 120))
	assert.Equal(t, Condition{Field: "speed", Op: OpLt, Value: 120}, Lt("speed", 120))
	assert.Equal(t, Condition{Field: "speed", Op: OpLte, Value: 120}, Lte("speed", 120))
	assert.Equal(t, Condition{Field: "name", Op: OpLike, Value: "smith"}, Like("name", "smith"))

	in := In("rule", "speeding", "fuel_anomaly")
	assert.Equal(t, OpIn, in.Op)
	assert.Equal(t, []any{"speeding", "fuel_anomaly"}, in.Value)

	or := Or(Eq("a", 1), Eq("b", 2))
	assert.Equal(t, OpOr, or.Op)
	assert.Len(t, or.Group, 2)
}

func TestZeroOpIsEquality(t *testing.T) {
	// A bare Condition literal without an Op must behave like Eq.
	c := Condition{Field: "id", Value: int64(7)}
	assert.Equal(t, OpEq, c.Op)
	require.NoError(t, ValidateWhere([]Condition{c}, true))
}

func TestValidateWhere(t *testing.T) {
	tests := []struct {
		name         string
		where        []Condition
		equalityOnly bool
		wantErr      bool
	}{
		{name: "nil chain", where: nil, wantErr: false},
		{name: "simple eq", where: []Condition{Eq("status", "open")}, wantErr: false},
		{name: "all comparison ops", where: []Condition{Gt("a", 1), Gte("b", 2), Lt("c", 3), Lte("d", 4), Like("e", "x")}, wantErr: false},
		{name: "in with list", where: []Condition{In("rule", "speeding")}, wantErr: false},
		{name: "in without list", where: []Condition{{Field: "rule", Op: OpIn, Value: "speeding"}}, wantErr: true},
		{name: "missing field", where: []Condition{{Op: OpGt, Value: 1}}, wantErr: true},
		{name: "or group", where: []Condition{Or(Eq("a", 1), Gt("b", 2))}, wantErr: false},
		{name: "empty or group", where: []Condition{Or()}, wantErr: true},
		{name: "invalid nested condition", where: []Condition{Or(Condition{Op: OpIn, Field: "x", Value: 3})}, wantErr: true},
		{name: "equality only accepts eq", where: []Condition{Eq("id", 1)}, equalityOnly: true, wantErr: false},
		{name: "equality only rejects gt", where: []Condition{Gt("id", 1)}, equalityOnly: true, wantErr: true},
		{name: "equality only rejects or", where: []Condition{Or(Eq("a", 1))}, equalityOnly: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWhere(tt.where, tt.equalityOnly)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateWhereErrorTypes(t *testing.T) {
	err := ValidateWhere([]Condition{Gte("risk_score", 50)}, true)
	var neq *NonEqualityConditionError
	require.ErrorAs(t, err, &neq)
	assert.Equal(t, "risk_score", neq.Field)
	assert.Equal(t, OpGte, neq.Op)

	err = ValidateWhere([]Condition{{Field: "rule", Op: OpIn, Value: 42}}, false)
	var unsup *UnsupportedConditionError
	require.ErrorAs(t, err, &unsup)
	assert.Equal(t, OpIn, unsup.Op)
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "eq", OpEq.String())
	assert.Equal(t, "in", OpIn.String())
	assert.Equal(t, "like", OpLike.String())
	assert.Equal(t, "or", OpOr.String())
	assert.Equal(t, "unknown", Op(99).String())
}

func TestSentinelErrors(t *testing.T) {
	assert.True(t, errors.Is(ErrNoConditions, ErrNoConditions))
	assert.NotEmpty(t, ErrEmptyPatch.Error())
}
