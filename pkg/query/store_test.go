package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTranslator records which methods were invoked so dispatch can be
// asserted without a database.
type fakeTranslator struct {
	name  string
	calls []string
	err   error
}

func (f *fakeTranslator) Select(_ context.Context, q Query) (*Result, error) {
	f.calls = append(f.calls, "select:"+q.Table)
	if f.err != nil {
		return nil, f.err
	}
	return &Result{Rows: []Record{{"id": int64(1)}}}, nil
}

func (f *fakeTranslator) Insert(_ context.Context, table string, rows []Record, _ bool) (*Result, error) {
	f.calls = append(f.calls, "insert:"+table)
	if f.err != nil {
		return nil, f.err
	}
	return &Result{Rows: rows}, nil
}

func (f *fakeTranslator) Update(_ context.Context, table string, patch Record, _ []Condition, _ bool) (*Result, error) {
	f.calls = append(f.calls, "update:"+table)
	if f.err != nil {
		return nil, f.err
	}
	return &Result{Rows: []Record{patch}}, nil
}

func (f *fakeTranslator) Delete(_ context.Context, table string, _ []Condition) error {
	f.calls = append(f.calls, "delete:"+table)
	return f.err
}

func (f *fakeTranslator) Count(_ context.Context, table string, _ []Condition) (int64, error) {
	f.calls = append(f.calls, "count:"+table)
	return 42, f.err
}

func (f *fakeTranslator) Name() string { return f.name }

func TestStoreDispatchesToSelectedBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("local", func(t *testing.T) {
		local := &fakeTranslator{name: "sqlite"}
		remote := &fakeTranslator{name: "postgres"}
		s := NewStore(BackendLocal, remote, local, nil)

		_, err := s.Select(ctx, Query{Table: "drivers"})
		require.NoError(t, err)
		assert.Equal(t, []string{"select:drivers"}, local.calls)
		assert.Empty(t, remote.calls)
	})

	t.Run("remote", func(t *testing.T) {
		local := &fakeTranslator{name: "sqlite"}
		remote := &fakeTranslator{name: "postgres"}
		s := NewStore(BackendRemote, remote, local, nil)

		_, err := s.Select(ctx, Query{Table: "drivers"})
		require.NoError(t, err)
		assert.Equal(t, []string{"select:drivers"}, remote.calls)
		assert.Empty(t, local.calls)
	})
}

func TestStoreFallsBackWhenRemoteMissing(t *testing.T) {
	ctx := context.Background()
	local := &fakeTranslator{name: "sqlite"}
	s := NewStore(BackendRemote, nil, local, nil)

	res, err := s.Select(ctx, Query{Table: "alerts"})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 1)
	assert.Equal(t, []string{"select:alerts"}, local.calls)
	assert.Equal(t, BackendRemote, s.Backend())
}

func TestStoreSelectValidates(t *testing.T) {
	local := &fakeTranslator{}
	s := NewStore(BackendLocal, nil, local, nil)

	_, err := s.Select(context.Background(), Query{
		Table: "drivers",
		Where: []Condition{{Field: "rule", Op: OpIn, Value: "not-a-list"}},
	})
	var unsup *UnsupportedConditionError
	require.ErrorAs(t, err, &unsup)
	assert.Empty(t, local.calls, "invalid queries must not reach the translator")
}

func TestStoreInsert(t *testing.T) {
	ctx := context.Background()
	local := &fakeTranslator{}
	s := NewStore(BackendLocal, nil, local, nil)

	t.Run("empty input is a no-op", func(t *testing.T) {
		rows, err := s.Insert(ctx, "drivers", nil)
		require.NoError(t, err)
		assert.Nil(t, rows)
		assert.Empty(t, local.calls)
	})

	t.Run("rows echoed back", func(t *testing.T) {
		rows, err := s.Insert(ctx, "drivers", []Record{{"name": "Ada"}, {"name": "Lin"}})
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("insert one returns a single record", func(t *testing.T) {
		row, err := s.InsertOne(ctx, "drivers", Record{"name": "Ada"})
		require.NoError(t, err)
		assert.Equal(t, "Ada", row["name"])
	})
}

func TestStoreUpdateGuards(t *testing.T) {
	ctx := context.Background()
	local := &fakeTranslator{}
	s := NewStore(BackendLocal, nil, local, nil)

	_, err := s.Update(ctx, "drivers", nil, []Condition{Eq("id", 1)})
	assert.ErrorIs(t, err, ErrEmptyPatch)

	_, err = s.Update(ctx, "drivers", Record{"status": "inactive"}, nil)
	assert.ErrorIs(t, err, ErrNoConditions)

	_, err = s.Update(ctx, "drivers", Record{"status": "inactive"}, []Condition{Gte("risk_score", 50)})
	var neq *NonEqualityConditionError
	assert.ErrorAs(t, err, &neq)

	assert.Empty(t, local.calls)

	rows, err := s.Update(ctx, "drivers", Record{"status": "inactive"}, []Condition{Eq("id", int64(1))})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestStoreDeleteGuards(t *testing.T) {
	ctx := context.Background()
	local := &fakeTranslator{}
	s := NewStore(BackendLocal, nil, local, nil)

	err := s.Delete(ctx, "alerts", nil)
	assert.ErrorIs(t, err, ErrNoConditions)

	err = s.Delete(ctx, "alerts", []Condition{Like("details", "x")})
	var neq *NonEqualityConditionError
	assert.ErrorAs(t, err, &neq)

	require.NoError(t, s.Delete(ctx, "alerts", []Condition{Eq("id", "abc")}))
	assert.Equal(t, []string{"delete:alerts"}, local.calls)
}

func TestStoreCount(t *testing.T) {
	local := &fakeTranslator{}
	s := NewStore(BackendLocal, nil, local, nil)

	n, err := s.Count(context.Background(), "trips", []Condition{Gt("max_speed_kmh", 120)})
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

func TestStoreWrapsTranslatorErrors(t *testing.T) {
	boom := errors.New("connection reset")
	local := &fakeTranslator{err: boom}
	s := NewStore(BackendLocal, nil, local, nil)
	ctx := context.Background()

	_, err := s.Select(ctx, Query{Table: "trips"})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "select trips")

	_, err = s.Insert(ctx, "trips", []Record{{"id": 1}})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "insert trips")

	err = s.Delete(ctx, "trips", []Condition{Eq("id", 1)})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "delete trips")
}

func TestBackendString(t *testing.T) {
	assert.Equal(t, "local", BackendLocal.String())
	assert.Equal(t, "remote", BackendRemote.String())
}
