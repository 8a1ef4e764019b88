package common

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetstack-labs/fleetwatch/pkg/query"
)

func TestApplyPage(t *testing.T) {
	sortable := map[string]bool{"id": true, "name": true}

	t.Run("defaults", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/drivers", nil)
		var q query.Query
		ApplyPage(r, &q, sortable)
		assert.Equal(t, DefaultPageSize, q.Limit)
		assert.Zero(t, q.Offset)
		assert.True(t, q.WithCount)
		assert.Nil(t, q.OrderBy)
	})

	t.Run("explicit page and order", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/drivers?limit=10&offset=30&order_by=name&order=desc", nil)
		var q query.Query
		ApplyPage(r, &q, sortable)
		assert.Equal(t, 10, q.Limit)
		assert.Equal(t, 30, q.Offset)
		require.NotNil(t, q.OrderBy)
		assert.Equal(t, "name", q.OrderBy.Column)
		assert.True(t, q.OrderBy.Desc)
	})

	t.Run("limit capped", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/drivers?limit=10000", nil)
		var q query.Query
		ApplyPage(r, &q, sortable)
		assert.Equal(t, MaxPageSize, q.Limit)
	})

	t.Run("unknown sort column ignored", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/drivers?order_by=password", nil)
		var q query.Query
		ApplyPage(r, &q, sortable)
		assert.Nil(t, q.OrderBy)
	})

	t.Run("malformed numbers fall back", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/drivers?limit=ten&offset=x", nil)
		var q query.Query
		ApplyPage(r, &q, sortable)
		assert.Equal(t, DefaultPageSize, q.Limit)
		assert.Zero(t, q.Offset)
	})
}
