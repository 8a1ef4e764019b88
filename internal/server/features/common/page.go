package common

import (
	"net/http"

	"github.com/fleetstack-labs/fleetwatch/pkg/query"
)

// DefaultPageSize bounds list endpoints that do not ask for a limit.
const DefaultPageSize = 50

// MaxPageSize caps the page size a client may request.
const MaxPageSize = 500

// ApplyPage reads limit, offset, order_by and order query parameters into
// the descriptor and always requests a total count for the pagination UI.
// order_by is checked against the feature's sortable column set; unknown
// columns are ignored rather than passed through to the backend.
func ApplyPage(r *http.Request, q *query.Query, sortable map[string]bool) {
	q.Limit = QueryInt(r, "limit", DefaultPageSize)
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	q.Offset = QueryInt(r, "offset", 0)
	q.WithCount = true

	if col := r.URL.Query().Get("order_by"); col != "" && sortable[col] {
		q.OrderBy = &query.Order{
			Column: col,
			Desc:   r.URL.Query().Get("order") == "desc",
		}
	}
}
