package fleet

import (
	"strconv"
	"time"

	"github.com/fleetstack-labs/fleetwatch/pkg/query"
)

// The two drivers disagree on scan types for the same schema: the sqlite
// driver hands back int64/float64/string depending on column affinity, pgx
// returns typed values including time.Time. These helpers absorb the
// difference so domain conversions stay flat.

// Int64 reads an integer column from a record.
func Int64(rec query.Record, key string) int64 {
	switch v := rec[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

// Float64 reads a numeric column from a record.
func Float64(rec query.Record, key string) float64 {
	switch v := rec[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

// String reads a text column from a record.
func String(rec query.Record, key string) string {
	switch v := rec[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// Time reads a timestamp column from a record. Text representations try the
// formats the two backends actually emit.
func Time(rec query.Record, key string) time.Time {
	switch v := rec[key].(type) {
	case time.Time:
		return v.UTC()
	case string:
		for _, layout := range []string{
			time.RFC3339Nano,
			time.RFC3339,
			"2006-01-02 15:04:05.999999999-07:00",
			"2006-01-02 15:04:05",
			"2006-01-02",
		} {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Time{}
}
