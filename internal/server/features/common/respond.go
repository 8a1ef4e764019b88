// Package common holds helpers shared by the API feature packages.
package common

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Envelope is the uniform JSON response shape: data plus an optional total
// match count for paginated lists.
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Count   *int64 `json:"count,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// JSON writes a success envelope.
func JSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, Envelope{Data: data, Success: true})
}

// JSONCount writes a success envelope carrying a pagination total.
func JSONCount(w http.ResponseWriter, status int, data any, count int64) {
	writeEnvelope(w, status, Envelope{Data: data, Count: &count, Success: true})
}

// Fail writes an error envelope. The route layer owns user-facing wording;
// backend errors arrive here unchanged.
func Fail(w http.ResponseWriter, status int, err error) {
	writeEnvelope(w, status, Envelope{Success: false, Error: err.Error()})
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// QueryInt reads an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func QueryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// QueryInt64 reads an int64 query parameter; ok reports presence and
// well-formedness.
func QueryInt64(r *http.Request, name string) (int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// QueryFloat reads a float query parameter; ok reports presence and
// well-formedness.
func QueryFloat(r *http.Request, name string) (float64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
