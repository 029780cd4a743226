// internal/models/report.go
package models

import "encoding/json"

// Bucket is one aggregation group as returned by the datastore.
// Key stays raw so strings and numbers pass through unchanged.
type Bucket struct {
	KeyAsString string          `json:"key_as_string,omitempty"`
	Key         json.RawMessage `json:"key"`
	DocCount    int64           `json:"doc_count"`
}

// AlertsSummary is the body of GET /api/alerts.
type AlertsSummary struct {
	Last24h int64 `json:"last24h"`
	AllTime int64 `json:"allTime"`
}

// CriticalCount is the body of GET /api/alerts/critical.
type CriticalCount struct {
	Critical int64 `json:"critical"`
}

// Health is the body of the liveness and readiness probes.
type Health struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// CountResponse is the subset of a _count answer the reports read.
type CountResponse struct {
	Count int64 `json:"count"`
}

// SearchResponse is the subset of a _search answer the reports read.
type SearchResponse struct {
	Aggregations map[string]AggregationResult `json:"aggregations"`
}

type AggregationResult struct {
	Buckets []Bucket `json:"buckets"`
}
