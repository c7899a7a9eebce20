package api

import (
	"math"

	"fastfisher/domain/stats"
)

// maxBatchTables bounds the number of tables accepted by one batch request.
const maxBatchTables = 10000

const batchSupportFactor = 8

// TestResponse is returned by GET /v1/fisher and for each batch entry
type TestResponse struct {
	Label     string        `json:"label,omitempty"`
	Table     [][]int       `json:"table"`
	PValues   stats.PValues `json:"p_values"`
	OddsRatio any           `json:"odds_ratio"` // number, or "inf"/"nan"
}

// ExactResponse mirrors the (odds ratio, p-value) pair of the compatibility call
type ExactResponse struct {
	Alternative string  `json:"alternative"`
	OddsRatio   any     `json:"odds_ratio"`
	PValue      float64 `json:"p_value"`
}

// BatchResponse wraps the results of POST /v1/fisher/batch
type BatchResponse struct {
	Results []TestResponse `json:"results"`
	Count   int            `json:"count"`
}

// ErrorResponse is the body of every 4xx/5xx reply
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func newTestResponse(label string, t stats.ContingencyTable, p stats.PValues) TestResponse {
	return TestResponse{
		Label:     label,
		Table:     t.Matrix(),
		PValues:   p,
		OddsRatio: jsonFloat(t.OddsRatio()),
	}
}

// jsonFloat keeps finite values numeric; encoding/json rejects NaN and Inf.
func jsonFloat(v float64) any {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	default:
		return v
	}
}
