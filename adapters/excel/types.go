package excel

import (
	"fastfisher/domain/stats"
)

// LabeledTable is one input row: a table plus its optional label and the
// 1-based sheet row it came from.
type LabeledTable struct {
	Row   int
	Label string
	Table stats.ContingencyTable
}

// BatchResult is one output row of a batch run
type BatchResult struct {
	LabeledTable
	PValues   stats.PValues
	OddsRatio float64
}

// resultHeader is the column layout written by WriteResults.
var resultHeader = []string{"label", "a", "b", "c", "d", "odds_ratio", "p_less", "p_greater", "p_two_sided"}
