package referee

import (
	"sort"

	"fastfisher/domain/stats"
)

// RankReport describes where the engine's ordering of p-values departs from
// the reference ordering.
type RankReport struct {
	Ranked        int `json:"ranked"`        // comparisons considered
	Disagreements int `json:"disagreements"` // tables whose ranks differ
	// FirstDisagreement is the smallest reference rank at which the orderings
	// differ, or 0 when they agree everywhere.
	FirstDisagreement int                    `json:"first_disagreement"`
	EngineRank        int                    `json:"engine_rank"`
	Table             stats.ContingencyTable `json:"table"`
}

// RankAgreement ranks the engine and reference p-values for alt (ties share the
// lowest rank) and reports the first rank where the two orderings differ.
// Tables where both p-values are essentially 1 carry no ordering and are skipped.
func RankAgreement(results []Comparison, alt stats.Alternative) RankReport {
	var kept []Comparison
	for _, c := range results {
		if c.Skipped {
			continue
		}
		if c.Engine.Get(alt)+c.Reference.Get(alt) >= 1.999999 {
			continue
		}
		kept = append(kept, c)
	}

	engine := make([]float64, len(kept))
	reference := make([]float64, len(kept))
	for i, c := range kept {
		engine[i] = c.Engine.Get(alt)
		reference[i] = c.Reference.Get(alt)
	}
	engineRanks := minRanks(engine)
	referenceRanks := minRanks(reference)

	report := RankReport{Ranked: len(kept)}
	for i := range kept {
		if engineRanks[i] == referenceRanks[i] {
			continue
		}
		report.Disagreements++
		if report.FirstDisagreement == 0 || referenceRanks[i] < report.FirstDisagreement {
			report.FirstDisagreement = referenceRanks[i]
			report.EngineRank = engineRanks[i]
			report.Table = kept[i].Table
		}
	}
	return report
}

// minRanks assigns 1 + the number of strictly smaller values.
func minRanks(values []float64) []int {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	ranks := make([]int, len(values))
	for i, v := range values {
		ranks[i] = sort.SearchFloat64s(sorted, v) + 1
	}
	return ranks
}
