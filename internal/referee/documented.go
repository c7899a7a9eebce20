package referee

import (
	"context"
	"math"

	"fastfisher/domain/core"
	"fastfisher/domain/stats"
	"fastfisher/internal/testkit"
)

// DocumentedResult reports one fixture table on the two-sided alternative
type DocumentedResult struct {
	Table     stats.ContingencyTable `json:"table"`
	Note      string                 `json:"note"`
	Engine    float64                `json:"engine"`
	Reference float64                `json:"reference"`
	Exact     float64                `json:"exact"`
	Agree     bool                   `json:"agree"`
	// AtLeastAsClose holds when the engine is no farther from the exact value
	// than the reference, up to DOCUMENTED_SLACK.
	AtLeastAsClose bool  `json:"at_least_as_close"`
	Disagreement   error `json:"-"`
}

// CheckDocumented evaluates the documented disagreement tables against the
// referee's oracle and the strict exact value.
func (r *Referee) CheckDocumented(ctx context.Context) ([]DocumentedResult, error) {
	docs, err := testkit.DocumentedDisagreements()
	if err != nil {
		return nil, err
	}

	exact := RationalOracle{}
	out := make([]DocumentedResult, 0, len(docs))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ref, err := r.oracle.PValues(doc.Table)
		if err != nil {
			return nil, err
		}
		want, err := exact.PValues(doc.Table)
		if err != nil {
			return nil, err
		}

		res := DocumentedResult{
			Table:     doc.Table,
			Note:      doc.Note,
			Engine:    r.engine.PValue(doc.Table, stats.TwoSided),
			Reference: ref.TwoSided,
			Exact:     want.TwoSided,
		}
		res.Agree = r.close(res.Engine, res.Reference)
		res.AtLeastAsClose = math.Abs(res.Engine-res.Exact) <= math.Abs(res.Reference-res.Exact)+DOCUMENTED_SLACK
		if !res.Agree {
			res.Disagreement = core.NewDisagreementError(doc.Table.String(), res.Engine, res.Reference)
			r.opts.Logger.Warn("documented table disagrees", "table", doc.Table.String(), "error", res.Disagreement)
		}
		out = append(out, res)
	}
	return out, nil
}
