package senses

import (
	"context"
	"math"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"

	"fastfisher/adapters/stats/fisher"
)

// SenseResult represents the output of a single statistical sense
type SenseResult struct {
	SenseName   string                 `json:"sense_name"`
	EffectSize  float64                `json:"effect_size"`
	PValue      float64                `json:"p_value"`
	Confidence  float64                `json:"confidence"`  // 0-1 confidence score
	Signal      string                 `json:"signal"`      // "weak", "moderate", "strong", "very_strong"
	Description string                 `json:"description"` // Human-readable explanation
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// StatisticalSense defines the interface for each statistical sense
type StatisticalSense interface {
	Name() string
	Description() string
	Analyze(ctx context.Context, x, y []float64, varX, varY string) SenseResult
}

// SenseEngine runs the 2×2 association senses over paired series
type SenseEngine struct {
	senses []StatisticalSense
	sem    *semaphore.Weighted
}

// NewSenseEngine creates a sense engine backed by the given Fisher engine
// (fisher.Default when nil). At most maxConcurrent senses run at once across all
// callers; values <= 0 select GOMAXPROCS.
func NewSenseEngine(engine *fisher.Engine, maxConcurrent int) *SenseEngine {
	if engine == nil {
		engine = fisher.Default
	}
	if maxConcurrent <= 0 {
		maxConcurrent = runtime.GOMAXPROCS(0)
	}
	return &SenseEngine{
		senses: []StatisticalSense{
			NewFisherExactSense(engine),
			NewChiSquareSense(),
		},
		sem: semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// AnalyzeAll runs every sense concurrently and returns results in ListSenses
// order. Senses that cannot start before ctx is done report a cancelled result.
func (e *SenseEngine) AnalyzeAll(ctx context.Context, x, y []float64, varX, varY string) []SenseResult {
	results := make([]SenseResult, len(e.senses))

	var wg sync.WaitGroup
	for i, sense := range e.senses {
		err := ctx.Err()
		if err == nil {
			err = e.sem.Acquire(ctx, 1)
		}
		if err != nil {
			results[i] = cancelledResult(sense.Name(), err)
			continue
		}
		wg.Add(1)
		go func(sense StatisticalSense, idx int) {
			defer wg.Done()
			defer e.sem.Release(1)
			results[idx] = sense.Analyze(ctx, x, y, varX, varY)
		}(sense, i)
	}
	wg.Wait()

	return results
}

// AnalyzeSingle runs a specific sense by name
func (e *SenseEngine) AnalyzeSingle(ctx context.Context, senseName string, x, y []float64, varX, varY string) (SenseResult, bool) {
	for _, sense := range e.senses {
		if sense.Name() == senseName {
			return sense.Analyze(ctx, x, y, varX, varY), true
		}
	}
	return SenseResult{}, false
}

// ListSenses returns all available sense names
func (e *SenseEngine) ListSenses() []string {
	names := make([]string, len(e.senses))
	for i, sense := range e.senses {
		names[i] = sense.Name()
	}
	return names
}

func cancelledResult(name string, err error) SenseResult {
	return insufficientResult(name, "Analysis cancelled: "+err.Error())
}

// insufficientResult is a null result: nothing detected, nothing measured.
func insufficientResult(name, why string) SenseResult {
	return SenseResult{SenseName: name, PValue: 1.0, Signal: signalLevels[0], Description: why}
}

var signalLevels = [...]string{"weak", "moderate", "strong", "very_strong"}

// signalCutoffs bound each level's |effect| from above. Fisher effects are
// |ln OR| (1.5, 2.7 and 7.4 fold odds), chi-square effects are |phi|.
var signalCutoffs = map[string][3]float64{
	"fisher_exact": {0.4, 1.0, 2.0},
	"chi_square":   {0.1, 0.3, 0.5},
}

func classifySignal(effectSize float64, senseType string) string {
	cutoffs, ok := signalCutoffs[senseType]
	if !ok {
		cutoffs = [3]float64{0.3, 0.6, math.Inf(1)}
	}
	abs := math.Abs(effectSize)
	for i, c := range cutoffs {
		if abs < c {
			return signalLevels[i]
		}
	}
	return signalLevels[len(signalLevels)-1]
}

// calculateConfidence maps p onto [0, 0.99]: 0.33 per decade, capped at p=0.001.
func calculateConfidence(pValue float64) float64 {
	switch {
	case math.IsNaN(pValue) || pValue >= 1:
		return 0
	case pValue <= 0:
		return 0.99
	}
	return math.Min(0.99, -math.Log10(pValue)*0.33)
}
