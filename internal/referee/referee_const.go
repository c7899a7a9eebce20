package referee

// referee_const.go
//
// Thresholds used when judging the engine against an oracle. Agreement is
// |got − want| <= ABS_TOLERANCE + REL_TOLERANCE·|want|, the same shape as
// math.isclose with an absolute floor.

const (
	// SIGNIFICANCE_ALPHA: p-values below this count as significant in summaries.
	SIGNIFICANCE_ALPHA = 0.05

	// ABS_TOLERANCE: absolute floor for agreement; covers p-values that
	// underflow to zero in one implementation and not the other.
	ABS_TOLERANCE = 1e-9

	// REL_TOLERANCE: relative agreement bound.
	REL_TOLERANCE = 1e-6

	// RATIONAL_MAX_TOTAL: largest n the exact oracle accepts by default. The
	// cost of one table grows with n² digit operations.
	RATIONAL_MAX_TOTAL = 20000

	// DOCUMENTED_SLACK: how much farther from the exact value the engine may be
	// than the float reference and still count as "at least as close".
	DOCUMENTED_SLACK = 1e-12

	// DEFAULT_WORKERS: concurrent comparisons when Options.Workers is unset.
	DEFAULT_WORKERS = 4
)
