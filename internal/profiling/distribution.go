package profiling

import (
	"github.com/montanaflynn/stats"
)

// LatencyDistribution summarises per-call timings in microseconds
type LatencyDistribution struct {
	Samples  int     `json:"samples"`
	Mean     float64 `json:"mean_us"`
	StdDev   float64 `json:"std_dev_us"`
	Min      float64 `json:"min_us"`
	Max      float64 `json:"max_us"`
	Median   float64 `json:"median_us"`
	Q25      float64 `json:"q25_us"`
	Q75      float64 `json:"q75_us"`
	P95      float64 `json:"p95_us"`
	Outliers int     `json:"outliers"` // beyond 1.5 IQR
}

// AnalyzeLatency computes the summary of a set of timings
func AnalyzeLatency(data []float64) (LatencyDistribution, error) {
	d := LatencyDistribution{Samples: len(data)}

	mean, err := stats.Mean(data)
	if err != nil {
		return d, err
	}

	stdDev, err := stats.StandardDeviation(data)
	if err != nil {
		return d, err
	}

	min, err := stats.Min(data)
	if err != nil {
		return d, err
	}

	max, err := stats.Max(data)
	if err != nil {
		return d, err
	}

	median, err := stats.Median(data)
	if err != nil {
		return d, err
	}

	d.Mean, d.StdDev, d.Min, d.Max, d.Median = mean, stdDev, min, max, median

	// percentiles need at least two samples
	if len(data) < 2 {
		d.Q25, d.Q75, d.P95 = median, median, median
		return d, nil
	}

	if d.Q25, err = stats.Percentile(data, 25); err != nil {
		d.Q25 = min
	}
	if d.Q75, err = stats.Percentile(data, 75); err != nil {
		d.Q75 = max
	}
	if d.P95, err = stats.Percentile(data, 95); err != nil {
		d.P95 = max
	}
	d.Outliers = detectOutliers(data, d.Q25, d.Q75)

	return d, nil
}

// detectOutliers identifies outliers using IQR method
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}

	return outlierCount
}
