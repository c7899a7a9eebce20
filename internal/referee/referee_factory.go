package referee

import (
	"fmt"
	"strings"
)

// OracleConfig describes one selectable oracle
type OracleConfig struct {
	Name        string
	Description string
}

// GetOracleByName returns an oracle for a command-line or config selection.
// maxTotal bounds the exact oracle; zero selects RATIONAL_MAX_TOTAL.
func GetOracleByName(name string, maxTotal int) (Oracle, error) {
	if maxTotal <= 0 {
		maxTotal = RATIONAL_MAX_TOTAL
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rational", "exact", "big":
		return RationalOracle{MaxTotal: maxTotal}, nil
	case "rational-tolerant", "exact-tolerant":
		return RationalOracle{MaxTotal: maxTotal, Tolerance: defaultOracleTolerance}, nil
	case "log-binomial", "logbinomial", "gonum", "float":
		return LogBinomialOracle{}, nil
	default:
		return nil, fmt.Errorf("unknown oracle %q", name)
	}
}

// GetOracleConfigs lists the selectable oracles
func GetOracleConfigs() []OracleConfig {
	return []OracleConfig{
		{Name: "rational", Description: "exact big-integer weights, strict two-sided rule"},
		{Name: "rational-tolerant", Description: "exact big-integer weights, 1+1e-7 two-sided rule"},
		{Name: "log-binomial", Description: "float log binomial coefficients, 1+1e-7 two-sided rule"},
	}
}
