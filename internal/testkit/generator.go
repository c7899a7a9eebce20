package testkit

import (
	"math"
	"math/rand"

	"fastfisher/domain/stats"
)

// Distribution selects how cell counts are drawn.
type Distribution string

const (
	// LogUniform draws ⌊10^(u·decades)⌋−1 with u uniform on [0,1), so every order
	// of magnitude up to 10^decades is equally represented.
	LogUniform Distribution = "log-uniform"
	// Uniform draws integers uniformly from [0, Max].
	Uniform Distribution = "uniform"
)

// GeneratorConfig configures the random table generator
type GeneratorConfig struct {
	Distribution Distribution `json:"distribution"`
	Decades      float64      `json:"decades"` // LogUniform only
	Max          int          `json:"max"`     // Uniform only
	Seed         int64        `json:"seed"`
}

// DefaultGeneratorConfig returns the log-uniform sampling used for reference
// agreement runs: four decades, cells in [0, 9999].
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Distribution: LogUniform,
		Decades:      4,
		Max:          160,
		Seed:         1,
	}
}

// Generator produces reproducible random contingency tables. It is not safe for
// concurrent use.
type Generator struct {
	config GeneratorConfig
	rng    *rand.Rand
}

// NewGenerator creates a generator seeded from config.Seed
func NewGenerator(config GeneratorConfig) *Generator {
	if config.Distribution == "" {
		config.Distribution = LogUniform
	}
	if config.Decades <= 0 {
		config.Decades = 4
	}
	if config.Max < 0 {
		config.Max = 0
	}
	return &Generator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Config returns the effective configuration.
func (g *Generator) Config() GeneratorConfig {
	return g.config
}

// Table draws one table.
func (g *Generator) Table() stats.ContingencyTable {
	return stats.ContingencyTable{A: g.cell(), B: g.cell(), C: g.cell(), D: g.cell()}
}

// Tables draws n tables.
func (g *Generator) Tables(n int) []stats.ContingencyTable {
	out := make([]stats.ContingencyTable, n)
	for i := range out {
		out[i] = g.Table()
	}
	return out
}

func (g *Generator) cell() int {
	if g.config.Distribution == Uniform {
		return g.rng.Intn(g.config.Max + 1)
	}
	return int(math.Pow(10, g.rng.Float64()*g.config.Decades)) - 1
}
