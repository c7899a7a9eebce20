package profiling

import (
	"fmt"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"fastfisher/domain/core"
)

// Report is the outcome of a benchmark run
type Report struct {
	ID              core.BenchID   `json:"id"`
	StartedAt       core.Timestamp `json:"started_at"`
	Duration        time.Duration  `json:"duration"`
	Iterations      int            `json:"iterations"`
	Implementations []string       `json:"implementations"`
	Rows            []Row          `json:"rows"`
}

// Markdown renders the comparative table: one row per case, mean microseconds
// per call for each implementation.
func (r *Report) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "| %6s | %6s | %6s | %6s | %12s |", "a", "b", "c", "d", "test type")
	for _, name := range r.Implementations {
		fmt.Fprintf(&b, " %12s |", name)
	}
	b.WriteString("\n|-------:|-------:|-------:|-------:|-------------:|")
	for range r.Implementations {
		b.WriteString("-------------:|")
	}
	b.WriteString("\n")

	for _, row := range r.Rows {
		t := row.Case.Table
		fmt.Fprintf(&b, "| %6d | %6d | %6d | %6d | %12s |", t.A, t.B, t.C, t.D, row.Case.Alternative.Tail())
		for _, timing := range row.Timings {
			fmt.Fprintf(&b, " %9.2f us |", timing.Latency.Mean)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// HTML renders the Markdown table as an HTML fragment.
func (r *Report) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(r.Markdown()))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}

// Timing returns the measurement of impl on the case at index row.
func (r *Report) Timing(row int, impl string) (Timing, bool) {
	if row < 0 || row >= len(r.Rows) {
		return Timing{}, false
	}
	for _, t := range r.Rows[row].Timings {
		if t.Implementation == impl {
			return t, true
		}
	}
	return Timing{}, false
}
