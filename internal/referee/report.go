package referee

import (
	"fmt"
	"strings"
)

// Markdown renders the summary as a two-column table.
func (s *Summary) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "### Comparison %s\n\n", s.RunID)
	b.WriteString("| metric | value |\n|:--|--:|\n")
	row := func(name, format string, v any) {
		fmt.Fprintf(&b, "| %s | "+format+" |\n", name, v)
	}
	row("oracle", "%s", s.Oracle)
	row("alternative", "%s", s.Alternative)
	row("fingerprint", "`%s`", s.Fingerprint)
	row("samples", "%d", s.Samples)
	row("skipped", "%d", s.Skipped)
	row("failures", "%d", s.Failures)
	row("fail ratio", "%.3g", s.FailRatio)
	row("significant ratio", "%.3g", s.SignificantRatio)
	row("min p among failures", "%.6g", s.NotIdenticalMinP)
	row("mean diff", "%.3g", s.MeanDiff)
	row("p99 diff", "%.3g", s.P99Diff)
	row("max diff", "%.3g", s.MaxDiff)
	row("duration", "%s", s.Duration)
	return b.String()
}

// DocumentedMarkdown renders CheckDocumented results, one row per table.
func DocumentedMarkdown(results []DocumentedResult) string {
	var b strings.Builder
	b.WriteString("| table | engine | reference | exact | agree | at least as close | note |\n")
	b.WriteString("|:--|--:|--:|--:|:-:|:-:|:--|\n")
	for _, r := range results {
		fmt.Fprintf(&b, "| %s | %.17g | %.17g | %.17g | %s | %s | %s |\n",
			r.Table, r.Engine, r.Reference, r.Exact, yesNo(r.Agree), yesNo(r.AtLeastAsClose), r.Note)
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
