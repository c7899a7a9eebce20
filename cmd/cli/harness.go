package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"fastfisher/adapters/excel"
	"fastfisher/adapters/stats/fisher"
	"fastfisher/domain/stats"
	"fastfisher/internal/config"
	"fastfisher/internal/container"
	"fastfisher/internal/errors"
	"fastfisher/internal/profiling"
	"fastfisher/internal/referee"
	"fastfisher/internal/testkit"
)

func newCompareCmd(setup setupFunc) *cobra.Command {
	var (
		samples     int
		seed        int64
		oracleName  string
		alternative string
		uniformMax  int
		strict      bool
		save        bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the engine with a reference oracle on random tables",
		Long: `Draw random tables and compare all three p-values with an oracle.

Cells are log-uniform over COMPARE_DECADES orders of magnitude unless
--uniform-max is given. Flags override COMPARE_* settings.

Example: fastfisher compare --samples 100000 --seed 7 --oracle rational-tolerant`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup()
			if err != nil {
				return err
			}
			cfg := c.Config.Compare
			if !cmd.Flags().Changed("samples") {
				samples = cfg.Samples
			}
			if !cmd.Flags().Changed("seed") {
				seed = cfg.Seed
			}
			if oracleName == "" {
				oracleName = cfg.Oracle
			}

			alt, err := stats.ParseAlternative(alternative)
			if err != nil {
				return err
			}
			oracle, err := referee.GetOracleByName(oracleName, cfg.OracleMaxN)
			if err != nil {
				return err
			}

			gen := testkit.GeneratorConfig{Distribution: testkit.LogUniform, Decades: cfg.Decades, Seed: seed}
			if uniformMax > 0 {
				gen.Distribution = testkit.Uniform
				gen.Max = uniformMax
			}
			tables := testkit.NewGenerator(gen).Tables(samples)

			r := referee.New(c.Engine, oracle, referee.Options{
				Alternative:  alt,
				AbsTolerance: cfg.AbsTolerance,
				RelTolerance: cfg.RelTolerance,
				Workers:      cfg.Workers,
				Logger:       c.Logger,
			})
			summary, results, err := r.Compare(cmd.Context(), tables)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(summary); err != nil {
					return err
				}
			} else {
				printComparison(out, summary, results)
			}

			if save {
				if err := withStore(cmd, c, func(s *container.Store) error {
					return s.Runs.Save(cmd.Context(), summary)
				}); err != nil {
					return err
				}
				// keep stdout valid JSON
				notice := out
				if asJSON {
					notice = cmd.ErrOrStderr()
				}
				fmt.Fprintf(notice, "saved run %s\n", summary.RunID)
			}

			if strict && summary.Failures > 0 {
				return errors.ReferenceMismatch(fmt.Errorf("%d of %d tables disagree with %s", summary.Failures, summary.Samples, summary.Oracle))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&samples, "samples", 0, "Number of random tables (default COMPARE_SAMPLES)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (default COMPARE_SEED)")
	cmd.Flags().StringVar(&oracleName, "oracle", "", "Reference oracle (default COMPARE_ORACLE); see 'oracles'")
	cmd.Flags().StringVar(&alternative, "alternative", "two-sided", "Alternative for the significance and min-p statistics")
	cmd.Flags().IntVar(&uniformMax, "uniform-max", 0, "Draw cells uniformly from [0, n] instead")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any table disagrees")
	cmd.Flags().BoolVar(&save, "save", false, "Store the summary in DATABASE_URL")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}

func printComparison(out io.Writer, summary *referee.Summary, results []referee.Comparison) {
	fmt.Fprintln(out, summary.Markdown())
	for _, a := range stats.Alternatives {
		rank := referee.RankAgreement(results, a)
		fmt.Fprintf(out, "%-12s %d of %d tables ranked differently", a.Tail(), rank.Disagreements, rank.Ranked)
		if rank.Disagreements > 0 {
			fmt.Fprintf(out, " (first at reference rank %d, engine rank %d: %s)", rank.FirstDisagreement, rank.EngineRank, rank.Table)
		}
		fmt.Fprintln(out)
	}
}

func newExceptionsCmd(setup setupFunc) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "exceptions",
		Short: "Check the documented tables where float implementations disagree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup()
			if err != nil {
				return err
			}
			results, err := c.Referee.CheckDocumented(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), referee.DocumentedMarkdown(results))

			if strict {
				for _, r := range results {
					if !r.AtLeastAsClose {
						return errors.ReferenceMismatch(fmt.Errorf("%s: engine %.17g is farther from %.17g than the reference %.17g",
							r.Table, r.Engine, r.Exact, r.Reference))
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when the engine is farther from the exact value than the reference")
	return cmd
}

func newBenchCmd(setup setupFunc) *cobra.Command {
	var (
		iterations int
		oracles    string
		htmlPath   string
		save       bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time the engine backends and oracles on the standard cases",
		Long: `Print the mean microseconds per call for each implementation on the
standard tables and alternatives.

Example: fastfisher bench --iterations 5000 --oracles log-binomial,rational --html bench.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("iterations") {
				iterations = c.Config.Bench.Iterations
			}

			tol := fisher.WithTolerance(c.Engine.Tolerance())
			var impls []profiling.Implementation
			for _, backend := range []string{config.BackendTable, config.BackendLocal, config.BackendLgamma} {
				fc := c.Config.Fisher
				fc.Backend = backend
				impls = append(impls, profiling.EngineImplementation(backend,
					fisher.New(fisher.WithLogFactorials(container.NewLogFactorials(fc)), tol)))
			}
			// the runner is sequential, so an unsynchronized table is safe here
			impls = append(impls, profiling.EngineImplementation("private",
				fisher.New(fisher.WithLogFactorials(fisher.NewPrivateLogFactorials(c.Config.Fisher.CacheLimit)), tol)))
			for _, name := range strings.Split(oracles, ",") {
				if name = strings.TrimSpace(name); name == "" {
					continue
				}
				oracle, err := referee.GetOracleByName(name, 0)
				if err != nil {
					return err
				}
				impls = append(impls, oracleImplementation(oracle))
			}

			report, err := profiling.NewRunner(iterations, c.Logger, impls...).Run(cmd.Context(), profiling.DefaultCases())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report.Markdown())

			if htmlPath != "" {
				if err := os.WriteFile(htmlPath, report.HTML(), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", htmlPath, err)
				}
			}
			if save {
				if err := withStore(cmd, c, func(s *container.Store) error {
					return s.Benches.Save(cmd.Context(), report)
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved report %s\n", report.ID)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&iterations, "iterations", 0, "Timed calls per case (default BENCH_ITERATIONS)")
	cmd.Flags().StringVar(&oracles, "oracles", "", "Comma-separated oracles to time alongside the engine")
	cmd.Flags().StringVar(&htmlPath, "html", "", "Also write the table as HTML to this path")
	cmd.Flags().BoolVar(&save, "save", false, "Store the report in DATABASE_URL")
	return cmd
}

func oracleImplementation(o referee.Oracle) profiling.Implementation {
	return profiling.Implementation{
		Name: o.Name(),
		PValue: func(t stats.ContingencyTable, alt stats.Alternative) (float64, error) {
			p, err := o.PValues(t)
			return p.Get(alt), err
		},
	}
}

func newSensesCmd(setup setupFunc) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "senses [file] [x-column] [y-column]",
		Short: "Test association between two columns of a CSV or Excel file",
		Long: `Split each column into two groups (its two levels, or at the median) and
run the Fisher exact and chi-square senses on the resulting 2×2 table.

Example: fastfisher senses trial.csv treated recovered`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup()
			if err != nil {
				return err
			}
			varX, varY := args[1], args[2]
			cols, err := excel.NewDataReader(args[0]).WithLogger(c.Logger).ReadColumns(varX, varY)
			if err != nil {
				return err
			}

			results := c.Senses.AnalyzeAll(cmd.Context(), cols[varX], cols[varY], varX, varY)
			if err := cmd.Context().Err(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			for _, r := range results {
				fmt.Fprintf(out, "%-12s p=%-12.6g effect=%-10.4g signal=%-11s %s\n",
					r.SenseName, r.PValue, r.EffectSize, r.Signal, r.Description)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newOraclesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "oracles",
		Short: "List the reference oracles",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, o := range referee.GetOracleConfigs() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-18s %s\n", o.Name, o.Description)
			}
		},
	}
}
