package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fastfisher/domain/core"
	"fastfisher/internal/container"
	"fastfisher/internal/errors"
	"fastfisher/internal/referee"
)

// withStore opens the run store for the duration of fn.
func withStore(cmd *cobra.Command, c *container.Container, fn func(*container.Store) error) error {
	store, err := c.OpenStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newRunsCmd(setup setupFunc) *cobra.Command {
	var (
		limit       int
		fingerprint string
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List comparison runs stored with 'compare --save'",
		Long: `List stored comparison runs, newest first. With --fingerprint, list every
run of that configuration oldest first, so drift between releases shows up.

Requires DATABASE_URL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup()
			if err != nil {
				return err
			}
			return withStore(cmd, c, func(s *container.Store) error {
				var runs []*referee.Summary
				var err error
				if fingerprint != "" {
					fp, perr := core.ParseHash(fingerprint)
					if perr != nil {
						return errors.WithCode(errors.CodeInvalidInput, perr)
					}
					runs, err = s.Runs.ListByFingerprint(cmd.Context(), fp)
				} else {
					runs, err = s.Runs.ListRecent(cmd.Context(), limit)
				}
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "no stored runs")
					return nil
				}
				for _, r := range runs {
					fmt.Fprintf(out, "%s  %s  %-18s %-10s samples=%d failures=%d max_diff=%.3g\n",
						r.RunID, r.StartedAt.Display(), r.Oracle, r.Alternative,
						r.Samples, r.Failures, r.MaxDiff)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	cmd.Flags().StringVar(&fingerprint, "fingerprint", "", "Only runs with this configuration fingerprint")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show [run-id]",
			Short: "Print a stored comparison summary",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := core.ParseRunID(args[0])
				if err != nil {
					return err
				}
				c, err := setup()
				if err != nil {
					return err
				}
				return withStore(cmd, c, func(s *container.Store) error {
					summary, err := s.Runs.GetByID(cmd.Context(), id)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), summary.Markdown())
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "bench [report-id]",
			Short: "Print a benchmark report stored with 'bench --save'",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := setup()
				if err != nil {
					return err
				}
				return withStore(cmd, c, func(s *container.Store) error {
					report, err := s.Benches.GetByID(cmd.Context(), core.BenchID(args[0]))
					if err != nil {
						return err
					}
					out := cmd.OutOrStdout()
					fmt.Fprintf(out, "report %s: %d iterations, %s\n\n",
						report.ID, report.Iterations, report.StartedAt.Display())
					fmt.Fprint(out, report.Markdown)
					return nil
				})
			},
		},
	)
	return cmd
}
