package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"fastfisher/adapters/excel"
	"fastfisher/domain/stats"
)

func newTestCmd(setup setupFunc) *cobra.Command {
	var alternative string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "test a b c d",
		Short: "Compute the p-values of one table",
		Long: `Compute the left, right and two-sided p-values of the table

    a b
    c d

Example: fastfisher test 8 2 1 5 --alternative greater`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			var cells [4]int
			for i, arg := range args {
				v, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("%c=%q is not an integer", "abcd"[i], arg)
				}
				cells[i] = v
			}
			t, err := stats.NewTable(cells[0], cells[1], cells[2], cells[3])
			if err != nil {
				return err
			}

			c, err := setup()
			if err != nil {
				return err
			}
			p := c.Engine.Test(t)
			out := cmd.OutOrStdout()

			switch {
			case alternative != "":
				alt, err := stats.ParseAlternative(alternative)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%.17g\n", p.Get(alt))
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Table   [4]int        `json:"table"`
					PValues stats.PValues `json:"p_values"`
				}{t.Cells(), p})
			default:
				fmt.Fprintf(out, "table       %s\n", t)
				fmt.Fprintf(out, "odds ratio  %g\n", t.OddsRatio())
				fmt.Fprintf(out, "less        %.17g\n", p.Less)
				fmt.Fprintf(out, "greater     %.17g\n", p.Greater)
				fmt.Fprintf(out, "two-sided   %.17g\n", p.TwoSided)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&alternative, "alternative", "", "Print only this p-value: less, greater or two-sided")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newExactCmd(setup setupFunc) *cobra.Command {
	var alternative string

	cmd := &cobra.Command{
		Use:   "exact [matrix]",
		Short: "Odds ratio and p-value of a row-major 2×2 matrix",
		Long: `Accepts either a bare matrix or an object with "table" and "alternative".

Example:
  fastfisher exact '[[8, 2], [1, 5]]' --alternative less
  fastfisher exact '{"table": [[8, 2], [1, 5]], "alternative": "greater"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !gjson.Valid(args[0]) {
				return fmt.Errorf("matrix is not valid JSON")
			}
			doc := gjson.Parse(args[0])
			matrix := doc
			if doc.IsObject() {
				matrix = doc.Get("table")
				if alt := doc.Get("alternative"); alt.Exists() && !cmd.Flags().Changed("alternative") {
					alternative = alt.String()
				}
			}
			m, err := parseMatrix(matrix)
			if err != nil {
				return err
			}

			c, err := setup()
			if err != nil {
				return err
			}
			oddsRatio, p, err := c.Engine.Exact(m, alternative)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "odds_ratio=%g p_value=%.17g\n", oddsRatio, p)
			return nil
		},
	}

	cmd.Flags().StringVar(&alternative, "alternative", "two-sided", "less, greater or two-sided")
	return cmd
}

func parseMatrix(r gjson.Result) ([][]float64, error) {
	if !r.IsArray() {
		return nil, fmt.Errorf("table must be a 2x2 array")
	}
	var m [][]float64
	for i, row := range r.Array() {
		if !row.IsArray() {
			return nil, fmt.Errorf("row %d must be an array", i+1)
		}
		var values []float64
		for j, cell := range row.Array() {
			if cell.Type != gjson.Number {
				return nil, fmt.Errorf("cell [%d][%d] must be a number", i, j)
			}
			values = append(values, cell.Float())
		}
		m = append(m, values)
	}
	return m, nil
}

func newBatchCmd(setup setupFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [input] [output]",
		Short: "Test every table in a CSV or Excel file",
		Long: `Read tables from Sheet1 of an .xlsx file or from a .csv file, one table per row
(columns a, b, c, d and an optional label), and write the odds ratio and all
three p-values. Without an output path the results go to stdout as CSV.

Example: fastfisher batch tables.xlsx results.xlsx`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup()
			if err != nil {
				return err
			}

			tables, err := excel.NewDataReader(args[0]).WithLogger(c.Logger).ReadTables()
			if err != nil {
				return err
			}

			results := make([]excel.BatchResult, len(tables))
			for i, lt := range tables {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				results[i] = excel.BatchResult{
					LabeledTable: lt,
					PValues:      c.Engine.Test(lt.Table),
					OddsRatio:    lt.Table.OddsRatio(),
				}
			}

			if len(args) == 1 {
				return excel.WriteCSV(cmd.OutOrStdout(), results)
			}
			if err := excel.WriteResults(args[1], results); err != nil {
				return err
			}
			c.Logger.Info("batch written", "tables", len(results), "output", args[1])
			return nil
		},
	}
	return cmd
}
