package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/clane9/go-oneinf"
	"github.com/clane9/go-oneinf/internal/config"
)

func newRunsCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List stored fit runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()
			runs, err := s.ListRuns(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "run\tmodel\tlink\tmethod\tcreated")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Model, r.Link, r.Method, r.CreatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
}

func newCompareCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "compare RUN_A RUN_B",
		Short: "Compare the AIC of two runs on shared respondents",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()
			c, err := s.CompareAIC(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Shared respondents %d\n", c.Shared)
			fmt.Fprintf(out, "Run 1 better %.2f\n", c.FirstBetter)
			fmt.Fprintf(out, "Run 2 better %.2f\n", c.SecondBetter)
			return nil
		},
	}
}

func newCurveCmd(cfg *config.Config) *cobra.Command {
	var (
		lo, hi float64
		points int
	)
	cmd := &cobra.Command{
		Use:   "curve RUN RESPONDENT",
		Short: "Print the fitted P(known | zipf) curve of one respondent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()
			run, err := s.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fits, err := s.ListFits(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, f := range fits {
				if f.Respondent != args[1] {
					continue
				}
				tr, err := run.Transfer(f)
				if err != nil {
					return err
				}
				xs := oneinf.Grid(lo, hi, points)
				for i, y := range tr.Curve(xs) {
					fmt.Fprintf(cmd.OutOrStdout(), "%.4f\t%.6f\n", xs[i], y)
				}
				return nil
			}
			return fmt.Errorf("respondent %s not in run %s", args[1], args[0])
		},
	}
	cmd.Flags().Float64Var(&lo, "from", 0, "first covariate value")
	cmd.Flags().Float64Var(&hi, "to", 7.5, "last covariate value")
	cmd.Flags().IntVar(&points, "points", 16, "number of points")
	return cmd
}
