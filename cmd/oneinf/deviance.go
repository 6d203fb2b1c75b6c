package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/clane9/go-oneinf"
	"github.com/clane9/go-oneinf/internal/config"
)

func newDevianceCmd(cfg *config.Config) *cobra.Command {
	var (
		data   dataFlags
		lo, hi float64
		points int
	)
	cmd := &cobra.Command{
		Use:   "deviance RUN",
		Short: "Score a run's fitted curves against kernel density estimates of the data",
		Args:  cobra.ExactArgs(1),
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
			fits, err := s.ListFits(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			groups, err := data.load()
			if err != nil {
				return err
			}
			obs := make(map[string]oneinf.Observations, len(groups))
			for _, g := range groups {
				obs[g.ID] = g.Obs
			}

			xs := oneinf.Grid(lo, hi, points)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "respondent\tmae\tmse\tweighted_mae\tweighted_mse")
			var (
				mean oneinf.DevianceScores
				n    int
			)
			for _, f := range fits {
				o, ok := obs[f.Respondent]
				if !ok {
					fmt.Fprintf(tw, "%s\tnot in data\n", f.Respondent)
					continue
				}
				tr, err := run.Transfer(f)
				if err != nil {
					return err
				}
				d, err := oneinf.Deviance(tr, o, xs)
				if err != nil {
					fmt.Fprintf(tw, "%s\t%v\n", f.Respondent, err)
					continue
				}
				fmt.Fprintf(tw, "%s\t%.6f\t%.6f\t%.6f\t%.6f\n", f.Respondent, d.MAE, d.MSE, d.WeightedMAE, d.WeightedMSE)
				mean.MAE += d.MAE
				mean.MSE += d.MSE
				mean.WeightedMAE += d.WeightedMAE
				mean.WeightedMSE += d.WeightedMSE
				n++
			}
			if n > 0 {
				k := float64(n)
				fmt.Fprintf(tw, "mean\t%.6f\t%.6f\t%.6f\t%.6f\n", mean.MAE/k, mean.MSE/k, mean.WeightedMAE/k, mean.WeightedMSE/k)
			}
			return tw.Flush()
		},
	}
	data.register(cmd)
	cmd.Flags().Float64Var(&lo, "from", 0, "first covariate value")
	cmd.Flags().Float64Var(&hi, "to", 7, "last covariate value")
	cmd.Flags().IntVar(&points, "points", 1000, "number of grid points")
	return cmd
}
