package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clane9/go-oneinf"
)

func newEvalCmd() *cobra.Command {
	var (
		data        dataFlags
		p           oneinf.Params
		model, link string
	)
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Print the negative log-likelihood of each respondent at fixed parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := oneinf.ParseModel(model)
			if err != nil {
				return err
			}
			l, err := oneinf.ParseLink(link)
			if err != nil {
				return err
			}
			groups, err := data.load()
			if err != nil {
				return err
			}
			total := 0.0
			for _, g := range groups {
				nll, err := oneinf.EvaluateModel[float64](oneinf.Float{}, m, l, g.Obs, m.Free(p))
				if err != nil {
					return fmt.Errorf("respondent %s: %w", g.ID, err)
				}
				total += nll
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.6f\n", g.ID, nll)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total\t%.6f\n", total)
			return nil
		},
	}
	data.register(cmd)
	cmd.Flags().Float64Var(&p.InflateCoef, "inflate", 0, "inflation logit")
	cmd.Flags().Float64Var(&p.RegConstCoef, "const", 0, "regression intercept")
	cmd.Flags().Float64Var(&p.RegZipfCoef, "zipf", 0, "regression slope")
	cmd.Flags().StringVar(&model, "model", oneinf.OneInflated.String(), "model: one-inflated, zero-inflated or logistic")
	cmd.Flags().StringVar(&link, "link", oneinf.LinkLogit.String(), "regression link: logit, probit or cloglog")
	return cmd
}
