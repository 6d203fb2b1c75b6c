package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/clane9/go-oneinf"
	"github.com/clane9/go-oneinf/internal/config"
)

func newFitCmd(cfg *config.Config) *cobra.Command {
	var data dataFlags
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit every respondent in a dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := oneinf.ParseModel(cfg.Model)
			if err != nil {
				return err
			}
			link, err := oneinf.ParseLink(cfg.Link)
			if err != nil {
				return err
			}
			method, err := oneinf.ParseMethod(cfg.Method)
			if err != nil {
				return err
			}
			groups, err := data.load()
			if err != nil {
				return err
			}

			opts := oneinf.FitOptions{
				Model:             model,
				Link:              link,
				Method:            method,
				MaxIterations:     cfg.MaxIterations,
				GradientThreshold: cfg.GradientThreshold,
			}
			results, err := oneinf.FitGroups(cmd.Context(), groups, opts, cfg.Workers)
			if err != nil {
				return err
			}
			if err := printResults(cmd.OutOrStdout(), model, results); err != nil {
				return err
			}

			if cfg.DB == "" {
				return nil
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()
			run, err := s.CreateRun(cmd.Context(), model, link, method)
			if err != nil {
				return err
			}
			if err := s.SaveResults(cmd.Context(), run.ID, results); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s\n", run.ID)
			return nil
		},
	}
	data.register(cmd)
	cmd.Flags().StringVar(&cfg.Model, "model", cfg.Model, "model: one-inflated, zero-inflated or logistic")
	cmd.Flags().StringVar(&cfg.Link, "link", cfg.Link, "regression link: logit, probit or cloglog")
	cmd.Flags().StringVar(&cfg.Method, "method", cfg.Method, "method: bfgs, lbfgs, newton, sgd or adam")
	cmd.Flags().IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent fits (0 = GOMAXPROCS)")
	cmd.Flags().IntVar(&cfg.MaxIterations, "max-iterations", cfg.MaxIterations, "iteration limit (0 = method default)")
	cmd.Flags().Float64Var(&cfg.GradientThreshold, "grad-tol", cfg.GradientThreshold, "gradient norm convergence threshold")
	return cmd
}

func printResults(w io.Writer, model oneinf.Model, results []oneinf.GroupResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprint(tw, "respondent\tn")
	for _, name := range model.ParamNames() {
		fmt.Fprintf(tw, "\t%s\t(se)", name)
	}
	fmt.Fprintln(tw, "\tnll\taic\tstatus")

	for _, r := range results {
		if r.Result == nil {
			fmt.Fprintf(tw, "%s\t-\t%v\n", r.ID, r.Err)
			continue
		}
		res := r.Result
		fmt.Fprintf(tw, "%s\t%d", r.ID, res.NumObs)
		for i, v := range model.Free(res.Params) {
			fmt.Fprintf(tw, "\t%.4f\t(%.4f)", v, res.StdErr[i])
		}
		fmt.Fprintf(tw, "\t%.4f\t%.4f\t%s\n", res.NLL, res.AIC, res.Status)
	}
	return tw.Flush()
}
