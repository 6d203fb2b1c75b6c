// Command oneinf fits one-inflated Bernoulli regressions per respondent.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/clane9/go-oneinf"
	"github.com/clane9/go-oneinf/internal/config"
	"github.com/clane9/go-oneinf/internal/dataset"
	"github.com/clane9/go-oneinf/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "oneinf",
		Short:        "Fit one-inflated Bernoulli regressions",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := cfg.Level()
			if err != nil {
				return err
			}
			oneinf.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfg.DB, "db", cfg.DB, "SQLite database for fit runs")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(
		newFitCmd(&cfg),
		newEvalCmd(),
		newCompareCmd(&cfg),
		newRunsCmd(&cfg),
		newCurveCmd(&cfg),
		newDevianceCmd(&cfg),
	)
	return root
}

// dataFlags are the dataset options shared by fit and eval.
type dataFlags struct {
	path string
	opts dataset.Options
}

func (d *dataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&d.path, "data", "", "CSV file with respondent, covariate and outcome columns")
	cmd.Flags().StringVar(&d.opts.RespondentColumn, "respondent-column", "respondent", "respondent ID column")
	cmd.Flags().StringVar(&d.opts.XColumn, "x-column", "zipf", "covariate column")
	cmd.Flags().StringVar(&d.opts.KnownColumn, "known-column", "known", "0/1 outcome column")
	cmd.Flags().StringVar(&d.opts.ScoreColumn, "score-column", "", "derive the outcome from this score column instead")
	cmd.Flags().Float64Var(&d.opts.ScoreThreshold, "score-threshold", 5, "scores at or above this are outcome 1")
	_ = cmd.MarkFlagRequired("data")
}

func (d *dataFlags) load() ([]oneinf.Group, error) {
	f, err := os.Open(d.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dataset.ReadCSV(f, d.opts)
}

func openStore(cfg *config.Config) (*store.Store, error) {
	if cfg.DB == "" {
		return nil, fmt.Errorf("no database configured; set --db or ONEINF_DB")
	}
	return store.Open(cfg.DB)
}
