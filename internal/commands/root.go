package commands

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/NgigiN/banker/internal/budget"
	"github.com/NgigiN/banker/internal/config"
	"github.com/NgigiN/banker/internal/logger"
	"github.com/NgigiN/banker/internal/openbanking"
)

// app is what every subcommand works with.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	client *openbanking.Client
	calc   *budget.Calculator
	now    func() time.Time
}

type appLoader func() (*app, error)

func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.LogLevel)

	client, err := openbanking.NewClient(cfg.Upstream(), nil, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create bank client: %w", err)
	}

	return &app{
		cfg:    cfg,
		log:    log,
		client: client,
		calc:   budget.NewCalculator(client, cfg.GoalSpreadDays, log),
		now:    time.Now,
	}, nil
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(loadApp)
}

func newRootCommand(load appLoader) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "banker",
		Short: "Personal banker: pay-cycle budgets from your bank transactions",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newServeCommand(load),
		newBalanceCommand(load),
		newBudgetCommand(load),
		newTransactionsCommand(load),
		newAccountsCommand(load),
	)

	return rootCmd
}
