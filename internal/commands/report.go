package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/NgigiN/banker/internal/paycycle"
)

func newBalanceCommand(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Sum the available balance of all transaction accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			balance, err := a.calc.Balance(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Balance: %s\n", balance.StringFixed(2))
			return nil
		},
	}
}

func newBudgetCommand(load appLoader) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Show the budget balance and daily budget for a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			current := a.now()
			if date != "" {
				if current, err = paycycle.Parse(date); err != nil {
					return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", date)
				}
			}

			s, err := a.calc.Summary(cmd.Context(), current)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Date:           %s\n", paycycle.Format(s.CurrentDate))
			fmt.Fprintf(out, "Cycle start:    %s\n", paycycle.Format(s.CycleStart))
			fmt.Fprintf(out, "Days left:      %d\n", s.DaysLeft)
			fmt.Fprintf(out, "Budget balance: %s\n", s.BudgetBalance.StringFixed(2))
			fmt.Fprintf(out, "Daily budget:   %s\n", s.DailyBudget.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "date to compute the budget for (YYYY-MM-DD, default today)")
	return cmd
}

func newTransactionsCommand(load appLoader) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List transactions across all accounts in a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fromDate, err := paycycle.Parse(from)
			if err != nil {
				return fmt.Errorf("invalid --from %q: expected YYYY-MM-DD", from)
			}
			toDate, err := paycycle.Parse(to)
			if err != nil {
				return fmt.Errorf("invalid --to %q: expected YYYY-MM-DD", to)
			}

			a, err := load()
			if err != nil {
				return err
			}
			txs, err := a.client.AllTransactions(cmd.Context(), fromDate, toDate)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tACCOUNT\tAMOUNT\tDESCRIPTION")
			for _, tx := range txs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", paycycle.Format(tx.Date), tx.AccountID, tx.Amount.StringFixed(2), tx.Description)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first booking date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last booking date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newAccountsCommand(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List accounts and their available balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			accounts, err := a.client.ListAccounts(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ACCOUNT\tAVAILABLE\tTRANSACTIONS")
			for _, acc := range accounts {
				fmt.Fprintf(w, "%s\t%s\t%t\n", acc.ID, acc.AvailableBalance.StringFixed(2), acc.HasTransactions())
			}
			return w.Flush()
		},
	}
}
