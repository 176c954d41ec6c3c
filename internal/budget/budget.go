// Package budget turns the bank's transaction feed into spendable amounts for
// the current pay cycle.
package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/NgigiN/banker/internal/openbanking"
	"github.com/NgigiN/banker/internal/paycycle"
)

var (
	ErrMissingParameter = errors.New("invalid argument: current date is required")
	ErrDivisionByZero   = errors.New("division by zero: no days left in the pay cycle")
)

const places = 2

// Bank is the slice of the open-banking client the calculator needs.
type Bank interface {
	ListAccounts(ctx context.Context) ([]openbanking.Account, error)
	AllTransactions(ctx context.Context, from, to time.Time) ([]openbanking.Transaction, error)
}

type Calculator struct {
	bank     Bank
	goalDays int
	log      zerolog.Logger
}

// NewCalculator returns a calculator backed by bank. goalDays is the number of
// days a savings goal is spread over; zero spreads it over the days left in
// the current pay cycle.
func NewCalculator(bank Bank, goalDays int, log zerolog.Logger) *Calculator {
	return &Calculator{
		bank:     bank,
		goalDays: goalDays,
		log:      log.With().Str("component", "budget").Logger(),
	}
}

// BudgetBalance is the net sum of every transaction from the start of the
// pay cycle up to currentDate.
func (c *Calculator) BudgetBalance(ctx context.Context, currentDate time.Time) (decimal.Decimal, error) {
	if currentDate.IsZero() {
		return decimal.Zero, ErrMissingParameter
	}
	today := paycycle.Date(currentDate)
	from := paycycle.LastPayDate(today)

	txs, err := c.bank.AllTransactions(ctx, from, today)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	sum := decimal.Zero
	for _, tx := range txs {
		sum = sum.Add(tx.Amount)
	}
	return sum.Round(places), nil
}

// DailyBudget spreads the budget balance over the days left in the cycle.
func (c *Calculator) DailyBudget(ctx context.Context, currentDate time.Time) (decimal.Decimal, error) {
	if currentDate.IsZero() {
		return decimal.Zero, ErrMissingParameter
	}
	daysLeft := paycycle.DaysLeftOfMonth(currentDate)
	if daysLeft == 0 {
		return decimal.Zero, ErrDivisionByZero
	}

	balance, err := c.BudgetBalance(ctx, currentDate)
	if err != nil {
		return decimal.Zero, err
	}
	return balance.DivRound(decimal.NewFromInt(int64(daysLeft)), places), nil
}

// GoalAdjustedDailyBudget is the daily budget left once the savings goal has
// been put aside.
func (c *Calculator) GoalAdjustedDailyBudget(ctx context.Context, goal decimal.Decimal, currentDate time.Time) (decimal.Decimal, error) {
	daily, err := c.DailyBudget(ctx, currentDate)
	if err != nil {
		return decimal.Zero, err
	}
	if goal.IsZero() {
		return daily, nil
	}

	days := c.goalDays
	if days <= 0 {
		// DailyBudget already rejected a zero here.
		days = paycycle.DaysLeftOfMonth(currentDate)
	}
	perDay := goal.Div(decimal.NewFromInt(int64(days)))
	return daily.Sub(perDay).Round(places), nil
}

// Summary is everything known about the budget on one day.
type Summary struct {
	CurrentDate   time.Time
	CycleStart    time.Time
	DaysLeft      int
	BudgetBalance decimal.Decimal
	DailyBudget   decimal.Decimal
}

// Summary computes the cycle and both budget figures with a single
// transaction fetch.
func (c *Calculator) Summary(ctx context.Context, currentDate time.Time) (Summary, error) {
	if currentDate.IsZero() {
		return Summary{}, ErrMissingParameter
	}
	cycle := paycycle.Current(currentDate)
	if cycle.DaysLeft == 0 {
		return Summary{}, ErrDivisionByZero
	}

	balance, err := c.BudgetBalance(ctx, currentDate)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		CurrentDate:   paycycle.Date(currentDate),
		CycleStart:    cycle.Start,
		DaysLeft:      cycle.DaysLeft,
		BudgetBalance: balance,
		DailyBudget:   balance.DivRound(decimal.NewFromInt(int64(cycle.DaysLeft)), places),
	}
	c.log.Debug().
		Str("date", paycycle.Format(s.CurrentDate)).
		Str("budget_balance", s.BudgetBalance.StringFixed(places)).
		Str("daily_budget", s.DailyBudget.StringFixed(places)).
		Int("days_left", s.DaysLeft).
		Msg("computed budget summary")
	return s, nil
}
