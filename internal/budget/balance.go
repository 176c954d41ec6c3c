package budget

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Balance sums the available balance of every account that has a
// transaction feed.
func (c *Calculator) Balance(ctx context.Context) (decimal.Decimal, error) {
	accounts, err := c.bank.ListAccounts(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	sum := decimal.Zero
	for _, a := range accounts {
		if !a.HasTransactions() {
			continue
		}
		sum = sum.Add(a.AvailableBalance)
	}
	return sum.Round(places), nil
}
