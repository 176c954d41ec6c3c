package openbanking

import (
	"context"
	"net/url"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NgigiN/banker/internal/paycycle"
)

// ListAccounts fetches every account visible to the configured credentials.
func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	target, err := c.resolve(accountsPath)
	if err != nil {
		return nil, &FetchError{Op: "list accounts", URL: accountsPath, Err: err}
	}

	var env accountsEnvelope
	if err := c.getJSON(ctx, "list accounts", target.String(), &env); err != nil {
		return nil, err
	}

	accounts := make([]Account, 0, len(env.Response.Accounts))
	for _, wa := range env.Response.Accounts {
		accounts = append(accounts, Account{
			ID:               wa.ID,
			AvailableBalance: wa.AvailableBalance,
			Links:            wa.Links,
		})
	}
	return accounts, nil
}

// AccountLink is a transaction feed link for one account.
type AccountLink struct {
	AccountID string
	Link      Link
}

// TransactionLinks builds a date-bounded transaction feed link for every
// account that has one. Accounts without a "transactions" relation are skipped.
func TransactionLinks(accounts []Account, from, to time.Time) []AccountLink {
	var links []AccountLink
	for _, a := range accounts {
		link, ok := a.Links.Find(RelTransactions)
		if !ok {
			continue
		}
		links = append(links, AccountLink{
			AccountID: a.ID,
			Link:      Link{Rel: RelTransactions, Href: withDateRange(link.Href, from, to)},
		})
	}
	return links
}

func withDateRange(href string, from, to time.Time) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	q := u.Query()
	q.Set("fromDate", paycycle.Format(from))
	q.Set("toDate", paycycle.Format(to))
	u.RawQuery = q.Encode()
	return u.String()
}

// AllTransactions returns every transaction booked between from and to on
// every account, ordered by date. Accounts are fetched concurrently and the
// first failure cancels the rest and fails the whole call.
func (c *Client) AllTransactions(ctx context.Context, from, to time.Time) ([]Transaction, error) {
	accounts, err := c.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	links := TransactionLinks(accounts, from, to)

	perAccount := make([][]Transaction, len(links))
	g, gctx := errgroup.WithContext(ctx)
	for i, al := range links {
		g.Go(func() error {
			txs, err := c.FetchTransactions(gctx, al.Link)
			if err != nil {
				return err
			}
			for j := range txs {
				txs[j].AccountID = al.AccountID
			}
			perAccount[i] = txs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Transaction
	for _, txs := range perAccount {
		all = append(all, txs...)
	}
	slices.SortStableFunc(all, func(a, b Transaction) int {
		return a.Date.Compare(b.Date)
	})

	c.log.Debug().
		Int("accounts", len(links)).
		Int("transactions", len(all)).
		Str("from", paycycle.Format(from)).
		Str("to", paycycle.Format(to)).
		Msg("aggregated transactions")
	return all, nil
}
