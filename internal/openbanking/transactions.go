package openbanking

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"github.com/NgigiN/banker/internal/paycycle"
)

// The "next" links handed out by the API sometimes drop the currency suffix
// the "transactions" link carries, e.g. /accounts/FI6593857450293470/...
var bareAccountID = regexp.MustCompile(`/accounts/(FI\d+)(/|$)`)

const currencySuffix = "-EUR"

// RewriteAccountID appends -EUR to a bare FI<digits> account segment in the
// path of href. Anything else, including ids that already carry a suffix, is
// returned unchanged.
func RewriteAccountID(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	rewritten := bareAccountID.ReplaceAllString(u.Path, "/accounts/${1}"+currencySuffix+"${2}")
	if rewritten == u.Path {
		return href
	}
	u.Path = rewritten
	u.RawPath = ""
	return u.String()
}

type page struct {
	transactions []Transaction
	next         string
}

// FetchTransactions walks the transaction feed starting at link, following
// "next" relations until the API stops handing them out.
func (c *Client) FetchTransactions(ctx context.Context, link Link) ([]Transaction, error) {
	var acc []Transaction

	target, err := c.resolve(link.Href)
	if err != nil {
		return nil, &FetchError{Op: "fetch transactions", URL: link.Href, Err: err}
	}
	href := target.String()
	seen := make(map[string]bool)

	for pages := 0; ; pages++ {
		if pages >= c.maxPages {
			return nil, &FetchError{Op: "fetch transactions", URL: href, Err: fmt.Errorf("%w: limit is %d", ErrTooManyPages, c.maxPages)}
		}
		seen[href] = true

		p, err := c.fetchPage(ctx, href)
		if err != nil {
			return nil, err
		}
		acc = append(acc, p.transactions...)

		if p.next == "" {
			return acc, nil
		}

		next, err := c.resolve(RewriteAccountID(p.next))
		if err != nil {
			return nil, &FetchError{Op: "fetch transactions", URL: p.next, Err: err}
		}
		href = next.String()
		if seen[href] {
			c.log.Warn().Str("url", href).Int("pages", pages+1).Msg("pagination loops back to a visited page, stopping")
			return acc, nil
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, href string) (page, error) {
	var env transactionsEnvelope
	if err := c.getJSON(ctx, "fetch transactions", href, &env); err != nil {
		return page{}, err
	}

	txs := make([]Transaction, 0, len(env.Response.Transactions))
	for _, wt := range env.Response.Transactions {
		raw := wt.BookingDate
		if raw == "" {
			raw = wt.TransactionDate
		}
		date, err := paycycle.Parse(raw)
		if err != nil {
			return page{}, &FetchError{Op: "fetch transactions", URL: href, Err: fmt.Errorf("invalid transaction date %q: %w", raw, err)}
		}
		txs = append(txs, Transaction{
			Amount:      wt.Amount,
			Date:        date,
			Description: wt.Narrative,
		})
	}

	p := page{transactions: txs}
	if next, ok := env.Response.Links.Find(RelNext); ok {
		p.next = next.Href
	}
	return p, nil
}
