package openbanking

import (
	"time"

	"github.com/shopspring/decimal"
)

// Link relations used to navigate the API.
const (
	RelTransactions = "transactions"
	RelNext         = "next"
)

type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// Links is the `_links` array returned on accounts and pages.
type Links []Link

// Find returns the first link with the given relation.
func (l Links) Find(rel string) (Link, bool) {
	for _, link := range l {
		if link.Rel == rel && link.Href != "" {
			return link, true
		}
	}
	return Link{}, false
}

type Account struct {
	ID               string          `json:"id"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	Links            Links           `json:"links"`
}

// HasTransactions reports whether the account exposes a transaction feed.
// Purely informational accounts don't.
func (a Account) HasTransactions() bool {
	_, ok := a.Links.Find(RelTransactions)
	return ok
}

type Transaction struct {
	AccountID   string          `json:"accountId"`
	Amount      decimal.Decimal `json:"amount"` // negative = debit
	Date        time.Time       `json:"date"`
	Description string          `json:"description,omitempty"`
}

// wire formats

type accountsEnvelope struct {
	Response struct {
		Accounts []wireAccount `json:"accounts"`
	} `json:"response"`
}

type wireAccount struct {
	ID               string          `json:"_id"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	Links            Links           `json:"_links"`
}

type transactionsEnvelope struct {
	Response struct {
		Transactions []wireTransaction `json:"transactions"`
		Links        Links             `json:"_links"`
	} `json:"response"`
}

type wireTransaction struct {
	Amount          decimal.Decimal `json:"amount"`
	BookingDate     string          `json:"bookingDate"`
	TransactionDate string          `json:"transactionDate"`
	Narrative       string          `json:"narrative"`
}
