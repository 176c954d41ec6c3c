package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/NgigiN/banker/internal/budget"
	"github.com/NgigiN/banker/internal/logger"
	"github.com/NgigiN/banker/internal/openbanking"
	"github.com/NgigiN/banker/internal/paycycle"
)

type accountResponse struct {
	ID               string            `json:"id"`
	AvailableBalance string            `json:"availableBalance"`
	Links            openbanking.Links `json:"links"`
}

type transactionResponse struct {
	AccountID   string `json:"accountId"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
}

type summaryResponse struct {
	CurrentDate   string `json:"currentDate"`
	CycleStart    string `json:"cycleStart"`
	DaysLeft      int    `json:"daysLeft"`
	BudgetBalance string `json:"budgetBalance"`
	DailyBudget   string `json:"dailyBudget"`
}

// GET /accounts
func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.bank.ListAccounts(r.Context())
	if err != nil {
		s.fail(w, r, err, "failed to fetch accounts")
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		links := a.Links
		if links == nil {
			links = openbanking.Links{}
		}
		out = append(out, accountResponse{
			ID:               a.ID,
			AvailableBalance: a.AvailableBalance.StringFixed(2),
			Links:            links,
		})
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"accounts": out,
		"count":    len(out),
	})
}

// GET /transactions?fromDate=YYYY-MM-DD&toDate=YYYY-MM-DD
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	from, ok := requiredDate(w, r, "fromDate")
	if !ok {
		return
	}
	to, ok := requiredDate(w, r, "toDate")
	if !ok {
		return
	}
	if from.After(to) {
		WriteError(w, http.StatusBadRequest, "fromDate must not be after toDate")
		return
	}

	txs, err := s.bank.AllTransactions(r.Context(), from, to)
	if err != nil {
		s.fail(w, r, err, "failed to fetch transactions")
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, transactionResponse{
			AccountID:   tx.AccountID,
			Amount:      tx.Amount.StringFixed(2),
			Date:        paycycle.Format(tx.Date),
			Description: tx.Description,
		})
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"transactions": out,
		"count":        len(out),
	})
}

// GET /balance?currentDate=YYYY-MM-DD
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	currentDate, ok := requiredDate(w, r, "currentDate")
	if !ok {
		return
	}

	summary, err := s.budget.Summary(r.Context(), currentDate)
	if err != nil {
		s.fail(w, r, err, "failed to compute budget")
		return
	}
	WriteJSON(w, http.StatusOK, summaryResponse{
		CurrentDate:   paycycle.Format(summary.CurrentDate),
		CycleStart:    paycycle.Format(summary.CycleStart),
		DaysLeft:      summary.DaysLeft,
		BudgetBalance: summary.BudgetBalance.StringFixed(2),
		DailyBudget:   summary.DailyBudget.StringFixed(2),
	})
}

// GET /available
func (s *Server) handleAvailable(w http.ResponseWriter, r *http.Request) {
	balance, err := s.budget.Balance(r.Context())
	if err != nil {
		s.fail(w, r, err, "failed to fetch balance")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"balance": balance.StringFixed(2)})
}

// GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	connected := s.connected != nil && s.connected()
	if s.connected != nil && !connected {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	WriteJSON(w, code, map[string]any{
		"status":            status,
		"uptime":            time.Since(s.startTime).Round(time.Second).String(),
		"discord_connected": connected,
		"timestamp":         time.Now().Format(time.RFC3339),
	})
}

func requiredDate(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		WriteError(w, http.StatusBadRequest, "missing required query parameter: "+name)
		return time.Time{}, false
	}
	d, err := paycycle.Parse(raw)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid "+name+": expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return d, true
}

// fail maps core errors onto status codes. Upstream details are logged and
// never sent to the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	log := logger.FromContext(r.Context())
	var fetchErr *openbanking.FetchError

	switch {
	case errors.Is(err, budget.ErrMissingParameter):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, budget.ErrDivisionByZero):
		WriteError(w, http.StatusUnprocessableEntity, "no days left in the current pay cycle")
	case r.Context().Err() != nil && errors.Is(err, r.Context().Err()):
		logError(log, err, message)
		WriteError(w, http.StatusGatewayTimeout, message)
	case errors.As(err, &fetchErr):
		logError(log.With().Str("upstream_url", fetchErr.URL).Int("upstream_status", fetchErr.StatusCode).Logger(), err, message)
		WriteError(w, http.StatusBadGateway, message)
	default:
		logError(log, err, message)
		WriteError(w, http.StatusInternalServerError, message)
	}
}

func logError(log zerolog.Logger, err error, message string) {
	log.Error().Err(err).Msg(message)
}
