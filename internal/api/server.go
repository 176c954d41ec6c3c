// Package api is the JSON HTTP surface over the budget core.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/NgigiN/banker/internal/budget"
	"github.com/NgigiN/banker/internal/openbanking"
)

// Bank is the read side of the open-banking client.
type Bank interface {
	ListAccounts(ctx context.Context) ([]openbanking.Account, error)
	AllTransactions(ctx context.Context, from, to time.Time) ([]openbanking.Transaction, error)
}

// Budget is the budget calculator.
type Budget interface {
	Summary(ctx context.Context, currentDate time.Time) (budget.Summary, error)
	Balance(ctx context.Context) (decimal.Decimal, error)
}

type Server struct {
	http.Server
	bank      Bank
	budget    Budget
	connected func() bool
	startTime time.Time
	log       zerolog.Logger
}

// NewServer wires the routes and middleware. connected may be nil when the
// chat bot isn't running.
func NewServer(addr string, bank Bank, b Budget, connected func() bool, requestTimeout time.Duration, log zerolog.Logger) *Server {
	s := &Server{
		bank:      bank,
		budget:    b,
		connected: connected,
		startTime: time.Now(),
		log:       log.With().Str("component", "http").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /accounts", s.handleAccounts)
	mux.HandleFunc("GET /transactions", s.handleTransactions)
	mux.HandleFunc("GET /balance", s.handleBalance)
	mux.HandleFunc("GET /available", s.handleAvailable)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"message": "Hello world, I am a chat bot"})
	})

	var handler http.Handler = mux
	handler = Timeout(requestTimeout)(handler)
	handler = Logger(s.log)(handler)
	handler = Recovery(s.log)(handler)
	handler = RequestID(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      requestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s
}
