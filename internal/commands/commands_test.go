package commands

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NgigiN/banker/internal/budget"
	"github.com/NgigiN/banker/internal/config"
	"github.com/NgigiN/banker/internal/openbanking"
)

func fakeUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v2/accounts":
			w.Write([]byte(`{"response":{"accounts":[
				{"_id":"FI1-EUR","availableBalance":"100.00","_links":[{"rel":"transactions","href":"/v2/accounts/FI1-EUR/transactions"}]},
				{"_id":"FI2-EUR","availableBalance":"50.00","_links":[]}
			]}}`))
		case "/v2/accounts/FI1-EUR/transactions":
			w.Write([]byte(`{"response":{"transactions":[
				{"amount":"200.00","bookingDate":"2023-02-27","narrative":"salary"},
				{"amount":"-50.00","bookingDate":"2023-03-02","narrative":"groceries"},
				{"amount":"-30.00","bookingDate":"2023-03-15"}
			]}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testLoader(t *testing.T, upstream *httptest.Server) appLoader {
	t.Helper()
	return func() (*app, error) {
		cfg := &config.Config{
			NordeaBaseURL:  upstream.URL,
			Port:           "0",
			RequestTimeout: time.Second,
			LogLevel:       "info",
		}
		client, err := openbanking.NewClient(openbanking.Config{BaseURL: upstream.URL}, upstream.Client(), zerolog.Nop())
		if err != nil {
			return nil, err
		}
		return &app{
			cfg:    cfg,
			log:    zerolog.Nop(),
			client: client,
			calc:   budget.NewCalculator(client, 0, zerolog.Nop()),
			now:    func() time.Time { return time.Date(2023, time.March, 20, 12, 0, 0, 0, time.UTC) },
		}, nil
	}
}

func execute(t *testing.T, load appLoader, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(load)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBalanceCommand(t *testing.T) {
	out, err := execute(t, testLoader(t, fakeUpstream(t)), "balance")
	require.NoError(t, err)
	assert.Equal(t, "Balance: 100.00\n", out)
}

func TestBudgetCommand(t *testing.T) {
	load := testLoader(t, fakeUpstream(t))

	t.Run("today", func(t *testing.T) {
		out, err := execute(t, load, "budget")
		require.NoError(t, err)
		assert.Contains(t, out, "Date:           2023-03-20")
		assert.Contains(t, out, "Cycle start:    2023-02-26")
		assert.Contains(t, out, "Days left:      6")
		assert.Contains(t, out, "Budget balance: 120.00")
		assert.Contains(t, out, "Daily budget:   20.00")
	})

	t.Run("explicit date", func(t *testing.T) {
		out, err := execute(t, load, "budget", "--date", "2023-03-20")
		require.NoError(t, err)
		assert.Contains(t, out, "Daily budget:   20.00")
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := execute(t, load, "budget", "--date", "20.03.2023")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected YYYY-MM-DD")
	})
}

func TestTransactionsCommand(t *testing.T) {
	load := testLoader(t, fakeUpstream(t))

	out, err := execute(t, load, "transactions", "--from", "2023-02-26", "--to", "2023-03-20")
	require.NoError(t, err)
	assert.Contains(t, out, "DATE")
	assert.Contains(t, out, "salary")
	assert.Less(t, bytes.Index([]byte(out), []byte("salary")), bytes.Index([]byte(out), []byte("groceries")))

	_, err = execute(t, load, "transactions", "--from", "2023-02-26")
	assert.Error(t, err)
}

func TestAccountsCommand(t *testing.T) {
	out, err := execute(t, testLoader(t, fakeUpstream(t)), "accounts")
	require.NoError(t, err)
	assert.Contains(t, out, "FI1-EUR")
	assert.Contains(t, out, "FI2-EUR")
	assert.Contains(t, out, "50.00")
}

func TestLoaderErrorIsReturned(t *testing.T) {
	boom := errors.New("NORDEA_TOKEN is not set")
	_, err := execute(t, func() (*app, error) { return nil, boom }, "balance")
	assert.ErrorIs(t, err, boom)
}

func TestUpstreamFailure(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()

	_, err := execute(t, testLoader(t, down), "balance")
	var fetchErr *openbanking.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusInternalServerError, fetchErr.StatusCode)
}

func TestServeStopsOnCancel(t *testing.T) {
	a, err := testLoader(t, fakeUpstream(t))()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, a) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}
