// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/finboard/internal/dashboard"
	"github.com/taibuivan/finboard/internal/upstream"
)

// backend serves canned JSON per path; unknown paths answer 500.
func backend(t *testing.T, routes map[string]string) (*upstream.Client, *sync.Map) {
	t.Helper()
	seen := &sync.Map{}

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen.Store(request.URL.Path, request)
		body, ok := routes[request.URL.Path]
		if !ok {
			http.Error(writer, `{"error":"boom"}`, http.StatusInternalServerError)
			return
		}
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	client, err := upstream.New(server.URL, 2*time.Second)
	require.NoError(t, err)
	return client, seen
}

/*
TestAggregator_FallsBackPerSection verifies that a failing preferred endpoint
only affects its own section and that the legacy data is reshaped.
*/
func TestAggregator_FallsBackPerSection(t *testing.T) {
	client, seen := backend(t, map[string]string{
		"/api/v1/financial/cash-flow":    `[{"date":"2024-03-15","total_revenue":100}]`,
		"/api/v1/financial/wallet":       `{"year":2024,"bankAccounts":[{"label":"Itaú","amount":10}],"totalAvailable":10}`,
		"/api/v1/financial/transactions": `{"year":2024,"items":[{"id":"t1","date":"2024-05-01","type":"revenue","amount":5}],"nextCursor":"c2"}`,
	})

	result, err := dashboard.NewUpstreamAggregator(client).Load(context.Background(), dashboard.Query{Token: "tok", Year: 2024})
	require.NoError(t, err)

	require.Len(t, result.Annual.Monthly, 12)
	for index, entry := range result.Annual.Monthly {
		assert.Equal(t, index+1, entry.Month)
		if index != 2 {
			assert.Zero(t, entry.Revenue)
		}
	}
	assert.InDelta(t, 100, result.Annual.Monthly[2].Revenue, 1e-9)
	assert.InDelta(t, 100, result.Annual.Totals.Revenue, 1e-9)

	assert.Equal(t, []dashboard.WalletLine{{Label: "Itaú", Amount: 10}}, result.Wallet.BankAccounts)
	assert.NotNil(t, result.Wallet.Cash)
	require.NotNil(t, result.Transactions.NextCursor)
	assert.Equal(t, "c2", *result.Transactions.NextCursor)

	// The preferred transactions call carries the year scope and default limit.
	value, ok := seen.Load("/api/v1/financial/transactions")
	require.True(t, ok)
	request := value.(*http.Request)
	assert.Equal(t, "2024", request.URL.Query().Get("year"))
	assert.Equal(t, "10", request.URL.Query().Get("limit"))
	assert.Equal(t, "Bearer tok", request.Header.Get("Authorization"))

	_, legacyWallet := seen.Load("/api/v1/saldo-disponivel")
	assert.False(t, legacyWallet)
}

/*
TestAggregator_ReportsOnlyExhaustedSections verifies the aggregate error.
*/
func TestAggregator_ReportsOnlyExhaustedSections(t *testing.T) {
	client, _ := backend(t, map[string]string{
		"/api/v1/financial/annual-summary": `{"year":2024,"monthly":[]}`,
		"/api/v1/saldo-disponivel":         `[{"conta":"Itaú","tipo":"conta corrente","saldo":10}]`,
	})

	result, err := dashboard.NewUpstreamAggregator(client).Load(context.Background(), dashboard.Query{Year: 2024})
	require.Error(t, err)
	assert.Nil(t, result)

	var loadErr *dashboard.LoadError
	require.ErrorAs(t, err, &loadErr)
	require.Len(t, loadErr.Sections, 1)
	assert.Equal(t, dashboard.SectionTransactions, loadErr.Sections[0].Section)
	require.Len(t, loadErr.Sections[0].Attempts, 2)
	assert.Equal(t, "transactions", loadErr.Sections[0].Attempts[0].Source)
	assert.Equal(t, "lancamentos-diarios", loadErr.Sections[0].Attempts[1].Source)

	var fetchErr *upstream.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusInternalServerError, fetchErr.StatusCode)
}

/*
TestAggregator_DispatchesConcurrently verifies that no section waits for
another: every source blocks until all three have started.
*/
func TestAggregator_DispatchesConcurrently(t *testing.T) {
	var started sync.WaitGroup
	started.Add(3)

	barrier := func() error {
		started.Done()
		done := make(chan struct{})
		go func() { started.Wait(); close(done) }()
		select {
		case <-done:
			return nil
		case <-time.After(2 * time.Second):
			return errors.New("sections were not dispatched concurrently")
		}
	}

	aggregator := dashboard.NewAggregator(
		dashboard.NewChain(dashboard.SectionAnnual, dashboard.NewSource("annual", func(context.Context, dashboard.Query) (*dashboard.AnnualSummary, error) {
			return &dashboard.AnnualSummary{}, barrier()
		})),
		dashboard.NewChain(dashboard.SectionWallet, dashboard.NewSource("wallet", func(context.Context, dashboard.Query) (*dashboard.WalletSnapshot, error) {
			return &dashboard.WalletSnapshot{}, barrier()
		})),
		dashboard.NewChain(dashboard.SectionTransactions, dashboard.NewSource("transactions", func(context.Context, dashboard.Query) (*dashboard.TransactionsPage, error) {
			return &dashboard.TransactionsPage{}, barrier()
		})),
	)

	_, err := aggregator.Load(context.Background(), dashboard.Query{Year: 2024})
	assert.NoError(t, err)
}

/*
TestChain_StopsAtFirstSuccess verifies the source order.
*/
func TestChain_StopsAtFirstSuccess(t *testing.T) {
	var legacyCalls atomic.Int32

	chain := dashboard.NewChain("wallet",
		dashboard.NewSource("preferred", func(context.Context, dashboard.Query) (int, error) { return 1, nil }),
		dashboard.NewSource("legacy", func(context.Context, dashboard.Query) (int, error) {
			legacyCalls.Add(1)
			return 2, nil
		}),
	)

	value, err := chain.Fetch(context.Background(), dashboard.Query{})
	require.NoError(t, err)
	assert.Equal(t, 1, value)
	assert.Zero(t, legacyCalls.Load())
}

/*
TestChain_EmptyIsExhausted verifies that a chain without sources fails.
*/
func TestChain_EmptyIsExhausted(t *testing.T) {
	_, err := dashboard.NewChain[int]("annual").Fetch(context.Background(), dashboard.Query{})

	var exhausted *dashboard.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "annual", exhausted.Section)
}
