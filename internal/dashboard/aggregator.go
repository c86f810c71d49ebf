// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/finboard/internal/platform/ctxutil"
)

// LoadError reports the sections whose every source failed.
type LoadError struct {
	Year     int
	Sections []*ExhaustedError
}

func (e *LoadError) Error() string {
	names := make([]string, 0, len(e.Sections))
	for _, section := range e.Sections {
		names = append(names, section.Section)
	}
	return fmt.Sprintf("dashboard: year %d: failed sections: %s", e.Year, strings.Join(names, ", "))
}

func (e *LoadError) Unwrap() []error {
	errs := make([]error, 0, len(e.Sections))
	for _, section := range e.Sections {
		errs = append(errs, section)
	}
	return errs
}

// Aggregator loads the three dashboard sections.
type Aggregator struct {
	annual       Chain[*AnnualSummary]
	wallet       Chain[*WalletSnapshot]
	transactions Chain[*TransactionsPage]
}

// NewAggregator creates an aggregator from explicit chains.
func NewAggregator(annual Chain[*AnnualSummary], wallet Chain[*WalletSnapshot], transactions Chain[*TransactionsPage]) *Aggregator {
	return &Aggregator{annual: annual, wallet: wallet, transactions: transactions}
}

// NewUpstreamAggregator wires the preferred and legacy backend endpoints.
func NewUpstreamAggregator(fetcher Fetcher) *Aggregator {
	return NewAggregator(
		NewChain(SectionAnnual, AnnualSources(fetcher)...),
		NewChain(SectionWallet, WalletSources(fetcher)...),
		NewChain(SectionTransactions, TransactionSources(fetcher)...),
	)
}

/*
Load fetches every section of the year concurrently.

Description: The three chains run side by side. A failing chain never cancels
the others, and Load returns only once all of them have settled.

Parameters:
  - ctx: context.Context
  - query: Query (token, year, transaction limit and cursor)

Returns:
  - *Dashboard: The sections that loaded (nil on failure)
  - error: *LoadError when at least one section exhausted its sources
*/
func (a *Aggregator) Load(ctx context.Context, query Query) (*Dashboard, error) {
	startTime := time.Now()
	query.Limit = ClampLimit(query.Limit)

	result := &Dashboard{Year: query.Year}
	failures := make([]error, 3)

	var group errgroup.Group
	group.Go(func() error {
		result.Annual, failures[0] = a.annual.Fetch(ctx, query)
		return nil
	})
	group.Go(func() error {
		result.Wallet, failures[1] = a.wallet.Fetch(ctx, query)
		return nil
	})
	group.Go(func() error {
		result.Transactions, failures[2] = a.transactions.Fetch(ctx, query)
		return nil
	})
	_ = group.Wait()

	loadErr := &LoadError{Year: query.Year}
	for _, err := range failures {
		var exhausted *ExhaustedError
		if errors.As(err, &exhausted) {
			loadErr.Sections = append(loadErr.Sections, exhausted)
		}
	}

	logger := ctxutil.GetLogger(ctx)
	if len(loadErr.Sections) > 0 {
		logger.WarnContext(ctx, "dashboard_load_failed",
			slog.Int("year", query.Year),
			slog.Any("error", loadErr),
			slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
		)
		return nil, loadErr
	}

	logger.DebugContext(ctx, "dashboard_loaded",
		slog.Int("year", query.Year),
		slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
	)
	return result, nil
}
