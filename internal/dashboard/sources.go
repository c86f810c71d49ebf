// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/taibuivan/finboard/internal/platform/constants"
	"github.com/taibuivan/finboard/pkg/slice"
)

// Fetcher performs authenticated GET requests against the REST backend.
// [upstream.Client] implements it.
type Fetcher interface {
	GetJSON(ctx context.Context, path string, query url.Values, token string, target any) error
}

// # Source Names

const (
	sourceAnnualSummary = "annual-summary"
	sourceCashFlow      = "cash-flow"
	sourceWallet        = "wallet"
	sourceSaldo         = "saldo-disponivel"
	sourceTransactions  = "transactions"
	sourceLancamentos   = "lancamentos-diarios"
)

func yearQuery(year int) url.Values {
	return url.Values{"year": {strconv.Itoa(year)}}
}

// # Annual Summary

// AnnualSources returns the preferred and the legacy annual summary source.
func AnnualSources(fetcher Fetcher) []Source[*AnnualSummary] {
	preferred := NewSource(sourceAnnualSummary, func(ctx context.Context, query Query) (*AnnualSummary, error) {
		var summary AnnualSummary
		if err := fetcher.GetJSON(ctx, constants.UpstreamAnnualSummary, yearQuery(query.Year), query.Token, &summary); err != nil {
			return nil, err
		}
		return normalizeAnnual(query.Year, &summary), nil
	})

	legacy := NewSource(sourceCashFlow, func(ctx context.Context, query Query) (*AnnualSummary, error) {
		var raw json.RawMessage
		if err := fetcher.GetJSON(ctx, constants.UpstreamCashFlow, nil, query.Token, &raw); err != nil {
			return nil, err
		}
		records, err := decodeList[cashFlowRecord](raw)
		if err != nil {
			return nil, err
		}
		return reshapeCashFlow(query.Year, records), nil
	})

	return []Source[*AnnualSummary]{preferred, legacy}
}

// # Wallet

// WalletSources returns the preferred and the legacy wallet source.
func WalletSources(fetcher Fetcher) []Source[*WalletSnapshot] {
	preferred := NewSource(sourceWallet, func(ctx context.Context, query Query) (*WalletSnapshot, error) {
		var wallet WalletSnapshot
		if err := fetcher.GetJSON(ctx, constants.UpstreamWallet, yearQuery(query.Year), query.Token, &wallet); err != nil {
			return nil, err
		}
		return normalizeWallet(query.Year, &wallet), nil
	})

	legacy := NewSource(sourceSaldo, func(ctx context.Context, query Query) (*WalletSnapshot, error) {
		var raw json.RawMessage
		if err := fetcher.GetJSON(ctx, constants.UpstreamSaldo, nil, query.Token, &raw); err != nil {
			return nil, err
		}
		records, err := decodeList[saldoRecord](raw)
		if err != nil {
			return nil, err
		}
		return reshapeSaldo(query.Year, records), nil
	})

	return []Source[*WalletSnapshot]{preferred, legacy}
}

func normalizeWallet(year int, wallet *WalletSnapshot) *WalletSnapshot {
	if wallet.Year == 0 {
		wallet.Year = year
	}
	if wallet.BankAccounts == nil {
		wallet.BankAccounts = []WalletLine{}
	}
	if wallet.Cash == nil {
		wallet.Cash = []WalletLine{}
	}
	if wallet.Investments == nil {
		wallet.Investments = []WalletLine{}
	}
	return wallet
}

// # Transactions

// TransactionSources returns the preferred and the legacy transactions source.
func TransactionSources(fetcher Fetcher) []Source[*TransactionsPage] {
	preferred := NewSource(sourceTransactions, func(ctx context.Context, query Query) (*TransactionsPage, error) {
		params := yearQuery(query.Year)
		params.Set("limit", strconv.Itoa(ClampLimit(query.Limit)))
		if query.Cursor != "" {
			params.Set("cursor", query.Cursor)
		}

		var page TransactionsPage
		if err := fetcher.GetJSON(ctx, constants.UpstreamTransactions, params, query.Token, &page); err != nil {
			return nil, err
		}
		if page.Year == 0 {
			page.Year = query.Year
		}
		if page.Items == nil {
			page.Items = []Transaction{}
		}
		page.Items = slice.Take(page.Items, ClampLimit(query.Limit))
		return &page, nil
	})

	legacy := NewSource(sourceLancamentos, func(ctx context.Context, query Query) (*TransactionsPage, error) {
		var raw json.RawMessage
		if err := fetcher.GetJSON(ctx, constants.UpstreamLancamentos, nil, query.Token, &raw); err != nil {
			return nil, err
		}
		records, err := decodeList[lancamentoRecord](raw)
		if err != nil {
			return nil, err
		}
		return reshapeLancamentos(query.Year, ClampLimit(query.Limit), records), nil
	})

	return []Source[*TransactionsPage]{preferred, legacy}
}
