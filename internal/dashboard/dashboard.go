// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package dashboard loads the year-scoped financial overview of one tenant.

Three sections are fetched concurrently: the annual summary, the wallet
snapshot and the most recent transactions. Each section is an ordered chain of
data sources. The purpose-built endpoint comes first; an older generic
endpoint follows and its answer is reshaped into the same type.

Architecture:

  - Source[T]: one way of obtaining a section (preferred or legacy endpoint).
  - Chain[T]: tries sources in order, returns the first success or an
    [ExhaustedError] listing every attempt.
  - Aggregator: fans out the three chains and waits for all of them.
  - Tracker: discards results of a year selection that is no longer current.
*/
package dashboard

// # Section Names

const (
	SectionAnnual       = "annual"
	SectionWallet       = "wallet"
	SectionTransactions = "transactions"
)

// # Transaction Types

const (
	TypeRevenue = "revenue"
	TypeExpense = "expense"
	TypeCost    = "cost"
)

// # Limits

const (
	MinYear = 1900
	MaxYear = 2200

	DefaultTransactionLimit = 10
	MaxTransactionLimit     = 100
)

// # Domain Models

// Query scopes one dashboard load.
type Query struct {
	Token  string
	Year   int
	Limit  int
	Cursor string
}

// Totals sums a year of monthly entries.
type Totals struct {
	Revenue float64 `json:"revenue"`
	Expense float64 `json:"expense"`
	Cost    float64 `json:"cost"`
	Balance float64 `json:"balance"`
}

// MonthlyEntry is one month of the annual summary. Month runs from 1 to 12.
type MonthlyEntry struct {
	Month      int     `json:"month"`
	Revenue    float64 `json:"revenue"`
	Expense    float64 `json:"expense"`
	Cost       float64 `json:"cost"`
	Balance    float64 `json:"balance"`
	CaixaFinal float64 `json:"caixaFinal"`
}

// YTDComparison compares the year to date with the same period of the previous year.
type YTDComparison struct {
	PreviousYear  int     `json:"previousYear"`
	Current       Totals  `json:"current"`
	Previous      Totals  `json:"previous"`
	ChangePercent float64 `json:"changePercent"`
}

// AnnualSummary always carries twelve monthly entries, January first.
type AnnualSummary struct {
	Year          int            `json:"year"`
	Totals        Totals         `json:"totals"`
	Monthly       []MonthlyEntry `json:"monthly"`
	YTDComparison *YTDComparison `json:"ytdComparison,omitempty"`
}

// WalletLine is one account balance.
type WalletLine struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// WalletSnapshot splits the available balance into three categories.
type WalletSnapshot struct {
	Year           int          `json:"year"`
	BankAccounts   []WalletLine `json:"bankAccounts"`
	Cash           []WalletLine `json:"cash"`
	Investments    []WalletLine `json:"investments"`
	TotalAvailable float64      `json:"totalAvailable"`
}

// Transaction is one booked entry.
type Transaction struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Account     string  `json:"account"`
}

// TransactionsPage is the newest-first page of transactions of one year.
type TransactionsPage struct {
	Year       int           `json:"year"`
	Items      []Transaction `json:"items"`
	NextCursor *string       `json:"nextCursor,omitempty"`
}

// Dashboard is the aggregated result of one load.
type Dashboard struct {
	Year         int               `json:"year"`
	Annual       *AnnualSummary    `json:"annual"`
	Wallet       *WalletSnapshot   `json:"wallet"`
	Transactions *TransactionsPage `json:"transactions"`
}

// ClampLimit bounds a requested transaction count.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultTransactionLimit
	case limit > MaxTransactionLimit:
		return MaxTransactionLimit
	default:
		return limit
	}
}
