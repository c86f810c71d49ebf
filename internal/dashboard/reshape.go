// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/taibuivan/finboard/pkg/convert"
	"github.com/taibuivan/finboard/pkg/slice"
	"github.com/taibuivan/finboard/pkg/slug"
)

// # Lenient Legacy Values

// amount accepts JSON numbers, numeric strings and Brazilian-formatted strings.
type amount float64

func (a *amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*a = amount(convert.ToFloat64(raw))
		return nil
	}

	value, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("dashboard: invalid amount %s: %w", data, err)
	}
	*a = amount(value)
	return nil
}

// identifier accepts both string and numeric ids.
type identifier string

func (i *identifier) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*i = identifier(raw)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*i = ""
		return nil
	}
	*i = identifier(data)
	return nil
}

// decodeList accepts a bare JSON array or an object wrapping it under
// "data" or "items".
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)

	var list []T
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("dashboard: decode legacy list: %w", err)
		}
		return list, nil
	}

	var wrapped struct {
		Data  json.RawMessage `json:"data"`
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("dashboard: decode legacy envelope: %w", err)
	}

	inner := wrapped.Data
	if len(inner) == 0 {
		inner = wrapped.Items
	}
	if len(inner) == 0 {
		return nil, fmt.Errorf("dashboard: legacy payload has no list")
	}
	if err := json.Unmarshal(inner, &list); err != nil {
		return nil, fmt.Errorf("dashboard: decode legacy list: %w", err)
	}
	return list, nil
}

var dateLayouts = []string{"2006-01-02", "02/01/2006"}

// parseDate reads the calendar date of a legacy record. Timestamps are cut to
// their date part.
func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) > 10 {
		raw = raw[:10]
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// # Annual Summary

// cashFlowRecord is one entry of the legacy cash-flow list.
type cashFlowRecord struct {
	Date         string  `json:"date"`
	TotalRevenue amount  `json:"total_revenue"`
	TotalExpense amount  `json:"total_expense"`
	TotalCost    amount  `json:"total_cost"`
	CaixaFinal   *amount `json:"caixa_final"`
}

/*
reshapeCashFlow turns the legacy cash-flow list into an annual summary.

Records outside year are ignored. Every month appears exactly once, in order,
zero-filled when nothing was booked. A month's caixaFinal is the last reported
caixa_final of that month, otherwise the running balance of the year.
*/
func reshapeCashFlow(year int, records []cashFlowRecord) *AnnualSummary {
	type dated struct {
		at     time.Time
		record cashFlowRecord
	}

	var inYear []dated
	for _, record := range records {
		at, ok := parseDate(record.Date)
		if ok && at.Year() == year {
			inYear = append(inYear, dated{at: at, record: record})
		}
	}
	sort.SliceStable(inYear, func(i, j int) bool { return inYear[i].at.Before(inYear[j].at) })

	monthly := emptyMonths()
	reported := make([]bool, 12)

	for _, entry := range inYear {
		month := &monthly[entry.at.Month()-1]
		month.Revenue += float64(entry.record.TotalRevenue)
		month.Expense += float64(entry.record.TotalExpense)
		month.Cost += float64(entry.record.TotalCost)

		if entry.record.CaixaFinal != nil {
			month.CaixaFinal = float64(*entry.record.CaixaFinal)
			reported[entry.at.Month()-1] = true
		}
	}

	running := 0.0
	for index := range monthly {
		month := &monthly[index]
		month.Balance = month.Revenue - month.Expense - month.Cost
		running += month.Balance
		if !reported[index] {
			month.CaixaFinal = running
		}
	}

	return &AnnualSummary{Year: year, Totals: sumMonths(monthly), Monthly: monthly}
}

// normalizeAnnual forces a preferred answer into twelve ordered months.
func normalizeAnnual(year int, summary *AnnualSummary) *AnnualSummary {
	monthly := emptyMonths()
	for _, entry := range summary.Monthly {
		if entry.Month >= 1 && entry.Month <= 12 {
			monthly[entry.Month-1] = entry
		}
	}

	normalized := *summary
	normalized.Monthly = monthly
	if normalized.Year == 0 {
		normalized.Year = year
	}
	if normalized.Totals == (Totals{}) {
		normalized.Totals = sumMonths(monthly)
	}
	return &normalized
}

func emptyMonths() []MonthlyEntry {
	monthly := make([]MonthlyEntry, 12)
	for index := range monthly {
		monthly[index].Month = index + 1
	}
	return monthly
}

func sumMonths(monthly []MonthlyEntry) Totals {
	return slice.Reduce(monthly, Totals{}, func(totals Totals, entry MonthlyEntry) Totals {
		totals.Revenue += entry.Revenue
		totals.Expense += entry.Expense
		totals.Cost += entry.Cost
		totals.Balance += entry.Balance
		return totals
	})
}

// # Wallet

// saldoRecord is one line of the legacy available-balance list.
type saldoRecord struct {
	Conta string `json:"conta"`
	Tipo  string `json:"tipo"`
	Saldo amount `json:"saldo"`
}

var (
	investmentWords = []string{"invest", "aplicac", "cdb", "lci", "lca", "tesouro", "fundo", "poupanc", "acao", "acoes"}
	cashWords       = []string{"caixa", "dinheiro", "especie", "cash"}
	bankWords       = []string{"banc", "conta", "corrente", "bank"}
)

/*
reshapeSaldo classifies legacy balances into bank accounts, cash and
investments. Matching ignores case and accents. The type decides first and the
account name only when the type is not conclusive. Anything unrecognised is a
bank account.
*/
func reshapeSaldo(year int, records []saldoRecord) *WalletSnapshot {
	wallet := &WalletSnapshot{
		Year:         year,
		BankAccounts: []WalletLine{},
		Cash:         []WalletLine{},
		Investments:  []WalletLine{},
	}

	for _, record := range records {
		label := strings.TrimSpace(record.Conta)
		if label == "" {
			label = strings.TrimSpace(record.Tipo)
		}
		line := WalletLine{Label: label, Amount: float64(record.Saldo)}

		switch classify(record.Tipo, record.Conta) {
		case categoryInvestment:
			wallet.Investments = append(wallet.Investments, line)
		case categoryCash:
			wallet.Cash = append(wallet.Cash, line)
		default:
			wallet.BankAccounts = append(wallet.BankAccounts, line)
		}
	}

	wallet.TotalAvailable = walletTotal(wallet)
	return wallet
}

type category int

const (
	categoryBank category = iota
	categoryCash
	categoryInvestment
)

func classify(texts ...string) category {
	for _, text := range texts {
		switch {
		case slug.HasWord(text, investmentWords...):
			return categoryInvestment
		case slug.HasWord(text, cashWords...):
			return categoryCash
		case slug.HasWord(text, bankWords...):
			return categoryBank
		}
	}
	return categoryBank
}

func walletTotal(wallet *WalletSnapshot) float64 {
	byAmount := func(line WalletLine) float64 { return line.Amount }
	return slice.SumBy(wallet.BankAccounts, byAmount) +
		slice.SumBy(wallet.Cash, byAmount) +
		slice.SumBy(wallet.Investments, byAmount)
}

// # Transactions

// lancamentoRecord is one entry of the legacy daily bookings list.
type lancamentoRecord struct {
	ID        identifier `json:"id"`
	Data      string     `json:"data"`
	Descricao string     `json:"descricao"`
	Tipo      string     `json:"tipo"`
	Valor     amount     `json:"valor"`
	Conta     string     `json:"conta"`
}

var legacyTypes = map[string]string{
	"receita": TypeRevenue,
	"despesa": TypeExpense,
	"custo":   TypeCost,
}

/*
reshapeLancamentos keeps the bookings of year with a known type, newest
first, truncated to limit.
*/
func reshapeLancamentos(year, limit int, records []lancamentoRecord) *TransactionsPage {
	type dated struct {
		at   time.Time
		item Transaction
	}

	kept := []dated{}
	for _, record := range records {
		at, ok := parseDate(record.Data)
		if !ok || at.Year() != year {
			continue
		}
		kind, known := legacyTypes[slug.From(record.Tipo)]
		if !known {
			continue
		}
		kept = append(kept, dated{at: at, item: Transaction{
			ID:          string(record.ID),
			Date:        at.Format("2006-01-02"),
			Description: record.Descricao,
			Type:        kind,
			Amount:      float64(record.Valor),
			Account:     record.Conta,
		}})
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].at.After(kept[j].at) })
	kept = slice.Take(kept, limit)

	return &TransactionsPage{
		Year:  year,
		Items: slice.Map(kept, func(entry dated) Transaction { return entry.item }),
	}
}
