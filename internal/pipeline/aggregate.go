package pipeline

import (
	"sort"

	"github.com/dvloznov/spending-pie/internal/domain"
	"github.com/shopspring/decimal"
)

// Aggregate sums absolute amounts per category. Categories come back sorted by
// name and Total is their sum. Records without a category are kept in
// Records but belong to no group.
func Aggregate(t domain.TransactionType, filtered []domain.Transaction) domain.Summary {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range filtered {
		if tx.Category == "" || !tx.Amount.Valid {
			continue
		}
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount.Decimal.Abs())
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	summary := domain.Summary{
		Type:       t,
		Categories: make([]domain.CategoryTotal, 0, len(names)),
		Total:      decimal.Zero,
		Records:    filtered,
	}
	for _, name := range names {
		amount := totals[name]
		summary.Categories = append(summary.Categories, domain.CategoryTotal{Category: name, Amount: amount})
		summary.Total = summary.Total.Add(amount)
	}
	return summary
}
