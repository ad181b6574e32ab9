package pipeline

import (
	"fmt"
	"strings"

	"github.com/dvloznov/spending-pie/internal/domain"
)

// Params selects the transactions that make up one report.
type Params struct {
	Type                domain.TransactionType
	StartMonth          int
	EndMonth            int
	ExcludeDescriptions []string
	ExcludeCategories   []string
}

// Validate checks the month range.
func (p Params) Validate() error {
	if p.StartMonth < 1 || p.StartMonth > 12 {
		return fmt.Errorf("invalid start month %d: must be between 1 and 12", p.StartMonth)
	}
	if p.EndMonth < 1 || p.EndMonth > 12 {
		return fmt.Errorf("invalid end month %d: must be between 1 and 12", p.EndMonth)
	}
	if p.StartMonth > p.EndMonth {
		return fmt.Errorf("start month %d is after end month %d", p.StartMonth, p.EndMonth)
	}
	return nil
}

// WithType returns a copy of p for another transaction type.
func (p Params) WithType(t domain.TransactionType) Params {
	p.Type = t
	return p
}

// Filter keeps, in order, the records of p.Type posted in ReportYear between the
// start and end months whose description and category match no exclusion term
// and whose amount is a number.
func Filter(records []domain.Transaction, p Params) []domain.Transaction {
	descTerms := lowerTerms(p.ExcludeDescriptions)
	catTerms := lowerTerms(p.ExcludeCategories)

	out := make([]domain.Transaction, 0, len(records))
	for _, tx := range records {
		if tx.Type != p.Type {
			continue
		}
		if tx.PostingDate.IsZero() || tx.PostingDate.Year() != domain.ReportYear {
			continue
		}
		if m := int(tx.PostingDate.Month()); m < p.StartMonth || m > p.EndMonth {
			continue
		}
		if containsAny(tx.Description, descTerms) || containsAny(tx.Category, catTerms) {
			continue
		}
		if !tx.Amount.Valid {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// lowerTerms drops empty terms; an empty term would match every record.
func lowerTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t == "" {
			continue
		}
		out = append(out, strings.ToLower(t))
	}
	return out
}

func containsAny(s string, lowered []string) bool {
	if len(lowered) == 0 {
		return false
	}
	s = strings.ToLower(s)
	for _, t := range lowered {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
