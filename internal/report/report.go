// Package report turns category summaries into chart titles, legends and
// itemized detail listings.
package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dvloznov/spending-pie/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Options carries the filter settings shown in the title.
type Options struct {
	StartMonth          int
	EndMonth            int
	ExcludeDescriptions []string
	ExcludeCategories   []string
}

// LegendEntry describes one pie slice.
type LegendEntry struct {
	Category string
	Amount   decimal.Decimal
	Percent  decimal.Decimal
	Label    string
}

// Report is everything a renderer needs to draw one pie.
type Report struct {
	Type   domain.TransactionType
	Title  string
	Total  decimal.Decimal
	Legend []LegendEntry
}

// Build creates the report of one summary.
func Build(s domain.Summary, opts Options) Report {
	r := Report{
		Type:   s.Type,
		Title:  Title(s.Type, opts, s.Total),
		Total:  s.Total,
		Legend: make([]LegendEntry, 0, len(s.Categories)),
	}
	for _, c := range s.Categories {
		pct := Percent(c.Amount, s.Total)
		r.Legend = append(r.Legend, LegendEntry{
			Category: c.Category,
			Amount:   c.Amount,
			Percent:  pct,
			Label:    LegendLabel(c.Category, c.Amount, pct),
		})
	}
	return r
}

// Title is three lines at most:
//
//	DEBIT from 1/2024 to 3/2024
//	  Excl Descr: 'Netflix' & 'Hulu' Excl Cats: 'Transfer'
//	Total: $1,234
func Title(t domain.TransactionType, opts Options, total decimal.Decimal) string {
	lines := []string{
		fmt.Sprintf("%s from %d/%d to %d/%d", t, opts.StartMonth, domain.ReportYear, opts.EndMonth, domain.ReportYear),
	}
	if excl := ExclusionLine(opts.ExcludeDescriptions, opts.ExcludeCategories); excl != "" {
		lines = append(lines, "  "+excl)
	}
	lines = append(lines, "Total: "+Dollars(total))
	return strings.Join(lines, "\n")
}

// ExclusionLine describes the active exclusion terms, or returns "" when there are none.
func ExclusionLine(descriptions, categories []string) string {
	var parts []string
	if s := quotedList("Excl Descr", descriptions); s != "" {
		parts = append(parts, s)
	}
	if s := quotedList("Excl Cats", categories); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

func quotedList(label string, values []string) string {
	if len(values) == 0 {
		return ""
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return label + ": " + strings.Join(quoted, " & ")
}

// Dollars formats an amount rounded half to even to whole dollars with
// thousands separators, e.g. $1,234.
func Dollars(d decimal.Decimal) string {
	n := d.RoundBank(0).IntPart()
	if n < 0 {
		return "-$" + humanize.Comma(-n)
	}
	return "$" + humanize.Comma(n)
}

// Percent is amount/total as a percentage rounded half to even to one decimal
// place. A zero total yields zero.
func Percent(amount, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return amount.Div(total).Mul(hundred).RoundBank(1)
}

// LegendLabel renders "<category>: <pct>% ($<amount>)" with the amount truncated to whole dollars.
func LegendLabel(category string, amount, pct decimal.Decimal) string {
	return fmt.Sprintf("%s: %s%% ($%d)", category, pct.StringFixed(1), amount.Truncate(0).IntPart())
}
