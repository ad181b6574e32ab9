package report

import (
	"fmt"
	"io"

	"github.com/dvloznov/spending-pie/internal/domain"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
)

const detailDateLayout = "2006-01-02"

var totalColor = color.New(color.Bold)

// PrintDetails lists, for every requested category, the matching records of the
// summary followed by their total. Amounts are negated so that debits, stored
// negative, read as positive spend.
func PrintDetails(w io.Writer, s domain.Summary, categories []string) error {
	for _, category := range categories {
		total := decimal.Zero
		for _, tx := range s.Records {
			if tx.Category != category || !tx.Amount.Valid {
				continue
			}
			if _, err := fmt.Fprintf(w, "%s %s $ %s\n",
				tx.PostingDate.Format(detailDateLayout), tx.Description, tx.Amount.Decimal.Neg()); err != nil {
				return fmt.Errorf("PrintDetails: writing %q: %w", category, err)
			}
			total = total.Add(tx.Amount.Decimal)
		}
		if _, err := totalColor.Fprintf(w, "Total = $ %s\n", total.Neg()); err != nil {
			return fmt.Errorf("PrintDetails: writing %q total: %w", category, err)
		}
	}
	return nil
}
