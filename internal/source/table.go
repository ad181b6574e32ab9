package source

import (
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/spending-pie/internal/domain"
	"github.com/shopspring/decimal"
)

// Column names expected in the export header.
const (
	ColumnPostingDate = "Posting Date"
	ColumnDescription = "Description"
	ColumnCategory    = "Category"
	ColumnAmount      = "Amount"
	ColumnDetails     = "Details"
)

var requiredColumns = []string{
	ColumnPostingDate,
	ColumnDescription,
	ColumnCategory,
	ColumnAmount,
	ColumnDetails,
}

// dateLayouts are tried in order. Card issuers export US-style dates.
var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
	"2006/01/02",
	"01/02/06",
	"01-02-06",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

type columnIndex map[string]int

// indexHeader locates the required columns. Names are matched exactly after trimming.
func indexHeader(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, fmt.Sprintf("%q", col))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}

func (c columnIndex) cell(record []string, column string) string {
	i := c[column]
	if i >= len(record) {
		return ""
	}
	return record[i]
}

// decodeRows turns a header plus data rows into transactions. Blank rows are skipped.
func decodeRows(header []string, rows [][]string) ([]domain.Transaction, error) {
	idx, err := indexHeader(header)
	if err != nil {
		return nil, err
	}

	txs := make([]domain.Transaction, 0, len(rows))
	for i, record := range rows {
		if isBlank(record) {
			continue
		}
		tx, err := idx.decode(record, i+1)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (c columnIndex) decode(record []string, row int) (domain.Transaction, error) {
	date, err := parsePostingDate(c.cell(record, ColumnPostingDate))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("row %d: %w", row, err)
	}
	return domain.Transaction{
		PostingDate: date,
		Description: c.cell(record, ColumnDescription),
		Category:    c.cell(record, ColumnCategory),
		Amount:      parseAmount(c.cell(record, ColumnAmount)),
		Type:        domain.TransactionType(c.cell(record, ColumnDetails)),
		Row:         row,
	}, nil
}

// parsePostingDate returns the zero time for an empty cell.
func parsePostingDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid %s %q", ColumnPostingDate, s)
}

// parseAmount never fails: values that are not numbers come back invalid.
func parseAmount(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
