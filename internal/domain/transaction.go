package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportYear is the only calendar year the reports look at.
const ReportYear = 2024

// TransactionType is the raw value of the "Details" column.
type TransactionType string

const (
	Credit TransactionType = "CREDIT"
	Debit  TransactionType = "DEBIT"
)

// Transaction represents one row of a card export.
// Amount is invalid (Valid == false) when the raw value could not be read as a number;
// such rows survive loading and are dropped by the filter.
type Transaction struct {
	PostingDate time.Time           // from "Posting Date", zero when the cell was empty
	Description string              // from "Description"
	Category    string              // from "Category"
	Amount      decimal.NullDecimal // from "Amount"; debits are negative
	Type        TransactionType     // from "Details"
	Row         int                 // 1-based data row in the source, header excluded
}

// CategoryTotal is the accumulated absolute amount of one category.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

// Summary is the aggregation of one transaction type.
type Summary struct {
	Type       TransactionType
	Categories []CategoryTotal
	Total      decimal.Decimal

	// Records are the filtered transactions in source order.
	Records []Transaction
}
