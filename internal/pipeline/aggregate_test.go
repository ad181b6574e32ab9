package pipeline

import (
	"testing"

	"github.com/dvloznov/spending-pie/internal/domain"
	"github.com/shopspring/decimal"
)

// lookup returns the total of a category and whether the summary has it.
func lookup(s domain.Summary, category string) (decimal.Decimal, bool) {
	for _, c := range s.Categories {
		if c.Category == category {
			return c.Amount, true
		}
	}
	return decimal.Zero, false
}

func TestAggregate_Scenario(t *testing.T) {
	records := []domain.Transaction{
		record("2024-01-15", "Fresh Market", "Groceries", "50", domain.Credit),
		record("2024-02-15", "Fresh Market", "Groceries", "30", domain.Credit),
		record("2024-01-20", "Landlord", "Rent", "20", domain.Debit),
	}
	base := Params{StartMonth: 1, EndMonth: 2}

	credit := Aggregate(domain.Credit, Filter(records, base.WithType(domain.Credit)))
	if len(credit.Categories) != 1 {
		t.Fatalf("credit categories = %+v, want only Groceries", credit.Categories)
	}
	if got, ok := lookup(credit, "Groceries"); !ok || !got.Equal(decimal.NewFromInt(80)) {
		t.Errorf("credit Groceries = %s, want 80", got)
	}
	if !credit.Total.Equal(decimal.NewFromInt(80)) {
		t.Errorf("credit total = %s, want 80", credit.Total)
	}

	debit := Aggregate(domain.Debit, Filter(records, base.WithType(domain.Debit)))
	if got, ok := lookup(debit, "Rent"); !ok || !got.Equal(decimal.NewFromInt(20)) || len(debit.Categories) != 1 {
		t.Errorf("debit categories = %+v, want {Rent: 20}", debit.Categories)
	}
	if !debit.Total.Equal(decimal.NewFromInt(20)) {
		t.Errorf("debit total = %s, want 20", debit.Total)
	}
}

func TestAggregate_AbsoluteAmountsAndTotal(t *testing.T) {
	filtered := []domain.Transaction{
		record("2024-01-01", "a", "Dining", "-12.50", domain.Debit),
		record("2024-01-02", "b", "Rent", "-1000", domain.Debit),
		record("2024-01-03", "c", "Dining", "-7.25", domain.Debit),
		record("2024-01-04", "refund", "Dining", "2.00", domain.Debit),
		record("2024-01-05", "no category", "", "-3", domain.Debit),
	}

	s := Aggregate(domain.Debit, filtered)

	if len(s.Categories) != 2 || s.Categories[0].Category != "Dining" || s.Categories[1].Category != "Rent" {
		t.Fatalf("Categories = %+v, want sorted [Dining Rent]", s.Categories)
	}
	if !s.Categories[0].Amount.Equal(decimal.RequireFromString("21.75")) {
		t.Errorf("Dining = %s, want 21.75", s.Categories[0].Amount)
	}

	sum := decimal.Zero
	for _, c := range s.Categories {
		sum = sum.Add(c.Amount)
	}
	if !sum.Equal(s.Total) {
		t.Errorf("sum of categories %s != total %s", sum, s.Total)
	}
	if len(s.Records) != len(filtered) {
		t.Errorf("Records = %d, want %d", len(s.Records), len(filtered))
	}
}

func TestAggregate_CategoryNamesAreCaseSensitive(t *testing.T) {
	s := Aggregate(domain.Debit, []domain.Transaction{
		record("2024-01-01", "a", "Rent", "-20", domain.Debit),
		record("2024-01-02", "b", "rent", "-5", domain.Debit),
	})
	if got, ok := lookup(s, "Rent"); !ok || !got.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Rent = %s, %v; want 20, true", got, ok)
	}
	if len(s.Categories) != 2 {
		t.Errorf("Categories = %+v, want Rent and rent kept apart", s.Categories)
	}
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(domain.Credit, nil)
	if len(s.Categories) != 0 || !s.Total.IsZero() || s.Type != domain.Credit {
		t.Errorf("Aggregate(nil) = %+v", s)
	}
}
