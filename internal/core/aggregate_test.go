package core

import (
	"reflect"
	"testing"
)

func tx(typ TransactionType, name string, amount float64) Transaction {
	return Transaction{
		ID:       "id-" + name,
		Category: CategoryRef{Type: typ, Name: name},
		Date:     "2024-01-01",
		Amount:   amount,
	}
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil, Expense)
	if s.Total != 0 || len(s.Breakdown) != 0 {
		t.Fatalf("empty input: %+v", s)
	}
}

func TestAggregateSumsPerCategory(t *testing.T) {
	txs := []Transaction{
		tx(Expense, "Food", 20),
		tx(Expense, "Food", 5),
	}
	s := Aggregate(txs, Expense)
	if s.Total != 25 {
		t.Fatalf("total = %v, want 25", s.Total)
	}
	if len(s.Breakdown) != 1 || s.Breakdown[0].Label != "Food" || s.Breakdown[0].Amount != 25 {
		t.Fatalf("breakdown = %+v", s.Breakdown)
	}
}

func TestAggregateFiltersByType(t *testing.T) {
	txs := []Transaction{
		tx(Expense, "Food", 20),
		tx(Income, "Salary", 1000),
	}
	if got := Aggregate(txs, Income).Total; got != 1000 {
		t.Fatalf("income total = %v", got)
	}
	if got := Aggregate(txs, Expense).Total; got != 20 {
		t.Fatalf("expense total = %v", got)
	}
}

func TestAggregateUnknownCategoryCountsTowardTotalOnly(t *testing.T) {
	txs := []Transaction{
		tx(Expense, "Food", 20),
		tx(Expense, "Legacy stuff", 30),
	}
	s := Aggregate(txs, Expense)
	if s.Total != 50 {
		t.Fatalf("total = %v, want 50", s.Total)
	}
	if len(s.Breakdown) != 1 || s.Breakdown[0].Label != "Food" {
		t.Fatalf("breakdown should drop unknown names: %+v", s.Breakdown)
	}
}

func TestAggregateIncludesRuleRecordsOnce(t *testing.T) {
	period := 1
	rule := tx(Expense, "Bills", 40)
	rule.Period = &period
	rule.PeriodType = PeriodMonth

	s := Aggregate([]Transaction{rule, tx(Expense, "Bills", 40)}, Expense)
	if s.Total != 80 {
		t.Fatalf("total = %v, want 80 (rule counted once per record)", s.Total)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	r := NewRegistry()
	txs := []Transaction{tx(Expense, "Food", 20), tx(Expense, "Car", 12.5)}
	first := r.Aggregate(txs, Expense)
	second := r.Aggregate(txs, Expense)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated aggregation diverged: %+v vs %+v", first, second)
	}
}

func TestAggregateBreakdownInCatalogOrder(t *testing.T) {
	txs := []Transaction{
		tx(Expense, "Pets", 3),
		tx(Expense, "Bills", 10),
		tx(Expense, "Food", 7),
	}
	s := Aggregate(txs, Expense)
	want := []string{"Bills", "Food", "Pets"}
	if len(s.Breakdown) != len(want) {
		t.Fatalf("breakdown = %+v", s.Breakdown)
	}
	for i, label := range want {
		if s.Breakdown[i].Label != label {
			t.Fatalf("breakdown[%d] = %q, want %q", i, s.Breakdown[i].Label, label)
		}
	}
}

func TestSummaryChart(t *testing.T) {
	s := Aggregate([]Transaction{tx(Expense, "Food", 25)}, Expense)
	chart := s.Chart()
	if !reflect.DeepEqual(chart.Labels, []string{"Food"}) {
		t.Fatalf("labels = %v", chart.Labels)
	}
	if len(chart.Datasets) != 1 {
		t.Fatalf("datasets = %+v", chart.Datasets)
	}
	ds := chart.Datasets[0]
	if !reflect.DeepEqual(ds.Data, []float64{25}) || len(ds.BackgroundColor) != 1 {
		t.Fatalf("dataset = %+v", ds)
	}
	if ds.BackgroundColor[0] == "" {
		t.Fatalf("missing color")
	}
}
