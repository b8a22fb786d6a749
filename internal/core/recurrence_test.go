package core

import (
	"testing"
	"time"
)

func recurringDraft() RecurringDraft {
	return RecurringDraft{
		Amount:     "50",
		Category:   "Food",
		Type:       Expense,
		Date:       "2024-01-01",
		FinalDate:  "2024-06-01",
		Period:     "1",
		PeriodType: PeriodMonth,
	}
}

func TestMaterialize(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d := recurringDraft()
	m, err := Materialize(&d, now)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}

	if m.Rule.ID == "" || m.FirstOccurrence.ID == "" || m.Rule.ID == m.FirstOccurrence.ID {
		t.Fatalf("ids must be fresh and distinct: %q vs %q", m.Rule.ID, m.FirstOccurrence.ID)
	}
	if m.Rule.Period == nil || *m.Rule.Period != 1 || m.Rule.PeriodType != PeriodMonth {
		t.Fatalf("rule recurrence fields: %+v", m.Rule)
	}
	if m.Rule.FinalDate != nil {
		t.Fatalf("finalDate must be nil when not explicitly enabled")
	}
	if m.FirstOccurrence.Period != nil {
		t.Fatalf("first occurrence must be a plain instance: %+v", m.FirstOccurrence)
	}
	for _, tx := range []Transaction{m.Rule, m.FirstOccurrence} {
		if tx.Amount != 50 || tx.Category.Name != "Food" || tx.Category.Type != Expense || tx.Date != "2024-01-01" {
			t.Fatalf("draft fields not carried: %+v", tx)
		}
	}

	// Consumed draft resets to the initial state.
	want := NewRecurringDraft(now)
	if d != want {
		t.Fatalf("draft after materialize = %+v, want %+v", d, want)
	}
}

func TestMaterializeWithFinalDate(t *testing.T) {
	d := recurringDraft()
	d.WithFinalDate = true
	m, err := Materialize(&d, time.Now())
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if m.Rule.FinalDate == nil || *m.Rule.FinalDate != "2024-06-01" {
		t.Fatalf("finalDate = %v", m.Rule.FinalDate)
	}
	if m.FirstOccurrence.FinalDate != nil {
		t.Fatalf("first occurrence must not carry a final date")
	}
}

func TestMaterializeValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RecurringDraft)
		want   error
	}{
		{"zero amount", func(d *RecurringDraft) { d.Amount = "0" }, ErrInvalidAmount},
		{"negative amount", func(d *RecurringDraft) { d.Amount = "-3" }, ErrInvalidAmount},
		{"zero period", func(d *RecurringDraft) { d.Period = "0" }, ErrInvalidPeriod},
		{"fractional period", func(d *RecurringDraft) { d.Period = "1.5" }, ErrInvalidPeriod},
		{"empty category", func(d *RecurringDraft) { d.Category = "" }, ErrEmptyCategory},
		{"empty period type", func(d *RecurringDraft) { d.PeriodType = "" }, ErrEmptyPeriodType},
		{"malformed date", func(d *RecurringDraft) { d.Date = "01/02/2024" }, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := recurringDraft()
			tc.mutate(&d)
			before := d
			if _, err := Materialize(&d, time.Now()); err != tc.want {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if d != before {
				t.Fatalf("failed materialize must leave the draft intact")
			}
		})
	}
}
