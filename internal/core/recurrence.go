package core

import (
	"time"

	"github.com/google/uuid"
)

// Materialized is the pair of records produced from one recurring draft.
// The rule record retains the recurrence fields for projecting future
// occurrences; the first occurrence is a plain instance so that aggregation
// treats it like any other historical transaction.
type Materialized struct {
	Rule            Transaction `json:"rule"`
	FirstOccurrence Transaction `json:"firstOccurrence"`
}

// Materialize validates the draft and produces the rule record plus its
// first concrete occurrence, each with a fresh id. On success the draft is
// reset to its initial state; on failure the draft is left untouched so the
// caller can correct it.
//
// The caller is responsible for persisting both records.
func Materialize(d *RecurringDraft, now time.Time) (Materialized, error) {
	amount, err := ParseAmount(d.Amount)
	if err != nil {
		return Materialized{}, err
	}
	period, err := parsePeriod(d.Period)
	if err != nil {
		return Materialized{}, err
	}
	if d.Category == "" {
		return Materialized{}, ErrEmptyCategory
	}
	if d.PeriodType == "" {
		return Materialized{}, ErrEmptyPeriodType
	}
	if err := ValidateDate(d.Date); err != nil {
		return Materialized{}, err
	}

	ref := CategoryRef{Type: d.Type, Name: d.Category}

	rule := Transaction{
		ID:         uuid.NewString(),
		Category:   ref,
		Date:       d.Date,
		Amount:     amount,
		Period:     &period,
		PeriodType: d.PeriodType,
	}
	if d.WithFinalDate {
		finalDate := d.FinalDate
		rule.FinalDate = &finalDate
	}

	first := Transaction{
		ID:       uuid.NewString(),
		Category: ref,
		Date:     d.Date,
		Amount:   amount,
	}

	*d = NewRecurringDraft(now)
	return Materialized{Rule: rule, FirstOccurrence: first}, nil
}

func parsePeriod(s string) (int, error) {
	v, err := ParseAmount(s)
	if err != nil || v != float64(int(v)) {
		return 0, ErrInvalidPeriod
	}
	return int(v), nil
}
