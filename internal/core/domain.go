package core

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	Income  TransactionType = "Income"
	Expense TransactionType = "Expense"
)

const (
	PeriodDay   PeriodType = "Day"
	PeriodMonth PeriodType = "Month"
	PeriodYear  PeriodType = "Year"
)

// DateLayout is the calendar-date format used on the wire and in drafts.
const DateLayout = "2006-01-02"

type (
	TransactionType string

	PeriodType string

	// CategoryRef ties a transaction to a catalog entry.
	CategoryRef struct {
		Type TransactionType `json:"type"`
		Name string          `json:"name"`
	}

	// Transaction is a single cash movement, or, when Period is set,
	// a recurrence rule describing a repeating one.
	Transaction struct {
		ID       string      `json:"id"`
		Category CategoryRef `json:"category"`
		Date     string      `json:"date"`
		Amount   float64     `json:"amount"`

		// Recurrence rule fields. A nil Period marks a plain instance.
		Period     *int       `json:"period,omitempty"`
		PeriodType PeriodType `json:"periodType,omitempty"`
		FinalDate  *string    `json:"finalDate,omitempty"`
	}

	// Draft holds form-in-progress transaction fields. Amount and Date stay
	// strings until finalization; coercion happens when the draft is turned
	// into a Transaction.
	Draft struct {
		Amount   string          `json:"amount"`
		Category string          `json:"category"`
		Type     TransactionType `json:"type"`
		Date     string          `json:"date"`
	}

	// RecurringDraft is the periodical-form counterpart of Draft.
	RecurringDraft struct {
		Amount        string          `json:"amount"`
		Category      string          `json:"category"`
		Type          TransactionType `json:"type"`
		Date          string          `json:"date"`
		FinalDate     string          `json:"finalDate"`
		Period        string          `json:"period"`
		PeriodType    PeriodType      `json:"periodType"`
		WithFinalDate bool            `json:"withFinalDate"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidPeriod   = errors.New("invalid period")
	ErrEmptyCategory   = errors.New("empty category")
	ErrEmptyPeriodType = errors.New("empty period type")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidType     = errors.New("invalid transaction type")
)

// IsRule reports whether the transaction is a recurrence rule rather than
// a plain instance.
func (t Transaction) IsRule() bool {
	return t.Period != nil
}

func (t Transaction) Validate() error {
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Category.Name) == "" {
		return ErrEmptyCategory
	}
	if t.Category.Type != Income && t.Category.Type != Expense {
		return ErrInvalidType
	}
	if err := ValidateDate(t.Date); err != nil {
		return err
	}
	if t.Period != nil {
		if *t.Period <= 0 {
			return ErrInvalidPeriod
		}
		if t.PeriodType == "" {
			return ErrEmptyPeriodType
		}
		if t.FinalDate != nil {
			if err := ValidateDate(*t.FinalDate); err != nil {
				return err
			}
		}
	}
	return nil
}

// ParseAmount coerces a draft amount string to a strictly positive number.
// Both dot and comma decimal separators are accepted.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// ValidateDate checks that s is a well-formed calendar date.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// NewDraft returns the initial draft state: income type, today's date,
// empty amount and category.
func NewDraft(now time.Time) Draft {
	return Draft{Type: Income, Date: now.Format(DateLayout)}
}

// Complete reports whether every field needed for finalization is set.
func (d Draft) Complete() bool {
	return d.Amount != "" && d.Category != "" && d.Type != "" && d.Date != ""
}

// NewRecurringDraft returns the initial periodical-form state: income type,
// period 1 month, start and final date today.
func NewRecurringDraft(now time.Time) RecurringDraft {
	today := now.Format(DateLayout)
	return RecurringDraft{
		Type:       Income,
		Date:       today,
		FinalDate:  today,
		Period:     "1",
		PeriodType: PeriodMonth,
	}
}
