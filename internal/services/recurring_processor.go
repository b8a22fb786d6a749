package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"moneta/internal/core"
	"moneta/internal/storage"
)

// RecurringStore is the slice of the repository the processor needs.
type RecurringStore interface {
	ListRecurrenceRules(ctx context.Context) ([]storage.RecurrenceRule, error)
	UpdateRuleLastOccurrence(ctx context.Context, id, date string) error
}

// RecurringProcessor generates plain transactions from recurrence rules as
// their occurrences come due. The first occurrence is created when the rule
// is materialized; this fills in everything after it.
type RecurringProcessor struct {
	store        RecurringStore
	transactions *TransactionService
}

func NewRecurringProcessor(store RecurringStore, transactions *TransactionService) *RecurringProcessor {
	return &RecurringProcessor{
		store:        store,
		transactions: transactions,
	}
}

// ProcessDueRules creates the occurrences of every rule that are due at now
// and returns how many transactions were created.
func (p *RecurringProcessor) ProcessDueRules(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.transactions == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	rules, err := p.store.ListRecurrenceRules(ctx)
	if err != nil {
		return 0, fmt.Errorf("list recurrence rules: %w", err)
	}

	today := now.Format(core.DateLayout)
	slog.InfoContext(ctx, "Processing recurrence rules",
		"total_rules", len(rules),
		"processing_date", today)

	created := 0
	for _, rr := range rules {
		n, err := p.processRule(ctx, rr, today)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to process recurrence rule",
				"rule_id", rr.Rule.ID, "error", err)
			continue
		}
		created += n
	}

	slog.InfoContext(ctx, "Recurrence rule processing complete",
		"created", created,
		"total_checked", len(rules))

	return created, nil
}

func (p *RecurringProcessor) processRule(ctx context.Context, rr storage.RecurrenceRule, today string) (int, error) {
	rule := rr.Rule
	if !rule.IsRule() {
		return 0, fmt.Errorf("transaction %s is not a recurrence rule", rule.ID)
	}

	// The rule's start date is also its first occurrence, generated at
	// materialization time.
	last := rule.Date
	if rr.LastOccurrence != nil {
		last = *rr.LastOccurrence
	}

	created := 0
	for {
		next, err := nextOccurrence(last, *rule.Period, rule.PeriodType)
		if err != nil {
			return created, err
		}
		if next > today {
			break
		}
		if rule.FinalDate != nil && next > *rule.FinalDate {
			break
		}

		occurrence := core.Transaction{
			Category: rule.Category,
			Date:     next,
			Amount:   rule.Amount,
		}
		if _, err := p.transactions.CreateTransaction(ctx, rr.UserID, occurrence); err != nil {
			return created, fmt.Errorf("create occurrence: %w", err)
		}
		if err := p.store.UpdateRuleLastOccurrence(ctx, rule.ID, next); err != nil {
			// The occurrence exists; stop here rather than risk duplicating
			// it next run against a stale marker.
			return created + 1, fmt.Errorf("update last occurrence: %w", err)
		}

		created++
		last = next
	}

	return created, nil
}

// nextOccurrence advances a date by one recurrence step.
func nextOccurrence(date string, period int, periodType core.PeriodType) (string, error) {
	t, err := time.Parse(core.DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("parse occurrence date %q: %w", date, err)
	}

	switch periodType {
	case core.PeriodDay:
		t = t.AddDate(0, 0, period)
	case core.PeriodMonth:
		t = t.AddDate(0, period, 0)
	case core.PeriodYear:
		t = t.AddDate(period, 0, 0)
	default:
		return "", fmt.Errorf("unknown period type: %s", periodType)
	}
	return t.Format(core.DateLayout), nil
}
