package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"moneta/internal/cache"
	"moneta/internal/core"
	"moneta/internal/log"
)

// TransactionStore is the persistence port used by the service layer.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, userID string, t core.Transaction) error
	ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
	SoftDeleteTransaction(ctx context.Context, userID, id string) error
}

// SyncPublisher pushes ledger export requests onto the message queue.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, transactionID, userID string) error
}

// TransactionService orchestrates transaction operations across SQLite,
// AMQP and the summary cache.
type TransactionService struct {
	store     TransactionStore
	publisher SyncPublisher
	summaries cache.Cache[core.Summary]
}

func NewTransactionService(store TransactionStore, publisher SyncPublisher, summaries cache.Cache[core.Summary]) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		summaries: summaries,
	}
}

// CreateTransaction saves a transaction locally and publishes a sync message.
// An empty ID gets a fresh one assigned.
func (s *TransactionService) CreateTransaction(ctx context.Context, userID string, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.CreateTransaction(ctx, userID, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.invalidateSummaries(userID)

	fields := log.NewFields().
		WithOperation(log.OpCreate).
		WithTransaction(t.ID, t.Category.Name, string(t.Category.Type), t.Amount)
	fields[log.FieldUserID] = userID
	slog.InfoContext(ctx, "Transaction created", fields.ToSlice()...)

	// Publish async sync message (non-blocking)
	if err := s.publishSyncMessage(ctx, t.ID, userID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"transaction_id", t.ID, "error", err)
		// Don't fail the request - transaction is saved locally
	}

	return t, nil
}

// CreateRecurring materializes a recurring draft into a rule and its first
// occurrence and persists both.
func (s *TransactionService) CreateRecurring(ctx context.Context, userID string, d core.RecurringDraft) (core.Materialized, error) {
	m, err := core.Materialize(&d, time.Now())
	if err != nil {
		return core.Materialized{}, err
	}

	for _, t := range []core.Transaction{m.Rule, m.FirstOccurrence} {
		if err := s.store.CreateTransaction(ctx, userID, t); err != nil {
			return core.Materialized{}, fmt.Errorf("save recurring transaction: %w", err)
		}
		if err := s.publishSyncMessage(ctx, t.ID, userID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync message",
				"transaction_id", t.ID, "error", err)
		}
	}
	s.invalidateSummaries(userID)

	return m, nil
}

// ListTransactions returns the user's live transactions, oldest first.
func (s *TransactionService) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

// DeleteTransaction soft deletes one of the user's transactions.
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, id string) error {
	if err := s.store.SoftDeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	s.invalidateSummaries(userID)
	return nil
}

// Summary aggregates the user's transactions of one type into a total and
// a per-category breakdown. Results are cached per user and type.
func (s *TransactionService) Summary(ctx context.Context, userID string, t core.TransactionType) (core.Summary, error) {
	key := summaryKey(userID, t)
	if s.summaries != nil {
		if cached, ok := s.summaries.Get(key); ok {
			return cached, nil
		}
	}

	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return core.Summary{}, fmt.Errorf("load transactions: %w", err)
	}
	summary := core.Aggregate(txs, t)

	if s.summaries != nil {
		s.summaries.Set(key, summary)
	}
	return summary, nil
}

// Balance returns total income minus total expenses.
func (s *TransactionService) Balance(ctx context.Context, userID string) (float64, error) {
	income, err := s.Summary(ctx, userID, core.Income)
	if err != nil {
		return 0, err
	}
	expense, err := s.Summary(ctx, userID, core.Expense)
	if err != nil {
		return 0, err
	}
	return income.Total - expense.Total, nil
}

func (s *TransactionService) publishSyncMessage(ctx context.Context, transactionID, userID string) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.publisher.PublishTransactionSync(ctx, transactionID, userID)
}

func (s *TransactionService) invalidateSummaries(userID string) {
	if s.summaries == nil {
		return
	}
	s.summaries.Delete(summaryKey(userID, core.Income))
	s.summaries.Delete(summaryKey(userID, core.Expense))
}

func summaryKey(userID string, t core.TransactionType) string {
	return userID + ":" + string(t)
}
