package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"moneta/internal/amqp"
	"moneta/internal/core"
	"moneta/internal/ledger"
	"moneta/internal/log"
	"moneta/internal/storage"
)

// SyncWorker exports transactions from SQLite to the external ledger
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	ledger    ledger.TransactionWriter
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, writer ledger.TransactionWriter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		ledger:    writer,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single transaction sync message from AMQP
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"transaction_id", msg.TransactionID,
		"user_id", msg.UserID)

	userID, tx, err := w.storage.GetTransaction(ctx, msg.TransactionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Deleted before we got to it, nothing to export.
			slog.WarnContext(ctx, "Transaction gone, skipping sync",
				"transaction_id", msg.TransactionID)
			return nil
		}
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	return w.export(ctx, userID, tx.ID, tx)
}

func (w *SyncWorker) export(ctx context.Context, userID, id string, tx core.Transaction) error {
	rowRef, err := w.ledger.Append(ctx, userID, tx)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error",
				"transaction_id", id, "error", markErr)
		}
		return fmt.Errorf("append to ledger: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}

	slog.InfoContext(ctx, "Transaction exported to ledger",
		log.FieldTransactionID, id,
		log.FieldUserID, userID,
		log.FieldSheetRef, rowRef)
	return nil
}

// ProcessPendingTransactions exports any transactions that haven't been
// synced yet. This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingTransactions(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, p := range pending {
		if err := w.export(ctx, p.UserID, p.Transaction.ID, p.Transaction); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction",
				"transaction_id", p.Transaction.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck drains the pending backlog at worker startup. Useful to
// recover from missed AMQP messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0
	for _, p := range pending {
		if err := w.export(ctx, p.UserID, p.Transaction.ID, p.Transaction); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction during startup",
				"transaction_id", p.Transaction.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}
