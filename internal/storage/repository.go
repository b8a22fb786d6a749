package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"moneta/internal/core"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrEmailTaken     = errors.New("email already registered")
	errNoRowsAffected = errors.New("no rows affected")
)

// User is the stored account record.
type User struct {
	ID           string
	Name         string
	Surname      string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// PendingTransaction is the minimal record the sync worker needs.
type PendingTransaction struct {
	UserID      string
	Transaction core.Transaction
	CreatedAt   time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateUser inserts a new account record.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, surname, email, password_hash) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Surname, u.Email, u.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", u.ID, "email", u.Email)
	return nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, name, surname, email, password_hash, created_at FROM users WHERE email = ?`, email))
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, name, surname, email, password_hash, created_at FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Surname, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// CreateTransaction inserts one validated transaction record for a user.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, userID string, t core.Transaction) error {
	var period sql.NullInt64
	var periodType, finalDate sql.NullString
	if t.Period != nil {
		period = sql.NullInt64{Int64: int64(*t.Period), Valid: true}
		periodType = sql.NullString{String: string(t.PeriodType), Valid: true}
		if t.FinalDate != nil {
			finalDate = sql.NullString{String: *t.FinalDate, Valid: true}
		}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, category_type, category_name, tx_date, amount, period, period_type, final_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, userID, string(t.Category.Type), t.Category.Name, t.Date, t.Amount, period, periodType, finalDate)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"transaction_id", t.ID,
		"user_id", userID,
		"transaction_type", string(t.Category.Type),
		"category", t.Category.Name,
		"amount", t.Amount,
		"is_rule", t.IsRule())
	return nil
}

// ListTransactions returns every live transaction for a user, rules
// included, oldest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category_type, category_name, tx_date, amount, period, period_type, final_date
		 FROM transactions WHERE user_id = ? AND deleted_at IS NULL ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

// GetTransaction returns one live transaction and its owner.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (string, core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT user_id, id, category_type, category_name, tx_date, amount, period, period_type, final_date
		 FROM transactions WHERE id = ? AND deleted_at IS NULL`, id)

	var userID string
	var t core.Transaction
	var period sql.NullInt64
	var periodType, finalDate sql.NullString
	err := row.Scan(&userID, &t.ID, &t.Category.Type, &t.Category.Name, &t.Date, &t.Amount, &period, &periodType, &finalDate)
	if errors.Is(err, sql.ErrNoRows) {
		return "", core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return "", core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	applyRecurrence(&t, period, periodType, finalDate)
	return userID, t, nil
}

// SoftDeleteTransaction marks a transaction deleted for its owning user.
func (r *SQLiteRepository) SoftDeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted", "transaction_id", id, "user_id", userID)
	return nil
}

// GetPendingSyncTransactions returns transactions not yet mirrored to the
// export ledger. This backs the worker's catch-up scan for lost messages.
func (r *SQLiteRepository) GetPendingSyncTransactions(ctx context.Context, limit int) ([]PendingTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, id, category_type, category_name, tx_date, amount, period, period_type, final_date, created_at
		 FROM transactions
		 WHERE synced_at IS NULL AND deleted_at IS NULL AND sync_error = 0
		 ORDER BY created_at LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	defer rows.Close()

	var out []PendingTransaction
	for rows.Next() {
		var p PendingTransaction
		var period sql.NullInt64
		var periodType, finalDate sql.NullString
		err := rows.Scan(&p.UserID, &p.Transaction.ID, &p.Transaction.Category.Type, &p.Transaction.Category.Name,
			&p.Transaction.Date, &p.Transaction.Amount, &period, &periodType, &finalDate, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan pending transaction: %w", err)
		}
		applyRecurrence(&p.Transaction, period, periodType, finalDate)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	return out, nil
}

// MarkSynced records a successful ledger export.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	if err := r.exec(ctx, `UPDATE transactions SET synced_at = CURRENT_TIMESTAMP WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "transaction_id", id)
	return nil
}

// MarkSyncError flags a transaction whose export keeps failing.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	if err := r.exec(ctx, `UPDATE transactions SET sync_error = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "transaction_id", id)
	return nil
}

// RecurrenceRule is a rule record plus its occurrence tracking state.
type RecurrenceRule struct {
	UserID         string
	Rule           core.Transaction
	LastOccurrence *string
}

// ListRecurrenceRules returns all live recurrence rules across users.
func (r *SQLiteRepository) ListRecurrenceRules(ctx context.Context) ([]RecurrenceRule, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, id, category_type, category_name, tx_date, amount, period, period_type, final_date, last_occurrence
		 FROM transactions
		 WHERE period IS NOT NULL AND deleted_at IS NULL
		 ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list recurrence rules: %w", err)
	}
	defer rows.Close()

	var out []RecurrenceRule
	for rows.Next() {
		var rr RecurrenceRule
		var period sql.NullInt64
		var periodType, finalDate, lastOccurrence sql.NullString
		err := rows.Scan(&rr.UserID, &rr.Rule.ID, &rr.Rule.Category.Type, &rr.Rule.Category.Name,
			&rr.Rule.Date, &rr.Rule.Amount, &period, &periodType, &finalDate, &lastOccurrence)
		if err != nil {
			return nil, fmt.Errorf("scan recurrence rule: %w", err)
		}
		applyRecurrence(&rr.Rule, period, periodType, finalDate)
		if lastOccurrence.Valid {
			lo := lastOccurrence.String
			rr.LastOccurrence = &lo
		}
		out = append(out, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recurrence rules: %w", err)
	}
	return out, nil
}

// UpdateRuleLastOccurrence records the date of the latest generated occurrence.
func (r *SQLiteRepository) UpdateRuleLastOccurrence(ctx context.Context, id, date string) error {
	if err := r.exec(ctx, `UPDATE transactions SET last_occurrence = ? WHERE id = ?`, date, id); err != nil {
		return fmt.Errorf("update rule last occurrence: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errNoRowsAffected
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var period sql.NullInt64
	var periodType, finalDate sql.NullString
	err := row.Scan(&t.ID, &t.Category.Type, &t.Category.Name, &t.Date, &t.Amount, &period, &periodType, &finalDate)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	applyRecurrence(&t, period, periodType, finalDate)
	return t, nil
}

func applyRecurrence(t *core.Transaction, period sql.NullInt64, periodType, finalDate sql.NullString) {
	if !period.Valid {
		return
	}
	p := int(period.Int64)
	t.Period = &p
	t.PeriodType = core.PeriodType(periodType.String)
	if finalDate.Valid {
		fd := finalDate.String
		t.FinalDate = &fd
	}
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite surfaces constraint failures in the error text;
	// the driver does not export a typed error for them.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
