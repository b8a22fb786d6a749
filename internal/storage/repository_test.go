package storage

import (
	"context"
	"path/filepath"
	"testing"

	"moneta/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *SQLiteRepository, id string) User {
	t.Helper()
	u := User{ID: id, Name: "Ada", Surname: "Lovelace", Email: id + "@example.com", PasswordHash: "x"}
	if err := repo.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestUserRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo, "u1")

	byEmail, err := repo.GetUserByEmail(ctx, u.Email)
	if err != nil || byEmail.ID != "u1" {
		t.Fatalf("by email: %+v, %v", byEmail, err)
	}
	byID, err := repo.GetUserByID(ctx, "u1")
	if err != nil || byID.Email != u.Email {
		t.Fatalf("by id: %+v, %v", byID, err)
	}

	if _, err := repo.GetUserByID(ctx, "missing"); err != ErrNotFound {
		t.Fatalf("missing user: %v", err)
	}

	dup := User{ID: "u2", Name: "B", Surname: "C", Email: u.Email, PasswordHash: "y"}
	if err := repo.CreateUser(ctx, dup); err != ErrEmailTaken {
		t.Fatalf("duplicate email: %v", err)
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1")

	period := 2
	finalDate := "2024-12-31"
	rule := core.Transaction{
		ID:         "t-rule",
		Category:   core.CategoryRef{Type: core.Expense, Name: "Bills"},
		Date:       "2024-01-01",
		Amount:     40,
		Period:     &period,
		PeriodType: core.PeriodMonth,
		FinalDate:  &finalDate,
	}
	plain := core.Transaction{
		ID:       "t-plain",
		Category: core.CategoryRef{Type: core.Income, Name: "Salary"},
		Date:     "2024-01-05",
		Amount:   1000,
	}

	for _, tx := range []core.Transaction{rule, plain} {
		if err := repo.CreateTransaction(ctx, "u1", tx); err != nil {
			t.Fatalf("create %s: %v", tx.ID, err)
		}
	}

	list, err := repo.ListTransactions(ctx, "u1")
	if err != nil || len(list) != 2 {
		t.Fatalf("list: %v items, err=%v", len(list), err)
	}
	got := list[0]
	if got.ID != "t-rule" || got.Period == nil || *got.Period != 2 || got.PeriodType != core.PeriodMonth {
		t.Fatalf("rule fields lost: %+v", got)
	}
	if got.FinalDate == nil || *got.FinalDate != finalDate {
		t.Fatalf("final date lost: %+v", got)
	}
	if list[1].Period != nil {
		t.Fatalf("plain instance grew recurrence fields: %+v", list[1])
	}

	owner, single, err := repo.GetTransaction(ctx, "t-plain")
	if err != nil || owner != "u1" || single.Amount != 1000 {
		t.Fatalf("get: owner=%q tx=%+v err=%v", owner, single, err)
	}
}

func TestSoftDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1")
	seedUser(t, repo, "u2")

	tx := core.Transaction{
		ID:       "t1",
		Category: core.CategoryRef{Type: core.Expense, Name: "Food"},
		Date:     "2024-01-01",
		Amount:   20,
	}
	if err := repo.CreateTransaction(ctx, "u1", tx); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Another user cannot delete someone else's record.
	if err := repo.SoftDeleteTransaction(ctx, "u2", "t1"); err != ErrNotFound {
		t.Fatalf("cross-user delete: %v", err)
	}
	if err := repo.SoftDeleteTransaction(ctx, "u1", "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.SoftDeleteTransaction(ctx, "u1", "t1"); err != ErrNotFound {
		t.Fatalf("double delete: %v", err)
	}

	list, err := repo.ListTransactions(ctx, "u1")
	if err != nil || len(list) != 0 {
		t.Fatalf("deleted transaction still listed: %v, %v", list, err)
	}
}

func TestPendingSyncLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1")

	for _, id := range []string{"t1", "t2"} {
		tx := core.Transaction{
			ID:       id,
			Category: core.CategoryRef{Type: core.Expense, Name: "Food"},
			Date:     "2024-01-01",
			Amount:   5,
		}
		if err := repo.CreateTransaction(ctx, "u1", tx); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	pending, err := repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil || len(pending) != 2 {
		t.Fatalf("pending: %v items, err=%v", len(pending), err)
	}
	if pending[0].UserID != "u1" {
		t.Fatalf("pending owner = %q", pending[0].UserID)
	}

	if err := repo.MarkSynced(ctx, "t1"); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	if err := repo.MarkSyncError(ctx, "t2"); err != nil {
		t.Fatalf("mark sync error: %v", err)
	}

	pending, err = repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil || len(pending) != 0 {
		t.Fatalf("pending after marks: %v items, err=%v", len(pending), err)
	}
}
