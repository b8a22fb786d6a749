package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"moneta/internal/cache"
	"moneta/internal/core"
)

type fakeStore struct {
	txs       map[string][]core.Transaction
	createErr error
	listCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{txs: make(map[string][]core.Transaction)}
}

func (f *fakeStore) CreateTransaction(_ context.Context, userID string, t core.Transaction) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.txs[userID] = append(f.txs[userID], t)
	return nil
}

func (f *fakeStore) ListTransactions(_ context.Context, userID string) ([]core.Transaction, error) {
	f.listCalls++
	return f.txs[userID], nil
}

func (f *fakeStore) SoftDeleteTransaction(_ context.Context, userID, id string) error {
	list := f.txs[userID]
	for i, t := range list {
		if t.ID == id {
			f.txs[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

type fakePublisher struct {
	published []string
	err       error
}

func (f *fakePublisher) PublishTransactionSync(_ context.Context, transactionID, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, transactionID)
	return nil
}

func expenseTx(id string, name string, amount float64) core.Transaction {
	return core.Transaction{
		ID:       id,
		Category: core.CategoryRef{Type: core.Expense, Name: name},
		Date:     "2024-01-01",
		Amount:   amount,
	}
}

func TestCreateTransaction(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := NewTransactionService(store, pub, nil)

	created, err := svc.CreateTransaction(context.Background(), "u1", expenseTx("", "Food", 20))
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	if created.ID == "" {
		t.Error("expected an assigned id")
	}
	if len(store.txs["u1"]) != 1 {
		t.Fatalf("stored %d transactions, want 1", len(store.txs["u1"]))
	}
	if len(pub.published) != 1 || pub.published[0] != created.ID {
		t.Errorf("published = %v, want [%s]", pub.published, created.ID)
	}
}

func TestCreateTransactionInvalid(t *testing.T) {
	store := newFakeStore()
	svc := NewTransactionService(store, nil, nil)

	_, err := svc.CreateTransaction(context.Background(), "u1", expenseTx("", "Food", -5))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(store.txs["u1"]) != 0 {
		t.Error("invalid transaction should not be stored")
	}
}

func TestCreateTransactionPublishFailureIsNonFatal(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewTransactionService(store, pub, nil)

	if _, err := svc.CreateTransaction(context.Background(), "u1", expenseTx("", "Food", 20)); err != nil {
		t.Fatalf("publish failure should not fail the request: %v", err)
	}
	if len(store.txs["u1"]) != 1 {
		t.Error("transaction should still be saved locally")
	}
}

func TestCreateRecurring(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := NewTransactionService(store, pub, nil)

	d := core.RecurringDraft{
		Amount:     "50",
		Category:   "Bills",
		Type:       core.Expense,
		Date:       "2024-01-01",
		Period:     "1",
		PeriodType: core.PeriodMonth,
	}
	m, err := svc.CreateRecurring(context.Background(), "u1", d)
	if err != nil {
		t.Fatalf("CreateRecurring() error = %v", err)
	}

	if len(store.txs["u1"]) != 2 {
		t.Fatalf("stored %d transactions, want rule plus first occurrence", len(store.txs["u1"]))
	}
	if !m.Rule.IsRule() {
		t.Error("rule should carry recurrence fields")
	}
	if m.FirstOccurrence.IsRule() {
		t.Error("first occurrence should be a plain transaction")
	}
	if len(pub.published) != 2 {
		t.Errorf("published %d sync messages, want 2", len(pub.published))
	}
}

func TestSummaryUsesCache(t *testing.T) {
	store := newFakeStore()
	store.txs["u1"] = []core.Transaction{expenseTx("t1", "Food", 20)}
	summaries := cache.NewLRUCache[core.Summary](10, time.Minute)
	svc := NewTransactionService(store, nil, summaries)
	ctx := context.Background()

	first, err := svc.Summary(ctx, "u1", core.Expense)
	if err != nil || first.Total != 20 {
		t.Fatalf("first summary: %+v, %v", first, err)
	}
	second, err := svc.Summary(ctx, "u1", core.Expense)
	if err != nil || second.Total != 20 {
		t.Fatalf("second summary: %+v, %v", second, err)
	}
	if store.listCalls != 1 {
		t.Errorf("store hit %d times, want 1 (second call cached)", store.listCalls)
	}

	// A write invalidates the cache.
	if _, err := svc.CreateTransaction(ctx, "u1", expenseTx("", "Food", 5)); err != nil {
		t.Fatalf("create: %v", err)
	}
	third, err := svc.Summary(ctx, "u1", core.Expense)
	if err != nil || third.Total != 25 {
		t.Fatalf("summary after write: %+v, %v", third, err)
	}
}

func TestBalance(t *testing.T) {
	store := newFakeStore()
	store.txs["u1"] = []core.Transaction{
		{ID: "t1", Category: core.CategoryRef{Type: core.Income, Name: "Salary"}, Date: "2024-01-01", Amount: 1000},
		expenseTx("t2", "Food", 300),
	}
	svc := NewTransactionService(store, nil, nil)

	balance, err := svc.Balance(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}
	if balance != 700 {
		t.Errorf("Balance() = %v, want 700", balance)
	}
}

func TestDeleteTransaction(t *testing.T) {
	store := newFakeStore()
	store.txs["u1"] = []core.Transaction{expenseTx("t1", "Food", 20)}
	svc := NewTransactionService(store, nil, nil)

	if err := svc.DeleteTransaction(context.Background(), "u1", "t1"); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	if len(store.txs["u1"]) != 0 {
		t.Error("transaction should be gone")
	}
}
