package memory

import (
	"context"
	"testing"

	"moneta/internal/core"
)

func TestMemoryStoreAppend(t *testing.T) {
	s := New()
	tx := core.Transaction{
		ID:       "t1",
		Category: core.CategoryRef{Type: core.Expense, Name: "Food"},
		Date:     "2024-01-01",
		Amount:   12.5,
	}

	ref, err := s.Append(context.Background(), "u1", tx)
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	entries := s.Entries()
	if len(entries) != 1 || entries[0].UserID != "u1" || entries[0].Transaction.ID != "t1" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	s := New()
	_, err := s.Append(context.Background(), "u1", core.Transaction{ID: "t1"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(s.Entries()) != 0 {
		t.Fatal("invalid transaction should not be stored")
	}
}
