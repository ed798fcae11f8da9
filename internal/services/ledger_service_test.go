package services

import (
	"context"
	"errors"
	"testing"

	"skeletonkey/internal/core"
	"skeletonkey/internal/store"
	"skeletonkey/internal/store/memory"
)

func newTestService() (*LedgerService, *memory.Store) {
	mem := memory.New()
	return NewLedgerService(mem, mem.KV(), nil), mem
}

func TestCreateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	saved, err := svc.CreateTransaction(ctx, core.Transaction{
		Description: "Uber Eats",
		Amount:      core.Money{Cents: -5000},
		Category:    "Dining Out",
	})
	if err != nil {
		t.Fatal(err)
	}
	if saved.ID == "" {
		t.Fatal("create must return the stored record with an ID")
	}

	saved.Note = "dinner"
	if err := svc.UpdateTransaction(ctx, saved); err != nil {
		t.Fatal(err)
	}
	got, err := svc.GetTransaction(ctx, saved.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Note != "dinner" {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := svc.DeleteTransaction(ctx, saved.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetTransaction(ctx, saved.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.CreateTransaction(context.Background(), core.Transaction{Description: " "})
	if !errors.Is(err, core.ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}
}

func TestBudgetsRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	budgets, err := svc.Budgets(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(budgets) != 0 {
		t.Fatalf("fresh store must have no budgets, got %+v", budgets)
	}

	in := []core.Budget{
		{Category: "Transport", Limit: 50000},
		{Category: "Food", Limit: 100000},
		{Category: "Stale", Limit: 0}, // non-positive limit drops the budget
	}
	if err := svc.SaveBudgets(ctx, in); err != nil {
		t.Fatal(err)
	}

	budgets, err = svc.Budgets(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(budgets) != 2 {
		t.Fatalf("expected 2 budgets, got %+v", budgets)
	}
	// Sorted by category.
	if budgets[0].Category != "Food" || budgets[1].Category != "Transport" {
		t.Fatalf("unexpected order: %+v", budgets)
	}
}

func TestBudgetsMalformedDocumentTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService()

	if err := mem.KVSet(ctx, BudgetsKey, []byte("{{{not json")); err != nil {
		t.Fatal(err)
	}

	budgets, err := svc.Budgets(ctx)
	if err != nil {
		t.Fatalf("corrupt document must degrade to empty, got error: %v", err)
	}
	if len(budgets) != 0 {
		t.Fatalf("expected no budgets, got %+v", budgets)
	}

	// A save replaces the corrupt document and reads work again.
	if err := svc.SaveBudgets(ctx, []core.Budget{{Category: "Food", Limit: 1000}}); err != nil {
		t.Fatal(err)
	}
	budgets, err = svc.Budgets(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(budgets) != 1 || budgets[0].Category != "Food" {
		t.Fatalf("budgets after recovery: %+v", budgets)
	}
}

func TestSaveBudgetsRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	if err := svc.SaveBudgets(ctx, []core.Budget{{Category: "  ", Limit: 1}}); !errors.Is(err, core.ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}

	err := svc.SaveBudgets(ctx, []core.Budget{
		{Category: "Food", Limit: 1},
		{Category: "Food", Limit: 2},
	})
	if err == nil {
		t.Fatal("duplicate categories must be rejected")
	}
}

func TestRenameCategoryFollowsBudgets(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	if _, err := svc.CreateTransaction(ctx, core.Transaction{Description: "a", Amount: core.Money{Cents: -100}, Category: "Groceries"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateTransaction(ctx, core.Transaction{Description: "b", Amount: core.Money{Cents: -200}, Category: "Groceries"}); err != nil {
		t.Fatal(err)
	}
	if err := svc.SaveBudgets(ctx, []core.Budget{
		{Category: "Groceries", Limit: 100000},
		{Category: "Transport", Limit: 50000},
	}); err != nil {
		t.Fatal(err)
	}

	n, err := svc.RenameCategory(ctx, "Groceries", "Food")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("renamed %d records, want 2", n)
	}

	records, _ := svc.ListTransactions(ctx)
	for _, tr := range records {
		if tr.Category == "Groceries" {
			t.Fatalf("stale record category: %+v", tr)
		}
	}

	budgets, _ := svc.Budgets(ctx)
	if len(budgets) != 2 {
		t.Fatalf("expected 2 budgets, got %+v", budgets)
	}
	if budgets[0].Category != "Food" {
		t.Fatalf("budget must follow the rename, got %+v", budgets)
	}
	if budgets[1].Category != "Transport" {
		t.Fatalf("unrelated budget must be untouched, got %+v", budgets)
	}
}

func TestCloseRunsClosersInReverse(t *testing.T) {
	svc, _ := newTestService()
	var order []string
	svc.AddCloser(func() error { order = append(order, "first"); return nil })
	svc.AddCloser(func() error { order = append(order, "second"); return nil })

	if err := svc.Close(); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Fatalf("closers ran in order %v", order)
	}
}
