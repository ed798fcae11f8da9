package memory

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"skeletonkey/internal/core"
	"skeletonkey/internal/store"
)

func TestAppendAssignsID(t *testing.T) {
	s := New()
	got, err := s.Append(context.Background(), core.Transaction{
		Date:        core.NewDate(2025, 1, 5),
		Description: "Checkers Sixty60",
		Amount:      core.Money{Cents: -10000},
		Category:    "Food",
		Account:     "Discovery",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.ID == "" {
		t.Fatal("Append must assign an ID")
	}

	back, err := s.Get(context.Background(), got.ID)
	if err != nil {
		t.Fatal(err)
	}
	if back.Description != "Checkers Sixty60" {
		t.Fatalf("unexpected record %+v", back)
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	s := New()
	_, err := s.Append(context.Background(), core.Transaction{Description: "   "})
	if !errors.Is(err, core.ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}
	records, _ := s.List(context.Background())
	if len(records) != 0 {
		t.Fatal("rejected record must not be stored")
	}
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	tr, err := s.Append(ctx, core.Transaction{Description: "Uber Eats", Amount: core.Money{Cents: -5000}, Category: "Food"})
	if err != nil {
		t.Fatal(err)
	}

	tr.Category = "Dining Out"
	if err := s.Update(ctx, tr); err != nil {
		t.Fatal(err)
	}
	back, _ := s.Get(ctx, tr.ID)
	if back.Category != "Dining Out" {
		t.Fatalf("update not applied: %+v", back)
	}

	if err := s.Update(ctx, core.Transaction{ID: "missing", Description: "x"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Delete(ctx, tr.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, tr.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, tr.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatal("double delete must report ErrNotFound")
	}
}

func TestListInsertionOrderAndIsolation(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, d := range []string{"first", "second", "third"} {
		if _, err := s.Append(ctx, core.Transaction{Description: d, Amount: core.Money{Cents: -100}}); err != nil {
			t.Fatal(err)
		}
	}
	records, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 || records[0].Description != "first" || records[2].Description != "third" {
		t.Fatalf("unexpected order: %+v", records)
	}

	records[0].Description = "mutated"
	again, _ := s.List(ctx)
	if again[0].Description != "first" {
		t.Fatal("List must return a copy")
	}
}

func TestRenameCategory(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Append(ctx, core.Transaction{Description: "a", Amount: core.Money{Cents: -100}, Category: "Groceries"})
	s.Append(ctx, core.Transaction{Description: "b", Amount: core.Money{Cents: -200}, Category: "Groceries"})
	s.Append(ctx, core.Transaction{Description: "c", Amount: core.Money{Cents: -300}, Category: "Transport"})

	n, err := s.RenameCategory(ctx, "Groceries", "Food")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("renamed %d records, want 2", n)
	}
	records, _ := s.List(ctx)
	for _, tr := range records {
		if tr.Category == "Groceries" {
			t.Fatalf("stale category on %+v", tr)
		}
	}

	if _, err := s.RenameCategory(ctx, "Food", "  "); !errors.Is(err, core.ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}

	n, err = s.RenameCategory(ctx, "Nope", "Whatever")
	if err != nil || n != 0 {
		t.Fatalf("rename of unknown category: n=%d err=%v", n, err)
	}
}

func TestKeyValueStore(t *testing.T) {
	ctx := context.Background()
	kv := New().KV()

	if _, ok, err := kv.Get(ctx, "budgets"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := kv.Set(ctx, "budgets", []byte(`[{"category":"Food","limit_cents":100000}]`)); err != nil {
		t.Fatal(err)
	}
	v, ok, err := kv.Get(ctx, "budgets")
	if err != nil || !ok {
		t.Fatalf("get after set: ok=%v err=%v", ok, err)
	}
	var budgets []core.Budget
	if err := json.Unmarshal(v, &budgets); err != nil {
		t.Fatal(err)
	}
	if len(budgets) != 1 || budgets[0].Category != "Food" {
		t.Fatalf("unexpected blob %s", v)
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.json")
	seed := []core.Transaction{
		{Date: core.NewDate(2025, 1, 1), Description: "seeded", Amount: core.Money{Cents: -1234}, Category: "Food"},
		{Description: "   "}, // invalid, silently skipped
	}
	b, _ := json.Marshal(seed)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewFromFile(path)
	records, _ := s.List(context.Background())
	if len(records) != 1 || records[0].Description != "seeded" {
		t.Fatalf("unexpected seed load: %+v", records)
	}
	if records[0].ID == "" {
		t.Fatal("seeded records must get IDs")
	}
}

func TestNewFromFileFallsBackToSample(t *testing.T) {
	s := NewFromFile("does/not/exist.json")
	records, _ := s.List(context.Background())
	if len(records) == 0 {
		t.Fatal("missing seed file must fall back to the sample ledger")
	}
	for _, tr := range records {
		if tr.ID == "" {
			t.Fatalf("sample record without ID: %+v", tr)
		}
	}
}
