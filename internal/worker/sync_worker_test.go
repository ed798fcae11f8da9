package worker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"skeletonkey/internal/amqp"
	"skeletonkey/internal/core"
	"skeletonkey/internal/store/sqlite"
)

type fakeSheet struct {
	rows    []core.Transaction
	failing bool
}

func (f *fakeSheet) Append(ctx context.Context, t core.Transaction) (string, error) {
	if f.failing {
		return "", errors.New("sheets unavailable")
	}
	f.rows = append(f.rows, t)
	return fmt.Sprintf("Backup!A%d", len(f.rows)+1), nil
}

func newTestRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.NewRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestHandleSyncMessageUpsert(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	sheet := &fakeSheet{}
	w := NewSyncWorker(repo, sheet, 10)

	saved, err := repo.Append(ctx, core.Transaction{
		Description: "Checkers Sixty60",
		Amount:      core.Money{Cents: -45600},
		Category:    "Groceries",
	})
	if err != nil {
		t.Fatal(err)
	}

	msg := amqp.NewUpsertMessage(saved.ID, 1)
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatal(err)
	}

	if len(sheet.rows) != 1 || sheet.rows[0].ID != saved.ID {
		t.Fatalf("expected the record on the sheet, got %+v", sheet.rows)
	}

	pending, err := repo.PendingSync(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Fatalf("record must be marked synced, still pending: %+v", pending)
	}
}

func TestHandleSyncMessageMissingRecord(t *testing.T) {
	ctx := context.Background()
	sheet := &fakeSheet{}
	w := NewSyncWorker(newTestRepo(t), sheet, 10)

	msg := amqp.NewUpsertMessage("no-such-id", 1)
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("missing record must not fail the message: %v", err)
	}
	if len(sheet.rows) != 0 {
		t.Fatalf("nothing should be appended, got %+v", sheet.rows)
	}
}

func TestHandleSyncMessageDelete(t *testing.T) {
	ctx := context.Background()
	sheet := &fakeSheet{}
	w := NewSyncWorker(newTestRepo(t), sheet, 10)

	if err := w.HandleSyncMessage(ctx, amqp.NewDeleteMessage("abc-123")); err != nil {
		t.Fatal(err)
	}
	if len(sheet.rows) != 1 {
		t.Fatalf("expected a tombstone row, got %+v", sheet.rows)
	}
	if sheet.rows[0].ID != "abc-123" || !strings.Contains(sheet.rows[0].Description, "deleted") {
		t.Fatalf("unexpected tombstone: %+v", sheet.rows[0])
	}
}

func TestSheetFailureMarksSyncError(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	sheet := &fakeSheet{failing: true}
	w := NewSyncWorker(repo, sheet, 10)

	saved, err := repo.Append(ctx, core.Transaction{
		Description: "Uber trip",
		Amount:      core.Money{Cents: -8900},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := w.HandleSyncMessage(ctx, amqp.NewUpsertMessage(saved.ID, 1)); err == nil {
		t.Fatal("expected an error when the sheet append fails")
	}

	// Marked as error, so the pending sweep must not pick it up again.
	pending, err := repo.PendingSync(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Fatalf("errored record must leave the pending queue, got %+v", pending)
	}
}

func TestStartupSyncCheck(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	sheet := &fakeSheet{}
	w := NewSyncWorker(repo, sheet, 10)

	for i := 0; i < 3; i++ {
		_, err := repo.Append(ctx, core.Transaction{
			Description: fmt.Sprintf("record %d", i),
			Amount:      core.Money{Cents: -100},
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	if err := w.StartupSyncCheck(ctx); err != nil {
		t.Fatal(err)
	}
	if len(sheet.rows) != 3 {
		t.Fatalf("expected 3 synced rows, got %d", len(sheet.rows))
	}

	pending, err := repo.PendingSync(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending queue must drain, got %+v", pending)
	}
}

func TestProcessPendingRecords(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	sheet := &fakeSheet{}
	w := NewSyncWorker(repo, sheet, 2)

	saved, err := repo.Append(ctx, core.Transaction{
		Description: "Netflix",
		Amount:      core.Money{Cents: -19900},
		IsRecurring: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := w.ProcessPendingRecords(ctx); err != nil {
		t.Fatal(err)
	}
	if len(sheet.rows) != 1 || sheet.rows[0].ID != saved.ID {
		t.Fatalf("expected the pending record on the sheet, got %+v", sheet.rows)
	}
}
