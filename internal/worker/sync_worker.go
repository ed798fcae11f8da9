// Package worker mirrors the local ledger into the Google Sheets backup. It
// consumes sync messages from AMQP and periodically sweeps the pending queue
// to recover records whose messages were lost.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"skeletonkey/internal/amqp"
	"skeletonkey/internal/core"
	"skeletonkey/internal/sheets"
	"skeletonkey/internal/store"
	"skeletonkey/internal/store/sqlite"
)

// LedgerSource is the slice of the SQLite repository the worker needs.
type LedgerSource interface {
	Get(ctx context.Context, id string) (core.Transaction, error)
	PendingSync(ctx context.Context, limit int) ([]sqlite.PendingSyncRecord, error)
	MarkSynced(ctx context.Context, id string) error
	MarkSyncError(ctx context.Context, id string) error
}

// SyncWorker pushes ledger records to the backup sheet.
type SyncWorker struct {
	storage   LedgerSource
	sheets    sheets.BackupWriter
	batchSize int
}

func NewSyncWorker(storage LedgerSource, sheetsWriter sheets.BackupWriter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		sheets:    sheetsWriter,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version,
		"kind", msg.Kind)

	if msg.Kind == amqp.SyncDelete {
		return w.appendTombstone(ctx, msg.ID)
	}

	t, err := w.storage.Get(ctx, msg.ID)
	if errors.Is(err, store.ErrNotFound) {
		// Deleted between publish and consume; the delete message follows.
		slog.WarnContext(ctx, "Record gone before sync, skipping", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if err := w.syncToSheet(ctx, t); err != nil {
		return fmt.Errorf("sync transaction to sheets: %w", err)
	}
	return nil
}

// ProcessPendingRecords sweeps records that never made it to the sheet.
// This is the backup mechanism for lost AMQP messages.
func (w *SyncWorker) ProcessPendingRecords(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck recovers pending records at worker startup, with a larger
// batch to clear any backlog from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.PendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending records for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending records found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending records on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0
	for _, p := range pending {
		if err := w.syncPendingRecord(ctx, p.ID); err != nil {
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

func (w *SyncWorker) processPending(ctx context.Context, limit int) error {
	pending, err := w.storage.PendingSync(ctx, limit)
	if err != nil {
		return fmt.Errorf("get pending records: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending records", "count", len(pending))
	for _, p := range pending {
		if err := w.syncPendingRecord(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync record", "id", p.ID, "error", err)
		}
	}
	return nil
}

func (w *SyncWorker) syncPendingRecord(ctx context.Context, id string) error {
	t, err := w.storage.Get(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load record", "id", id, "error", err)
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return err
	}
	return w.syncToSheet(ctx, t)
}

func (w *SyncWorker) syncToSheet(ctx context.Context, t core.Transaction) error {
	ref, err := w.sheets.Append(ctx, t)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, t.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", t.ID, "error", markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, t.ID); err != nil {
		// Sync actually worked; log and move on.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", t.ID, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced record",
		"id", t.ID,
		"sheets_ref", ref,
		"description", t.Description,
		"amount_cents", t.Amount.Cents)

	return nil
}

// appendTombstone records a delete on the append-only backup sheet.
func (w *SyncWorker) appendTombstone(ctx context.Context, id string) error {
	tombstone := core.Transaction{
		ID:          id,
		Description: fmt.Sprintf("[deleted %s]", id),
	}
	ref, err := w.sheets.Append(ctx, tombstone)
	if err != nil {
		return fmt.Errorf("append tombstone: %w", err)
	}

	slog.InfoContext(ctx, "Recorded delete on backup sheet", "id", id, "sheets_ref", ref)
	return nil
}
