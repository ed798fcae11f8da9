package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"skeletonkey/internal/amqp"
	"skeletonkey/internal/core"
	"skeletonkey/internal/store"
)

// BudgetsKey is the key-value slot holding the budget document.
const BudgetsKey = "sk_budgets"

// LedgerService orchestrates write operations across the transaction store,
// the budget document, and the AMQP sync queue. Reads go through it too so
// the HTTP layer has a single dependency.
type LedgerService struct {
	store      store.TransactionStore
	kv         store.KeyValueStore
	amqpClient *amqp.Client
	closers    []func() error
}

func NewLedgerService(ts store.TransactionStore, kv store.KeyValueStore, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		store:      ts,
		kv:         kv,
		amqpClient: amqpClient,
	}
}

// AddCloser registers a cleanup function run by Close.
func (s *LedgerService) AddCloser(fn func() error) {
	s.closers = append(s.closers, fn)
}

// CreateTransaction saves a record locally and publishes a sync message.
// Queue failures never fail the request; the record is already durable.
func (s *LedgerService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	saved, err := s.store.Append(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publish(ctx, amqp.NewUpsertMessage(saved.ID, 1))
	return saved, nil
}

// UpdateTransaction updates a record and queues it for re-sync.
func (s *LedgerService) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := s.store.Update(ctx, t); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	// Version 0 means "latest": the worker always fetches the current row.
	s.publish(ctx, amqp.NewUpsertMessage(t.ID, 0))
	return nil
}

// DeleteTransaction removes a record locally and publishes a delete message.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.publish(ctx, amqp.NewDeleteMessage(id))
	return nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.Get(ctx, id)
}

func (s *LedgerService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.store.List(ctx)
}

// RenameCategory renames a category on every record and follows through on
// the budget document, so a budget keeps tracking the renamed category.
func (s *LedgerService) RenameCategory(ctx context.Context, from, to string) (int, error) {
	n, err := s.store.RenameCategory(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("rename category: %w", err)
	}

	if err := s.renameBudgetCategory(ctx, from, to); err != nil {
		// Records are already renamed; report but don't roll back.
		slog.ErrorContext(ctx, "Failed to rename category in budgets",
			"from", from, "to", to, "error", err)
	}

	slog.InfoContext(ctx, "Category renamed", "from", from, "to", to, "records", n)
	return n, nil
}

// Budgets loads the budget document, sorted by category for stable output.
func (s *LedgerService) Budgets(ctx context.Context) ([]core.Budget, error) {
	raw, ok, err := s.kv.Get(ctx, BudgetsKey)
	if err != nil {
		return nil, fmt.Errorf("load budgets: %w", err)
	}
	if !ok {
		return []core.Budget{}, nil
	}

	var budgets []core.Budget
	if err := json.Unmarshal(raw, &budgets); err != nil {
		// A corrupt document must not take the budgets feature down.
		// Treat it as empty; the next save overwrites it.
		slog.WarnContext(ctx, "Budget document is malformed, treating as empty",
			"key", BudgetsKey, "error", err)
		return []core.Budget{}, nil
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].Category < budgets[j].Category })
	return budgets, nil
}

// SaveBudgets replaces the budget document. Blank categories and duplicate
// entries are rejected; a non-positive limit removes that budget.
func (s *LedgerService) SaveBudgets(ctx context.Context, budgets []core.Budget) error {
	seen := make(map[string]struct{}, len(budgets))
	kept := make([]core.Budget, 0, len(budgets))
	for _, b := range budgets {
		b.Category = strings.TrimSpace(b.Category)
		if b.Category == "" {
			return core.ErrEmptyCategory
		}
		if _, dup := seen[b.Category]; dup {
			return fmt.Errorf("duplicate budget for category %q", b.Category)
		}
		seen[b.Category] = struct{}{}
		if b.Limit > 0 {
			kept = append(kept, b)
		}
	}

	raw, err := json.Marshal(kept)
	if err != nil {
		return fmt.Errorf("encode budgets: %w", err)
	}
	if err := s.kv.Set(ctx, BudgetsKey, raw); err != nil {
		return fmt.Errorf("save budgets: %w", err)
	}
	return nil
}

func (s *LedgerService) renameBudgetCategory(ctx context.Context, from, to string) error {
	budgets, err := s.Budgets(ctx)
	if err != nil {
		return err
	}

	changed := false
	for i := range budgets {
		if budgets[i].Category == from {
			budgets[i].Category = to
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.SaveBudgets(ctx, budgets)
}

func (s *LedgerService) publish(ctx context.Context, msg *amqp.TransactionSyncMessage) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishTransactionSync(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", msg.ID, "kind", msg.Kind, "error", err)
	}
}

// Close closes every registered resource, last added first.
func (s *LedgerService) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
