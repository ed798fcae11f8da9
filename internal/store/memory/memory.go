// Package memory is the in-process ledger used for demos and tests. Data
// lives for the lifetime of the process only.
package memory

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"skeletonkey/internal/core"
	"skeletonkey/internal/store"
)

type Store struct {
	mu    sync.Mutex
	items []core.Transaction
	kv    map[string][]byte
}

func New() *Store {
	return &Store{kv: make(map[string][]byte)}
}

// NewFromFile loads seed records from a JSON file. A missing or unreadable
// file falls back to the built-in sample ledger so the dashboard never
// starts empty.
func NewFromFile(path string) *Store {
	s := New()
	records := readSeed(path)
	if len(records) == 0 {
		records = sampleLedger()
	}
	for _, t := range records {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		s.items = append(s.items, t)
	}
	return s
}

func (s *Store) Append(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.items = append(s.items, t)
	return t, nil
}

func (s *Store) Update(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == t.ID {
			s.items[i] = t
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) Get(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.items {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, store.ErrNotFound
}

// List returns records in insertion order.
func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *Store) RenameCategory(_ context.Context, from, to string) (int, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return 0, core.ErrEmptyCategory
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.items {
		if s.items[i].Category == from {
			s.items[i].Category = to
			n++
		}
	}
	return n, nil
}

func (s *Store) KVGet(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.kv[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *Store) KVSet(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	s.kv[key] = v
	return nil
}

// KV exposes the store's blob side as a store.KeyValueStore.
func (s *Store) KV() store.KeyValueStore {
	return kvView{s}
}

type kvView struct{ s *Store }

func (v kvView) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return v.s.KVGet(ctx, key)
}

func (v kvView) Set(ctx context.Context, key string, value []byte) error {
	return v.s.KVSet(ctx, key, value)
}

func readSeed(path string) []core.Transaction {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var records []core.Transaction
	if err := json.Unmarshal(b, &records); err != nil {
		return nil
	}
	out := records[:0]
	for _, t := range records {
		if t.Validate() == nil {
			out = append(out, t)
		}
	}
	return out
}

func sampleLedger() []core.Transaction {
	return []core.Transaction{
		{Date: core.NewDate(2025, 7, 1), Description: "Salary", Amount: core.Money{Cents: 3250000}, Category: "Income", Account: "Discovery"},
		{Date: core.NewDate(2025, 7, 2), Description: "POS DEBIT CHECKERS SIXTY60 88120", Amount: core.Money{Cents: -84550}, Category: "Food", Account: "Discovery"},
		{Date: core.NewDate(2025, 7, 3), Description: "UBER EATS", Amount: core.Money{Cents: -28900}, Category: "Dining Out", Account: "Absa"},
		{Date: core.NewDate(2025, 7, 5), Description: "CARD PURCHASE WOOLWORTHS FOOD STORE SANDTON", Amount: core.Money{Cents: -112075}, Category: "Food", Account: "Amex"},
		{Date: core.NewDate(2025, 7, 7), Description: "NETFLIX.COM", Amount: core.Money{Cents: -19900}, Category: "Subscriptions", Account: "Absa", IsRecurring: true},
		{Date: core.NewDate(2025, 7, 10), Description: "ENGEN GARAGE N1 NORTH 44531", Amount: core.Money{Cents: -95000}, Category: "Transport", Account: "Capitec"},
		{Date: core.NewDate(2025, 7, 15), Description: "DEBIT ORDER DISCOVERY HEALTH", Amount: core.Money{Cents: -245000}, Category: "Medical", Account: "Discovery", IsRecurring: true},
		{Date: core.NewDate(2025, 7, 18), Description: "TAKEALOT.COM 90211", Amount: core.Money{Cents: -64999}, Category: "Shopping", Account: "Amex"},
		{Date: core.NewDate(2025, 7, 25), Description: "Freelance invoice", Amount: core.Money{Cents: 480000}, Category: "Income", Account: "Capitec"},
		{Date: core.NewDate(2025, 7, 28), Description: "POS DEBIT MR D FOOD 22891", Amount: core.Money{Cents: -21450}, Category: "Dining Out", Account: "Absa"},
	}
}
