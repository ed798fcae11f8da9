package core

import "strings"

// Filter is the AND-composed criteria set applied to a ledger snapshot.
// Every field is optional: the zero value matches everything. Empty category
// and account selections mean "all", never "none". Amount bounds compare the
// absolute value of the amount, so the same range works for income and
// expense rows.
type Filter struct {
	// Search is a case-insensitive substring match against description and
	// note.
	Search string

	// DateFrom and DateTo are inclusive bounds; the zero Date leaves that
	// side open.
	DateFrom Date
	DateTo   Date

	Categories []string
	Accounts   []string

	// AmountMin and AmountMax are cents compared against the absolute
	// amount; 0 leaves that side open.
	AmountMin int64
	AmountMax int64

	// Type selects income (amount > 0), expense (amount < 0) or all rows.
	// A zero-amount record matches only TypeAll.
	Type TransactionType

	RecurringOnly bool
}

// IsZero reports whether the filter has no active criteria.
func (f Filter) IsZero() bool {
	return f.Search == "" &&
		f.DateFrom.IsEmpty() && f.DateTo.IsEmpty() &&
		len(f.Categories) == 0 && len(f.Accounts) == 0 &&
		f.AmountMin == 0 && f.AmountMax == 0 &&
		(f.Type == "" || f.Type == TypeAll) &&
		!f.RecurringOnly
}

// Matches reports whether a single transaction passes all active criteria.
func (f Filter) Matches(t Transaction) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Description), needle) &&
			!strings.Contains(strings.ToLower(t.Note), needle) {
			return false
		}
	}

	// Records without a date fail any bounded date criterion.
	if !f.DateFrom.IsEmpty() {
		if t.Date.IsEmpty() || t.Date.Before(f.DateFrom.Time) {
			return false
		}
	}
	if !f.DateTo.IsEmpty() {
		if t.Date.IsEmpty() || t.Date.After(f.DateTo.Time) {
			return false
		}
	}

	if len(f.Categories) > 0 && !containsFold(f.Categories, t.Category) {
		return false
	}
	if len(f.Accounts) > 0 && !containsFold(f.Accounts, t.Account) {
		return false
	}

	abs := t.Amount.Abs().Cents
	if f.AmountMin > 0 && abs < f.AmountMin {
		return false
	}
	if f.AmountMax > 0 && abs > f.AmountMax {
		return false
	}

	switch f.Type {
	case TypeIncome:
		if !t.Amount.IsIncome() {
			return false
		}
	case TypeExpense:
		if !t.Amount.IsExpense() {
			return false
		}
	}

	if f.RecurringOnly && !t.IsRecurring {
		return false
	}

	return true
}

// Apply returns the records passing the filter, preserving input order.
// The input slice is never mutated.
func Apply(records []Transaction, f Filter) []Transaction {
	if f.IsZero() {
		out := make([]Transaction, len(records))
		copy(out, records)
		return out
	}
	out := make([]Transaction, 0, len(records))
	for _, t := range records {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}
