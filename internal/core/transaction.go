package core

import (
	"errors"
	"strings"
	"time"
)

// Transaction types used by filters. Income and Expense are derived from the
// sign of the amount; a separate type flag is never authoritative.
const (
	TypeAll     TransactionType = "all"
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

type (
	TransactionType string

	// Date is a calendar date without time-of-day semantics. The zero value
	// means "no date recorded": such records pass open date filters but are
	// excluded once a bound is set.
	Date struct {
		time.Time
	}

	// Transaction is a single ledger entry. Amount sign alone decides
	// income (positive) vs expense (negative).
	Transaction struct {
		ID          string `json:"id"`
		Date        Date   `json:"date"`
		Description string `json:"description"`
		Merchant    string `json:"merchant,omitempty"`
		Amount      Money  `json:"amount"`
		Category    string `json:"category"`
		Account     string `json:"account"`
		IsRecurring bool   `json:"is_recurring"`
		Note        string `json:"note,omitempty"`
		// BudgetCap is an optional per-record reference ceiling in cents,
		// used only for display impact ratios. Never enforced.
		BudgetCap int64 `json:"budget_cap_cents,omitempty"`
	}
)

var (
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyCategory    = errors.New("empty category name")
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// IsEmpty reports whether no date was recorded.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// String renders the date as YYYY-MM-DD, empty for the zero value.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// YearMonth returns the (year, month) bucket key for trend grouping.
func (d Date) YearMonth() (int, int) {
	return d.Year(), int(d.Month())
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate checks the fields a user-created transaction must carry. The date
// may be empty (tolerated as a data-quality issue), the category may be empty
// (aggregated under "Uncategorized"), but a description is required.
func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if len(t.Note) > 500 {
		return errors.New("note too long (max 500 characters)")
	}
	return nil
}

// DisplayMerchant returns the cleaned merchant label, falling back to the
// normalized description when no explicit merchant was set.
func (t Transaction) DisplayMerchant() string {
	if strings.TrimSpace(t.Merchant) != "" {
		return t.Merchant
	}
	return NormalizeMerchant(t.Description)
}

// BudgetImpact is the amount-to-cap ratio for the visual impact indicator,
// 0 when no cap is set.
func (t Transaction) BudgetImpact() float64 {
	if t.BudgetCap <= 0 {
		return 0
	}
	return float64(t.Amount.Abs().Cents) / float64(t.BudgetCap)
}
