package core

// Budget states for the over/under indicator. Budgets are presentation-only
// bookkeeping: nothing is ever blocked by them.
const (
	BudgetNormal  BudgetState = "normal"
	BudgetWarning BudgetState = "warning"
	BudgetOver    BudgetState = "over"
)

// Fraction of the limit at which a budget turns to Warning.
const budgetWarningRatio = 0.8

type (
	BudgetState string

	// Budget is a user-declared monthly ceiling for a category. The
	// category is a bare name: a limit may reference a category no record
	// holds anymore.
	Budget struct {
		Category string `json:"category"`
		Limit    int64  `json:"limit_cents"`
	}

	// BudgetReport is the monthly spend of one category measured against
	// its limit.
	BudgetReport struct {
		Category  string      `json:"category"`
		Limit     int64       `json:"limit_cents"`
		Spent     int64       `json:"spent_cents"`
		Remaining int64       `json:"remaining_cents"`
		Ratio     float64     `json:"ratio"`
		State     BudgetState `json:"state"`
	}
)

// StatusOf classifies spend against a limit: Over when spent > limit,
// Warning when spent >= 0.8 * limit, Normal otherwise. A non-positive limit
// is always Normal.
func StatusOf(spent, limit int64) BudgetState {
	if limit <= 0 {
		return BudgetNormal
	}
	switch {
	case spent > limit:
		return BudgetOver
	case float64(spent) >= budgetWarningRatio*float64(limit):
		return BudgetWarning
	}
	return BudgetNormal
}

// EvaluateBudgets measures each budget against the given month's expense
// total for its category. A budget whose category has no records that month
// reports zero spend.
func EvaluateBudgets(records []Transaction, budgets []Budget, year, month int) []BudgetReport {
	spent := make(map[string]int64)
	for _, t := range records {
		if !t.Amount.IsExpense() || t.Date.IsEmpty() {
			continue
		}
		y, m := t.Date.YearMonth()
		if y != year || m != month {
			continue
		}
		spent[t.Category] += -t.Amount.Cents
	}

	out := make([]BudgetReport, 0, len(budgets))
	for _, b := range budgets {
		s := spent[b.Category]
		ratio := 0.0
		if b.Limit > 0 {
			ratio = float64(s) / float64(b.Limit)
		}
		out = append(out, BudgetReport{
			Category:  b.Category,
			Limit:     b.Limit,
			Spent:     s,
			Remaining: b.Limit - s,
			Ratio:     ratio,
			State:     StatusOf(s, b.Limit),
		})
	}
	return out
}
