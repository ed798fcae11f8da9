package core

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// Labels for synthetic aggregation buckets.
const (
	UncategorizedBucket = "Uncategorized"
	OtherBucket         = "Other"
)

// Default top-N caps applied by the HTTP layer when the client does not ask
// for the full grouping.
const (
	DefaultCategoryTopN = 11
	DefaultMerchantTopN = 15
)

type (
	// Totals are the headline figures for a record set. Expense is an
	// absolute value; Net = Income - Expense.
	Totals struct {
		Income  Money `json:"income"`
		Expense Money `json:"expense"`
		Net     Money `json:"net"`
		Count   int   `json:"count"`
	}

	// CategoryBucket is an expense grouping by category name.
	CategoryBucket struct {
		Name    string  `json:"name"`
		Amount  Money   `json:"amount"`
		Count   int     `json:"count"`
		Percent float64 `json:"percent"`
	}

	// MonthBucket is a (year, month) cash-flow bucket.
	MonthBucket struct {
		Year    int   `json:"year"`
		Month   int   `json:"month"`
		Income  Money `json:"income"`
		Expense Money `json:"expense"`
		Net     Money `json:"net"`
	}

	// MerchantBucket ranks expense volume per normalized merchant name.
	MerchantBucket struct {
		Name     string `json:"name"`
		Category string `json:"category"`
		Amount   Money  `json:"amount"`
		Count    int    `json:"count"`
		Average  Money  `json:"average"`
	}

	// WeekdayBucket holds the expense sum and arithmetic mean for one of
	// the seven Sunday-first weekday slots.
	WeekdayBucket struct {
		Day     time.Weekday `json:"-"`
		Label   string       `json:"day"`
		Total   Money        `json:"total"`
		Average Money        `json:"average"`
		Count   int          `json:"count"`
	}

	// PeriodComparison contrasts a window with the equal-length window
	// immediately before it. Change values are percentages, 0 whenever the
	// previous figure is 0.
	PeriodComparison struct {
		Current       Totals `json:"current"`
		Previous      Totals `json:"previous"`
		IncomeChange  float64 `json:"income_change"`
		ExpenseChange float64 `json:"expense_change"`
		CountChange   float64 `json:"count_change"`
	}
)

// SavingsRate is net as a percentage of income, 0 when there is no income.
func (t Totals) SavingsRate() float64 {
	if t.Income.Cents == 0 {
		return 0
	}
	return float64(t.Net.Cents) / float64(t.Income.Cents) * 100
}

// AverageExpense is the mean absolute expense per record, 0 for an empty set.
func (t Totals) AverageExpense() Money {
	if t.Count == 0 {
		return Money{}
	}
	return Money{Cents: t.Expense.Cents / int64(t.Count)}
}

// Summarize computes headline totals. It is total: an empty or nil input
// yields zero values, never an error.
func Summarize(records []Transaction) Totals {
	var out Totals
	for _, t := range records {
		switch {
		case t.Amount.IsIncome():
			out.Income.Cents += t.Amount.Cents
		case t.Amount.IsExpense():
			out.Expense.Cents += -t.Amount.Cents
		}
		out.Count++
	}
	out.Net.Cents = out.Income.Cents - out.Expense.Cents
	return out
}

// ByCategory groups expense records by category, sorted descending by sum,
// with each bucket's percentage of total expense. When topN > 0 and more
// categories exist, the tail is merged into a synthetic "Other" bucket whose
// value is recomputed from the excluded entries so nothing is counted twice.
// Records without a category group under "Uncategorized".
func ByCategory(records []Transaction, topN int) []CategoryBucket {
	type acc struct {
		cents int64
		count int
	}
	groups := make(map[string]*acc)
	var totalExpense int64
	for _, t := range records {
		if !t.Amount.IsExpense() {
			continue
		}
		name := strings.TrimSpace(t.Category)
		if name == "" {
			name = UncategorizedBucket
		}
		g, ok := groups[name]
		if !ok {
			g = &acc{}
			groups[name] = g
		}
		abs := -t.Amount.Cents
		g.cents += abs
		g.count++
		totalExpense += abs
	}

	buckets := make([]CategoryBucket, 0, len(groups))
	for name, g := range groups {
		buckets = append(buckets, CategoryBucket{
			Name:    name,
			Amount:  Money{Cents: g.cents},
			Count:   g.count,
			Percent: percentOf(g.cents, totalExpense),
		})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].Amount.Cents != buckets[j].Amount.Cents {
			return buckets[i].Amount.Cents > buckets[j].Amount.Cents
		}
		return buckets[i].Name < buckets[j].Name
	})

	if topN <= 0 || len(buckets) <= topN {
		return buckets
	}

	head := buckets[:topN:topN]
	var other CategoryBucket
	other.Name = OtherBucket
	for _, b := range buckets[topN:] {
		other.Amount.Cents += b.Amount.Cents
		other.Count += b.Count
	}
	other.Percent = percentOf(other.Amount.Cents, totalExpense)
	if other.Amount.Cents > 0 || other.Count > 0 {
		head = append(head, other)
	}
	return head
}

// ByMonth groups records into (year, month) cash-flow buckets in
// chronological order. Records without a date are skipped.
func ByMonth(records []Transaction) []MonthBucket {
	type key struct{ year, month int }
	groups := make(map[key]*MonthBucket)
	for _, t := range records {
		if t.Date.IsEmpty() {
			continue
		}
		y, m := t.Date.YearMonth()
		k := key{y, m}
		b, ok := groups[k]
		if !ok {
			b = &MonthBucket{Year: y, Month: m}
			groups[k] = b
		}
		switch {
		case t.Amount.IsIncome():
			b.Income.Cents += t.Amount.Cents
		case t.Amount.IsExpense():
			b.Expense.Cents += -t.Amount.Cents
		}
	}

	out := make([]MonthBucket, 0, len(groups))
	for _, b := range groups {
		b.Net.Cents = b.Income.Cents - b.Expense.Cents
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

const merchantMaxDisplay = 20

var (
	merchantNoiseRe  = regexp.MustCompile(`(?i)^(POS\s+DEBIT\s+|POS\s+|PURCHASE\s+|CARD\s+PURCHASE\s+|DEBIT\s+ORDER\s+)`)
	merchantDigitsRe = regexp.MustCompile(`\d{4,}`)
	merchantSpacesRe = regexp.MustCompile(`\s{2,}`)
)

// NormalizeMerchant derives a stable display/grouping name from a raw bank
// description: point-of-sale prefixes and long digit runs (card numbers,
// references) are stripped, whitespace collapsed, and the result truncated
// to a display length with an ellipsis marker.
//
//	"POS DEBIT TST* TOAST INC 48213" -> "TST* TOAST INC"
func NormalizeMerchant(raw string) string {
	name := strings.TrimSpace(raw)
	name = merchantNoiseRe.ReplaceAllString(name, "")
	name = merchantDigitsRe.ReplaceAllString(name, "")
	name = merchantSpacesRe.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	if name == "" {
		return UncategorizedBucket
	}
	runes := []rune(name)
	if len(runes) > merchantMaxDisplay {
		name = string(runes[:merchantMaxDisplay]) + "..."
	}
	return name
}

// ByMerchant groups expense records by normalized merchant name, sorted
// descending by sum and capped to topN when topN > 0. The bucket category is
// the category of the first record seen for that merchant.
func ByMerchant(records []Transaction, topN int) []MerchantBucket {
	type acc struct {
		cents    int64
		count    int
		category string
	}
	groups := make(map[string]*acc)
	order := make([]string, 0)
	for _, t := range records {
		if !t.Amount.IsExpense() {
			continue
		}
		name := NormalizeMerchant(t.DisplayMerchant())
		g, ok := groups[name]
		if !ok {
			g = &acc{category: t.Category}
			groups[name] = g
			order = append(order, name)
		}
		g.cents += -t.Amount.Cents
		g.count++
	}

	out := make([]MerchantBucket, 0, len(groups))
	for _, name := range order {
		g := groups[name]
		avg := int64(0)
		if g.count > 0 {
			avg = g.cents / int64(g.count)
		}
		out = append(out, MerchantBucket{
			Name:     name,
			Category: g.category,
			Amount:   Money{Cents: g.cents},
			Count:    g.count,
			Average:  Money{Cents: avg},
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.Cents > out[j].Amount.Cents
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN:topN]
	}
	return out
}

// ByWeekday buckets expense records into the seven Sunday-first weekday
// slots. Every slot is always present; empty slots carry explicit zeros.
func ByWeekday(records []Transaction) []WeekdayBucket {
	out := make([]WeekdayBucket, 7)
	for i := range out {
		day := time.Weekday(i)
		out[i].Day = day
		out[i].Label = day.String()[:3]
	}
	for _, t := range records {
		if !t.Amount.IsExpense() || t.Date.IsEmpty() {
			continue
		}
		slot := &out[int(t.Date.Weekday())]
		slot.Total.Cents += -t.Amount.Cents
		slot.Count++
	}
	for i := range out {
		if out[i].Count > 0 {
			out[i].Average.Cents = out[i].Total.Cents / int64(out[i].Count)
		}
	}
	return out
}

// ComparePeriods summarizes the inclusive [from, to] window and the
// equal-length window immediately before it, previous = [from-d, from).
func ComparePeriods(records []Transaction, from, to Date) PeriodComparison {
	days := int(to.Sub(from.Time).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	prevTo := Date{Time: from.AddDate(0, 0, -1)}
	prevFrom := Date{Time: from.AddDate(0, 0, -days)}

	current := Summarize(Apply(records, Filter{DateFrom: from, DateTo: to}))
	previous := Summarize(Apply(records, Filter{DateFrom: prevFrom, DateTo: prevTo}))

	return PeriodComparison{
		Current:       current,
		Previous:      previous,
		IncomeChange:  percentChange(current.Income.Cents, previous.Income.Cents),
		ExpenseChange: percentChange(current.Expense.Cents, previous.Expense.Cents),
		CountChange:   percentChange(int64(current.Count), int64(previous.Count)),
	}
}

// percentChange is (current-previous)/previous*100, 0 when previous is 0.
func percentChange(current, previous int64) float64 {
	if previous == 0 {
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

// percentOf is part/total*100, 0 when total is 0.
func percentOf(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
