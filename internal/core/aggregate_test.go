package core

import (
	"math"
	"testing"
	"time"
)

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil)
	if got.Income.Cents != 0 || got.Expense.Cents != 0 || got.Net.Cents != 0 || got.Count != 0 {
		t.Fatalf("expected zero totals, got %+v", got)
	}
	if got.SavingsRate() != 0 {
		t.Fatalf("savings rate on zero income must be 0, got %f", got.SavingsRate())
	}
	if got.AverageExpense().Cents != 0 {
		t.Fatal("average expense on empty set must be 0")
	}
}

func TestSummarizeSpecExample(t *testing.T) {
	// records = [-100 Food, -50 Food, +2000 Income]
	records := []Transaction{
		{Date: NewDate(2024, 1, 5), Description: "a", Amount: Money{Cents: -10000}, Category: "Food"},
		{Date: NewDate(2024, 1, 10), Description: "b", Amount: Money{Cents: -5000}, Category: "Food"},
		{Date: NewDate(2024, 1, 1), Description: "c", Amount: Money{Cents: 200000}, Category: "Income"},
	}
	got := Summarize(records)
	if got.Income.Cents != 200000 {
		t.Errorf("income = %d, want 200000", got.Income.Cents)
	}
	if got.Expense.Cents != 15000 {
		t.Errorf("expense = %d, want 15000", got.Expense.Cents)
	}
	if got.Net.Cents != 185000 {
		t.Errorf("net = %d, want 185000", got.Net.Cents)
	}
	if got.Count != 3 {
		t.Errorf("count = %d, want 3", got.Count)
	}

	buckets := ByCategory(records, 0)
	if len(buckets) != 1 {
		t.Fatalf("expected one expense bucket, got %d", len(buckets))
	}
	b := buckets[0]
	if b.Name != "Food" || b.Amount.Cents != 15000 || math.Abs(b.Percent-100) > 1e-9 {
		t.Fatalf("unexpected bucket %+v", b)
	}
}

func TestByCategoryConservation(t *testing.T) {
	records := []Transaction{
		{Date: NewDate(2024, 3, 1), Description: "a", Amount: Money{Cents: -1100}, Category: "A"},
		{Date: NewDate(2024, 3, 2), Description: "b", Amount: Money{Cents: -2200}, Category: "B"},
		{Date: NewDate(2024, 3, 3), Description: "c", Amount: Money{Cents: -3300}, Category: "C"},
		{Date: NewDate(2024, 3, 4), Description: "d", Amount: Money{Cents: -450}, Category: "D"},
		{Date: NewDate(2024, 3, 5), Description: "e", Amount: Money{Cents: -50}, Category: "E"},
		{Date: NewDate(2024, 3, 6), Description: "f", Amount: Money{Cents: 9000}, Category: "Income"},
		{Date: NewDate(2024, 3, 7), Description: "g", Amount: Money{Cents: -75}, Category: ""},
	}
	totals := Summarize(records)

	for _, topN := range []int{0, 2, 3, 100} {
		buckets := ByCategory(records, topN)
		var sum int64
		var pct float64
		for _, b := range buckets {
			sum += b.Amount.Cents
			pct += b.Percent
		}
		if sum != totals.Expense.Cents {
			t.Errorf("topN=%d: bucket sum %d != expense total %d", topN, sum, totals.Expense.Cents)
		}
		if math.Abs(pct-100) > 1e-9 {
			t.Errorf("topN=%d: percents sum to %f, want 100", topN, pct)
		}
	}

	// The cap merges the tail into a single trailing Other bucket.
	capped := ByCategory(records, 2)
	if len(capped) != 3 {
		t.Fatalf("expected 2 buckets + Other, got %d", len(capped))
	}
	if capped[2].Name != OtherBucket {
		t.Fatalf("expected trailing %q bucket, got %q", OtherBucket, capped[2].Name)
	}
	// Other = D + E + uncategorized = 450 + 50 + 75
	if capped[2].Amount.Cents != 575 {
		t.Fatalf("Other bucket = %d, want 575", capped[2].Amount.Cents)
	}
}

func TestByCategoryUncategorized(t *testing.T) {
	records := []Transaction{
		{Date: NewDate(2024, 1, 1), Description: "a", Amount: Money{Cents: -100}},
		{Date: NewDate(2024, 1, 2), Description: "b", Amount: Money{Cents: -100}, Category: "  "},
	}
	buckets := ByCategory(records, 0)
	if len(buckets) != 1 || buckets[0].Name != UncategorizedBucket {
		t.Fatalf("expected a single %q bucket, got %+v", UncategorizedBucket, buckets)
	}
	if buckets[0].Count != 2 {
		t.Fatalf("expected count 2, got %d", buckets[0].Count)
	}
}

func TestByCategoryEmptyInput(t *testing.T) {
	if got := ByCategory(nil, DefaultCategoryTopN); len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestByMonthChronological(t *testing.T) {
	records := []Transaction{
		{Date: NewDate(2024, 3, 15), Description: "a", Amount: Money{Cents: -1000}},
		{Date: NewDate(2024, 1, 2), Description: "b", Amount: Money{Cents: 5000}},
		{Date: NewDate(2023, 12, 31), Description: "c", Amount: Money{Cents: -2000}},
		{Date: NewDate(2024, 1, 20), Description: "d", Amount: Money{Cents: -500}},
		{Date: Date{}, Description: "no date", Amount: Money{Cents: -999}},
	}
	got := ByMonth(records)
	if len(got) != 3 {
		t.Fatalf("expected 3 month buckets, got %d", len(got))
	}
	wantOrder := [][2]int{{2023, 12}, {2024, 1}, {2024, 3}}
	for i, w := range wantOrder {
		if got[i].Year != w[0] || got[i].Month != w[1] {
			t.Fatalf("bucket %d = %d-%d, want %d-%d", i, got[i].Year, got[i].Month, w[0], w[1])
		}
	}
	jan := got[1]
	if jan.Income.Cents != 5000 || jan.Expense.Cents != 500 || jan.Net.Cents != 4500 {
		t.Fatalf("unexpected january bucket %+v", jan)
	}
}

func TestNormalizeMerchant(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"POS DEBIT TST* TOAST INC 48213", "TST* TOAST INC"},
		{"POS DEBIT TST* TOAST INC 99881", "TST* TOAST INC"},
		{"Purchase CHECKERS SIXTY60", "CHECKERS SIXTY60"},
		{"UBER EATS", "UBER EATS"},
		{"CARD PURCHASE WOOLWORTHS FOOD STORE SANDTON", "WOOLWORTHS FOOD STOR..."},
		{"1234567890", UncategorizedBucket},
		{"   ", UncategorizedBucket},
	}
	for _, tc := range cases {
		if got := NormalizeMerchant(tc.in); got != tc.want {
			t.Errorf("NormalizeMerchant(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestByMerchant(t *testing.T) {
	records := []Transaction{
		{Date: NewDate(2024, 1, 1), Description: "POS DEBIT TST* TOAST INC 48213", Amount: Money{Cents: -3000}, Category: "Dining Out"},
		{Date: NewDate(2024, 1, 8), Description: "POS DEBIT TST* TOAST INC 55511", Amount: Money{Cents: -5000}, Category: "Dining Out"},
		{Date: NewDate(2024, 1, 9), Description: "UBER EATS", Amount: Money{Cents: -2000}, Category: "Convenience"},
		{Date: NewDate(2024, 1, 10), Description: "Salary", Amount: Money{Cents: 100000}, Category: "Income"},
	}
	got := ByMerchant(records, 15)
	if len(got) != 2 {
		t.Fatalf("expected 2 merchants, got %d", len(got))
	}
	top := got[0]
	if top.Name != "TST* TOAST INC" {
		t.Fatalf("top merchant = %q", top.Name)
	}
	if top.Amount.Cents != 8000 || top.Count != 2 || top.Average.Cents != 4000 {
		t.Fatalf("unexpected top merchant %+v", top)
	}

	if capped := ByMerchant(records, 1); len(capped) != 1 {
		t.Fatalf("topN=1 should cap to one merchant, got %d", len(capped))
	}
}

func TestByWeekday(t *testing.T) {
	// 2024-01-07 is a Sunday.
	records := []Transaction{
		{Date: NewDate(2024, 1, 7), Description: "a", Amount: Money{Cents: -1000}},
		{Date: NewDate(2024, 1, 14), Description: "b", Amount: Money{Cents: -3000}},
		{Date: NewDate(2024, 1, 8), Description: "c", Amount: Money{Cents: -500}},
		{Date: NewDate(2024, 1, 9), Description: "income", Amount: Money{Cents: 9999}},
	}
	got := ByWeekday(records)
	if len(got) != 7 {
		t.Fatalf("expected 7 slots, got %d", len(got))
	}
	if got[0].Day != time.Sunday {
		t.Fatal("slots must be Sunday-first")
	}
	sunday := got[0]
	if sunday.Total.Cents != 4000 || sunday.Count != 2 || sunday.Average.Cents != 2000 {
		t.Fatalf("unexpected sunday slot %+v", sunday)
	}
	// Empty slots carry explicit zeros, not division errors.
	for _, slot := range got[2:] {
		if slot.Total.Cents != 0 || slot.Average.Cents != 0 {
			t.Fatalf("expected zeroed slot, got %+v", slot)
		}
	}
}

func TestComparePeriods(t *testing.T) {
	records := []Transaction{
		// Current window: Feb 2024.
		{Date: NewDate(2024, 2, 10), Description: "a", Amount: Money{Cents: -20000}},
		{Date: NewDate(2024, 2, 20), Description: "b", Amount: Money{Cents: 50000}},
		// Previous window.
		{Date: NewDate(2024, 1, 15), Description: "c", Amount: Money{Cents: -10000}},
	}
	got := ComparePeriods(records, NewDate(2024, 2, 1), NewDate(2024, 2, 29))
	if got.Current.Expense.Cents != 20000 || got.Previous.Expense.Cents != 10000 {
		t.Fatalf("unexpected comparison %+v", got)
	}
	if math.Abs(got.ExpenseChange-100) > 1e-9 {
		t.Errorf("expense change = %f, want 100", got.ExpenseChange)
	}
	// Previous income is 0, so percent change is defined as exactly 0.
	if got.IncomeChange != 0 {
		t.Errorf("income change = %f, want 0 with empty previous period", got.IncomeChange)
	}
}

func TestComparePeriodsEmptyPrevious(t *testing.T) {
	records := []Transaction{
		{Date: NewDate(2024, 2, 10), Description: "a", Amount: Money{Cents: -20000}},
	}
	got := ComparePeriods(records, NewDate(2024, 2, 1), NewDate(2024, 2, 29))
	if got.ExpenseChange != 0 || got.IncomeChange != 0 || got.CountChange != 0 {
		t.Fatalf("all change figures must be 0 when the previous window is empty, got %+v", got)
	}
}
