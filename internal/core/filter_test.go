package core

import "testing"

func sampleLedger() []Transaction {
	return []Transaction{
		{ID: "1", Date: NewDate(2024, 1, 5), Description: "Checkers Sixty60", Amount: Money{Cents: -10000}, Category: "Food", Account: "Discovery"},
		{ID: "2", Date: NewDate(2024, 1, 10), Description: "Uber Eats", Amount: Money{Cents: -5000}, Category: "Food", Account: "Absa", IsRecurring: false},
		{ID: "3", Date: NewDate(2024, 1, 1), Description: "Salary", Amount: Money{Cents: 200000}, Category: "Income", Account: "Discovery"},
		{ID: "4", Date: NewDate(2024, 2, 14), Description: "Netflix", Note: "family plan", Amount: Money{Cents: -19900}, Category: "Subscriptions", Account: "Absa", IsRecurring: true},
		{ID: "5", Date: Date{}, Description: "Balance adjustment", Amount: Money{Cents: 0}, Category: "", Account: "Capitec"},
	}
}

func ids(ts []Transaction) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func assertIDs(t *testing.T, got []Transaction, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("expected ids %v, got %v", want, g)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("expected ids %v, got %v", want, g)
		}
	}
}

func TestApplyEmptyFilterReturnsEverything(t *testing.T) {
	records := sampleLedger()
	got := Apply(records, Filter{})
	assertIDs(t, got, "1", "2", "3", "4", "5")

	// Result must be a copy, not the same backing array.
	got[0].ID = "mutated"
	if records[0].ID != "1" {
		t.Fatal("Apply must not expose the input slice")
	}
}

func TestApplyCriteria(t *testing.T) {
	records := sampleLedger()
	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"category set", Filter{Categories: []string{"Food"}}, []string{"1", "2"}},
		{"empty category set means all", Filter{Categories: nil}, []string{"1", "2", "3", "4", "5"}},
		{"account set", Filter{Accounts: []string{"Absa"}}, []string{"2", "4"}},
		{"search description", Filter{Search: "uber"}, []string{"2"}},
		{"search note", Filter{Search: "FAMILY"}, []string{"4"}},
		{"date range inclusive", Filter{DateFrom: NewDate(2024, 1, 5), DateTo: NewDate(2024, 1, 10)}, []string{"1", "2"}},
		{"open lower bound", Filter{DateTo: NewDate(2024, 1, 1)}, []string{"3"}},
		{"dateless excluded from bounded filter", Filter{DateFrom: NewDate(2000, 1, 1)}, []string{"1", "2", "3", "4"}},
		{"income only", Filter{Type: TypeIncome}, []string{"3"}},
		{"expense only", Filter{Type: TypeExpense}, []string{"1", "2", "4"}},
		{"zero amount matches only all", Filter{Type: TypeAll}, []string{"1", "2", "3", "4", "5"}},
		{"amount range on absolute value", Filter{AmountMin: 6000, AmountMax: 50000}, []string{"1", "4"}},
		{"recurring only", Filter{RecurringOnly: true}, []string{"4"}},
		{"conjunction", Filter{Categories: []string{"Food"}, Accounts: []string{"Discovery"}}, []string{"1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertIDs(t, Apply(records, tc.filter), tc.want...)
		})
	}
}

func TestApplyPreservesRelativeOrder(t *testing.T) {
	// Filtering by Food keeps both Food records in their original
	// relative order.
	records := []Transaction{
		{ID: "a", Date: NewDate(2024, 1, 5), Description: "x", Amount: Money{Cents: -10000}, Category: "Food"},
		{ID: "b", Date: NewDate(2024, 1, 10), Description: "y", Amount: Money{Cents: -5000}, Category: "Food"},
		{ID: "c", Date: NewDate(2024, 1, 1), Description: "z", Amount: Money{Cents: 200000}, Category: "Income"},
	}
	assertIDs(t, Apply(records, Filter{Categories: []string{"Food"}}), "a", "b")
}
