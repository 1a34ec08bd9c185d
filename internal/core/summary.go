package core

// Totals aggregates a collection of entries.
type Totals struct {
	Income  Amount `json:"income"`
	Expense Amount `json:"expense"`
	Balance Amount `json:"balance"`
}

// ComputeTotals sums income and expense amounts and derives the balance.
func ComputeTotals(entries []Entry) Totals {
	var t Totals
	for _, e := range entries {
		switch e.Kind {
		case Income:
			t.Income = t.Income.Add(e.Amount)
		case Expense:
			t.Expense = t.Expense.Add(e.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	return t
}

// FilterEntries returns the entries matching f, in their original order.
func FilterEntries(entries []Entry, f Filter) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}
