package http

import (
	"moneytracker/internal/core"
)

// entryView is an entry plus its display rendering.
type entryView struct {
	core.Entry
	Display string `json:"display"`
}

type totalsView struct {
	core.Totals
	Currency  string            `json:"currency"`
	Formatted map[string]string `json:"formatted"`
}

func newEntryView(e core.Entry, currency string) entryView {
	return entryView{Entry: e, Display: core.Format(e.Amount, currency)}
}

func newEntryViews(entries []core.Entry, currency string) []entryView {
	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, newEntryView(e, currency))
	}
	return views
}

func newTotalsView(t core.Totals, currency string) totalsView {
	return totalsView{
		Totals:   t,
		Currency: currency,
		Formatted: map[string]string{
			"income":  core.Format(t.Income, currency),
			"expense": core.Format(t.Expense, currency),
			"balance": core.Format(t.Balance, currency),
		},
	}
}
