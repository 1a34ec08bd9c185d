package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func mustAmount(t *testing.T, s string) Amount {
	t.Helper()
	a, err := AmountFromString(s)
	if err != nil {
		t.Fatalf("amount %q: %v", s, err)
	}
	return a
}

func TestEntryInputValidate(t *testing.T) {
	good := EntryInput{Kind: Income, Amount: mustAmount(t, "1000"), Category: "Salary"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		in   EntryInput
		want error
	}{
		{"zero amount", EntryInput{Kind: Expense, Amount: mustAmount(t, "0"), Category: "Food"}, ErrInvalidAmount},
		{"negative amount", EntryInput{Kind: Expense, Amount: mustAmount(t, "-5"), Category: "Food"}, ErrInvalidAmount},
		{"missing amount", EntryInput{Kind: Expense, Category: "Food"}, ErrInvalidAmount},
		{"empty category", EntryInput{Kind: Expense, Amount: mustAmount(t, "1"), Category: "  "}, ErrEmptyCategory},
		{"unknown kind", EntryInput{Kind: "transfer", Amount: mustAmount(t, "1"), Category: "Food"}, ErrInvalidKind},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected error to wrap ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestEntryInputNormalizeAndApply(t *testing.T) {
	in := EntryInput{Kind: Expense, Amount: mustAmount(t, "3"), Category: " Food ", Note: " lunch "}.Normalize()
	if in.Category != "Food" || in.Note != "lunch" {
		t.Fatalf("unexpected normalized input: %+v", in)
	}

	ts := NewTimestamp(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	e := Entry{ID: 7, Kind: Income, Amount: mustAmount(t, "1"), Category: "Gift", Timestamp: ts}
	got := in.Apply(e)
	if got.ID != 7 || !got.Timestamp.Equal(ts.Time) {
		t.Fatalf("identity changed: %+v", got)
	}
	if got.Kind != Expense || got.Category != "Food" || got.Note != "lunch" || !got.Amount.Equal(in.Amount) {
		t.Fatalf("fields not replaced: %+v", got)
	}
}

func TestParseKindAndFilter(t *testing.T) {
	if k, err := ParseKind(" Income "); err != nil || k != Income {
		t.Fatalf("ParseKind: %v %v", k, err)
	}
	if _, err := ParseKind("loan"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}

	for in, want := range map[string]Filter{"": FilterAll, "ALL": FilterAll, "income": FilterIncome, "expense": FilterExpense} {
		got, err := ParseFilter(in)
		if err != nil || got != want {
			t.Fatalf("ParseFilter(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFilter("pending"); !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
}

func TestEntryJSON(t *testing.T) {
	e := Entry{
		ID:        1735725600000,
		Amount:    mustAmount(t, "1000.5"),
		Kind:      Income,
		Category:  "Salary",
		Timestamp: NewTimestamp(time.Date(2025, 1, 1, 10, 0, 0, 123456789, time.UTC)),
	}
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":1735725600000,"amount":1000.5,"kind":"income","category":"Salary","timestamp":"2025-01-01T10:00:00.123Z"}`
	if string(b) != want {
		t.Fatalf("unexpected json:\n got %s\nwant %s", b, want)
	}

	var back Entry
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.ID != e.ID || !back.Amount.Equal(e.Amount) || !back.Timestamp.Equal(e.Timestamp.Time) || back.Note != "" {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, e)
	}
}

func TestEntryAmountAcceptsQuotedNumber(t *testing.T) {
	var e Entry
	if err := json.Unmarshal([]byte(`{"id":1,"amount":"12.30","kind":"expense","category":"Food","timestamp":"2025-01-01T00:00:00Z"}`), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !e.Amount.Equal(mustAmount(t, "12.3")) {
		t.Fatalf("unexpected amount %s", e.Amount)
	}
}

func TestEntrySigned(t *testing.T) {
	e := Entry{Kind: Expense, Amount: mustAmount(t, "300")}
	if !e.Signed().Equal(mustAmount(t, "-300")) {
		t.Fatalf("expense should be negative, got %s", e.Signed())
	}
	e.Kind = Income
	if !e.Signed().Equal(mustAmount(t, "300")) {
		t.Fatalf("income should be positive, got %s", e.Signed())
	}
}

func TestCategoriesFor(t *testing.T) {
	inc := CategoriesFor(Income)
	if len(inc) != 5 || inc[0] != "Salary" || inc[4] != "Other" {
		t.Fatalf("unexpected income categories: %v", inc)
	}
	exp := CategoriesFor(Expense)
	if len(exp) != 7 || exp[0] != "Food" || exp[5] != "Health" {
		t.Fatalf("unexpected expense categories: %v", exp)
	}
	// callers get a copy
	inc[0] = "changed"
	if CategoriesFor(Income)[0] != "Salary" {
		t.Fatalf("category table was mutated")
	}
	if CategoriesFor("other") != nil {
		t.Fatalf("expected nil for unknown kind")
	}
}

func TestComputeTotalsAndFilter(t *testing.T) {
	entries := []Entry{
		{ID: 3, Kind: Expense, Amount: mustAmount(t, "300"), Category: "Food"},
		{ID: 2, Kind: Income, Amount: mustAmount(t, "1000"), Category: "Salary"},
		{ID: 1, Kind: Expense, Amount: mustAmount(t, "0.1"), Category: "Bills"},
		{ID: 0, Kind: Expense, Amount: mustAmount(t, "0.2"), Category: "Bills"},
	}
	tot := ComputeTotals(entries)
	if !tot.Income.Equal(mustAmount(t, "1000")) || !tot.Expense.Equal(mustAmount(t, "300.3")) {
		t.Fatalf("unexpected totals: %+v", tot)
	}
	if !tot.Balance.Equal(tot.Income.Sub(tot.Expense)) || !tot.Balance.Equal(mustAmount(t, "699.7")) {
		t.Fatalf("unexpected balance: %s", tot.Balance)
	}

	empty := ComputeTotals(nil)
	if !empty.Balance.IsZero() || !empty.Income.IsZero() || !empty.Expense.IsZero() {
		t.Fatalf("expected zero totals, got %+v", empty)
	}

	exp := FilterEntries(entries, FilterExpense)
	if len(exp) != 3 || exp[0].ID != 3 || exp[1].ID != 1 || exp[2].ID != 0 {
		t.Fatalf("unexpected expense filter: %+v", exp)
	}
	if got := FilterEntries(entries, FilterAll); len(got) != 4 {
		t.Fatalf("expected all entries, got %d", len(got))
	}
}
