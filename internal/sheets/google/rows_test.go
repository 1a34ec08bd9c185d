package google

import (
	"strings"
	"testing"
	"time"

	"moneytracker/internal/core"
)

func sampleEntries(t *testing.T) []core.Entry {
	t.Helper()
	salary, _ := core.AmountFromString("1000")
	food, _ := core.AmountFromString("12.5")
	return []core.Entry{
		{ID: 1735725600001, Amount: food, Kind: core.Expense, Category: "Food", Note: "lunch",
			Timestamp: core.NewTimestamp(time.Date(2025, 1, 1, 12, 30, 0, 0, time.UTC))},
		{ID: 1735725600000, Amount: salary, Kind: core.Income, Category: "Salary",
			Timestamp: core.NewTimestamp(time.Date(2025, 1, 1, 10, 0, 0, 123000000, time.UTC))},
	}
}

func TestEntriesToRows(t *testing.T) {
	rows := entriesToRows(sampleEntries(t))
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if got := toStrings(rows[0]); strings.Join(got, ",") != "ID,Timestamp,Kind,Category,Amount,Note" {
		t.Fatalf("unexpected header %v", got)
	}
	want := []string{"1735725600000", "2025-01-01T10:00:00.123Z", "income", "Salary", "1000", ""}
	got := toStrings(rows[2])
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row = %v, want %v", got, want)
		}
	}
}

func TestRowsRoundTrip(t *testing.T) {
	in := sampleEntries(t)
	out, err := rowsToEntries(entriesToRows(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d entries, want %d", len(out), len(in))
	}
	for i := range in {
		a, b := in[i], out[i]
		if a.ID != b.ID || a.Kind != b.Kind || a.Category != b.Category || a.Note != b.Note ||
			!a.Amount.Equal(b.Amount) || !a.Timestamp.Equal(b.Timestamp.Time) {
			t.Fatalf("entry %d: got %+v, want %+v", i, b, a)
		}
	}
}

func TestRowsToEntriesColumnOrderAndBlanks(t *testing.T) {
	values := [][]interface{}{
		{"Amount", "Kind", "Category", "Timestamp", "ID"},
		{"42", "expense", "Bills", "2025-03-01T08:00:00.000Z", "7"},
		{},
		{"", "", "", "", ""},
	}
	out, err := rowsToEntries(values)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(out) != 1 || out[0].ID != 7 || out[0].Category != "Bills" || out[0].Note != "" {
		t.Fatalf("unexpected entries %+v", out)
	}
}

func TestRowsToEntriesErrors(t *testing.T) {
	cases := []struct {
		name   string
		values [][]interface{}
		want   string
	}{
		{"missing header", [][]interface{}{{"ID", "Kind"}}, "missing Timestamp,Category,Amount"},
		{"bad id", [][]interface{}{
			{"ID", "Timestamp", "Kind", "Category", "Amount"},
			{"x", "2025-03-01T08:00:00.000Z", "income", "Gift", "1"},
		}, "row 2: id"},
		{"bad kind", [][]interface{}{
			{"ID", "Timestamp", "Kind", "Category", "Amount"},
			{"1", "2025-03-01T08:00:00.000Z", "transfer", "Gift", "1"},
		}, "kind"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := rowsToEntries(tc.values)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestRowsToEntriesEmpty(t *testing.T) {
	out, err := rowsToEntries(nil)
	if err != nil || out != nil {
		t.Fatalf("expected nil, nil; got %v, %v", out, err)
	}
}
