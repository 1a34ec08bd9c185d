package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"moneytracker/internal/core"
)

// plain disables terminal rendering of the markdown reports.
var plain bool

func printMarkdown(md string) {
	if plain {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Fprintln(os.Stderr, "render:", err)
	fmt.Print(md)
}

func entriesMarkdown(entries []core.Entry, currency string) string {
	if len(entries) == 0 {
		return "_No entries._\n"
	}
	var b strings.Builder
	b.WriteString("| ID | Date | Kind | Category | Amount | Note |\n")
	b.WriteString("|---:|------|------|----------|-------:|------|\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n",
			e.ID,
			e.Timestamp.Format("2006-01-02 15:04"),
			e.Kind,
			escapeCell(e.Category),
			signedAmount(e, currency),
			escapeCell(e.Note))
	}
	return b.String()
}

func signedAmount(e core.Entry, currency string) string {
	return core.Format(e.Signed(), currency)
}

func totalsMarkdown(t core.Totals, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Totals (%s)\n\n", strings.ToUpper(currency))
	b.WriteString("| | Amount |\n")
	b.WriteString("|---|---:|\n")
	fmt.Fprintf(&b, "| Income | %s |\n", core.Format(t.Income, currency))
	fmt.Fprintf(&b, "| Expense | %s |\n", core.Format(t.Expense, currency))
	fmt.Fprintf(&b, "| **Balance** | **%s** |\n", core.Format(t.Balance, currency))
	return b.String()
}

func categoriesMarkdown(kinds []core.Kind) string {
	var b strings.Builder
	for i, k := range kinds {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %s\n\n", strings.ToUpper(k.String()[:1])+k.String()[1:])
		for _, c := range core.CategoriesFor(k) {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}
	return b.String()
}

// escapeCell keeps user text from breaking the table layout.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
