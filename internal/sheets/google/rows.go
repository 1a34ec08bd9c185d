package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"moneytracker/internal/core"
)

const lastColumn = "F"

var header = []string{"ID", "Timestamp", "Kind", "Category", "Amount", "Note"}

// entriesToRows renders the header row followed by one row per entry. Values
// are strings so that RAW input keeps ids and amounts exact.
func entriesToRows(entries []core.Entry) [][]interface{} {
	rows := make([][]interface{}, 0, len(entries)+1)
	h := make([]interface{}, len(header))
	for i, v := range header {
		h[i] = v
	}
	rows = append(rows, h)
	for _, e := range entries {
		rows = append(rows, []interface{}{
			strconv.FormatInt(e.ID, 10),
			e.Timestamp.String(),
			e.Kind.String(),
			e.Category,
			e.Amount.String(),
			e.Note,
		})
	}
	return rows
}

// rowsToEntries parses a values matrix written by entriesToRows. Columns are
// located by header name; blank rows are skipped.
func rowsToEntries(values [][]interface{}) ([]core.Entry, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := toStrings(values[0])
	cols := make(map[string]int, len(header))
	var missing []string
	for _, name := range header {
		idx := indexOf(headers, name)
		if idx == -1 && name != "Note" {
			missing = append(missing, name)
		}
		cols[name] = idx
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unexpected sheet header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}

	entries := make([]core.Entry, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if strings.Join(row, "") == "" {
			continue
		}
		e, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func parseRow(row []string, cols map[string]int) (core.Entry, error) {
	id, err := strconv.ParseInt(safeGet(row, cols["ID"]), 10, 64)
	if err != nil {
		return core.Entry{}, fmt.Errorf("id: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, safeGet(row, cols["Timestamp"]))
	if err != nil {
		return core.Entry{}, fmt.Errorf("timestamp: %w", err)
	}
	kind, err := core.ParseKind(safeGet(row, cols["Kind"]))
	if err != nil {
		return core.Entry{}, err
	}
	amount, err := core.AmountFromString(safeGet(row, cols["Amount"]))
	if err != nil {
		return core.Entry{}, fmt.Errorf("amount: %w", err)
	}
	return core.Entry{
		ID:        id,
		Amount:    amount,
		Kind:      kind,
		Category:  safeGet(row, cols["Category"]),
		Note:      safeGet(row, cols["Note"]),
		Timestamp: core.NewTimestamp(ts),
	}, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
