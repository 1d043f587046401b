// Package analytics derives category aggregates from the loaded record set.
// Everything here is recomputed from scratch on demand; all functions are
// total over their inputs, including the empty sequence.
package analytics

import (
	"sort"

	"spendview/internal/core"
)

// CategoryTotal is one entry of a ranked category mapping.
type CategoryTotal struct {
	Name  string  `json:"category"`
	Total float64 `json:"total"`
}

// CategoryTotals sums amounts per category name at the given hierarchy level.
// Blank category names are excluded. With spendOnly set, only positive
// amounts ("spend" views) contribute; otherwise signed amounts sum to a net.
func CategoryTotals(records []core.ExpenseRecord, level core.Level, spendOnly bool) *core.Totals {
	totals := core.NewTotals()
	for _, r := range records {
		if spendOnly && r.Amount <= 0 {
			continue
		}
		name := r.CategoryAt(level)
		if name == "" {
			continue
		}
		totals.Add(name, r.Amount)
	}
	return totals
}

// Ranked returns totals sorted by total descending, or by absolute total
// descending when byAbs is set. Ties keep the totals' insertion order.
func Ranked(totals *core.Totals, byAbs bool) []CategoryTotal {
	out := make([]CategoryTotal, 0, totals.Len())
	for _, name := range totals.Keys() {
		out = append(out, CategoryTotal{Name: name, Total: totals.Get(name)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Total, out[j].Total
		if byAbs {
			a, b = abs(a), abs(b)
		}
		return a > b
	})
	return out
}

// TopN takes the first n entries of the ranked totals.
func TopN(totals *core.Totals, n int, byAbs bool) []CategoryTotal {
	ranked := Ranked(totals, byAbs)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// DefaultDisplayCategories picks the n most significant Level1 categories by
// absolute net total. This is the drill-down state machine's initial display.
func DefaultDisplayCategories(records []core.ExpenseRecord, n int) []string {
	top := TopN(CategoryTotals(records, core.Level1, false), n, true)
	names := make([]string, len(top))
	for i, ct := range top {
		names[i] = ct.Name
	}
	return names
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
