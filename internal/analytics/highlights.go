package analytics

import (
	"sort"
	"strings"

	"spendview/internal/core"
)

type (
	// CategoryCount is a per-category record count.
	CategoryCount struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	// Highlights holds the transaction-highlight card values. Pointers are
	// nil when the record set has no positive-amount spends.
	Highlights struct {
		LargestSpend *core.ExpenseRecord `json:"largestSpend"`
		MostFrequent *CategoryCount      `json:"mostFrequentCategory"`
	}
)

// ComputeHighlights finds the largest single spend and the most frequent
// Level3 category. Both consider only positive amounts. A record with an
// empty Level3 counts under the literal "Uncategorized" label; whitespace-only
// names are skipped outright.
func ComputeHighlights(records []core.ExpenseRecord) Highlights {
	var largest *core.ExpenseRecord
	counts := core.NewOrderedMap[int]()

	for i := range records {
		r := records[i]
		if r.Amount <= 0 {
			continue
		}
		if largest == nil || r.Amount > largest.Amount {
			largest = &records[i]
		}

		name := r.Level3
		if name == "" {
			name = "Uncategorized"
		}
		if strings.TrimSpace(name) == "" {
			continue
		}
		n, _ := counts.Get(name)
		counts.Set(name, n+1)
	}

	var h Highlights
	if largest != nil {
		cp := *largest
		h.LargestSpend = &cp
	}
	if top, ok := mostFrequent(counts); ok {
		h.MostFrequent = &top
	}
	return h
}

func mostFrequent(counts *core.OrderedMap[int]) (CategoryCount, bool) {
	entries := make([]CategoryCount, 0, counts.Len())
	for _, name := range counts.Keys() {
		n, _ := counts.Get(name)
		entries = append(entries, CategoryCount{Name: name, Count: n})
	}
	if len(entries) == 0 {
		return CategoryCount{}, false
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })
	return entries[0], true
}
