// Package trend groups expense records into calendar-month buckets and
// derives the chart series consumed by the monthly trend renderer: per
// category net totals, Level2→Level3 breakdowns for tooltips, and trailing
// 3-month moving averages.
package trend

import (
	"sort"
	"time"

	"spendview/internal/core"
)

type (
	// Bucket is one calendar month's aggregated data, keyed by month and
	// two-digit year ("Jan-24"). Totals and MovingAvg are dense over the
	// series' full category list.
	Bucket struct {
		Label     string
		Start     time.Time // first of month, used for chronological order
		Totals    map[string]float64
		MovingAvg map[string]float64
		// Breakdown maps a Level2 category to its Level3 subtotals for
		// this month. Only populated where a record carries both levels.
		Breakdown map[string]*core.Totals
	}

	// Series is the chronologically ordered bucket sequence plus every
	// category name observed anywhere in the record set, at any of the
	// three hierarchy levels, in first-occurrence order.
	Series struct {
		Buckets    []Bucket
		Categories []string
	}
)

const maWindow = 3

// Monthly builds the month-bucket series for the given records. Buckets
// exist only for months with at least one record; buckets spanning calendar
// years sort by true chronology, never lexically. The output is a pure
// function of the input and is recomputed from scratch on every call.
func Monthly(records []core.ExpenseRecord) Series {
	if len(records) == 0 {
		return Series{}
	}

	byLabel := make(map[string]*Bucket)
	order := make([]*Bucket, 0)
	categories := core.NewOrderedMap[struct{}]()

	for _, r := range records {
		when, err := r.Time()
		if err != nil {
			continue // parser admits only valid dates; skip hand-built strays
		}
		start := time.Date(when.Year(), when.Month(), 1, 0, 0, 0, 0, time.UTC)
		label := start.Format("Jan-06")

		b, ok := byLabel[label]
		if !ok {
			b = &Bucket{
				Label:     label,
				Start:     start,
				Totals:    make(map[string]float64),
				MovingAvg: make(map[string]float64),
				Breakdown: make(map[string]*core.Totals),
			}
			byLabel[label] = b
			order = append(order, b)
		}

		// A record contributes to up to three category series at once.
		for _, name := range []string{r.Level1, r.Level2, r.Level3} {
			if name == "" {
				continue
			}
			categories.Set(name, struct{}{})
			b.Totals[name] += r.Amount
		}

		if r.Level2 != "" && r.Level3 != "" {
			bd, ok := b.Breakdown[r.Level2]
			if !ok {
				bd = core.NewTotals()
				b.Breakdown[r.Level2] = bd
			}
			bd.Add(r.Level3, r.Amount)
		}
	}

	sort.SliceStable(order, func(i, j int) bool { return order[i].Start.Before(order[j].Start) })

	s := Series{
		Buckets:    make([]Bucket, len(order)),
		Categories: categories.Keys(),
	}
	for i, b := range order {
		// Densify: every observed category gets an explicit entry.
		for _, cat := range s.Categories {
			if _, ok := b.Totals[cat]; !ok {
				b.Totals[cat] = 0
			}
		}
		s.Buckets[i] = *b
	}
	s.computeMovingAverages()
	return s
}

// computeMovingAverages fills each bucket's trailing mean over the window
// [max(0, i-2), i]. The window shrinks at the start of the series, so the
// first bucket's average equals its raw total.
func (s *Series) computeMovingAverages() {
	for i := range s.Buckets {
		lo := i - (maWindow - 1)
		if lo < 0 {
			lo = 0
		}
		n := float64(i - lo + 1)
		for _, cat := range s.Categories {
			var sum float64
			for j := lo; j <= i; j++ {
				sum += s.Buckets[j].Totals[cat]
			}
			s.Buckets[i].MovingAvg[cat] = sum / n
		}
	}
}

// Matrix renders the series as the dense row objects the chart renderer
// consumes: one row per bucket keyed by "name", every category name, every
// "<category>_MA" derived key, and a "<level2>_breakdown" child map where
// breakdown data exists.
func (s Series) Matrix() []map[string]any {
	rows := make([]map[string]any, 0, len(s.Buckets))
	for _, b := range s.Buckets {
		row := make(map[string]any, 2*len(s.Categories)+1)
		row["name"] = b.Label
		for _, cat := range s.Categories {
			row[cat] = b.Totals[cat]
			row[cat+"_MA"] = b.MovingAvg[cat]
		}
		for l2, bd := range b.Breakdown {
			children := make(map[string]float64, bd.Len())
			for _, l3 := range bd.Keys() {
				children[l3] = bd.Get(l3)
			}
			row[l2+"_breakdown"] = children
		}
		rows = append(rows, row)
	}
	return rows
}
