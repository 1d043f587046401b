// Package dashboard owns the drill-down display state and mediates between
// user selection events and the derived views. All mutation goes through the
// Controller's transition methods; rendering collaborators only ever see
// read-only snapshots.
package dashboard

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"spendview/internal/analytics"
	"spendview/internal/cache"
	"spendview/internal/core"
	"spendview/internal/trend"
)

// defaultDisplayCount is how many Level1 categories the initial view shows.
const defaultDisplayCount = 5

type (
	// DisplayState is the active drill-down selection. Parent is set iff
	// Level is Level3.
	DisplayState struct {
		Level      core.Level `json:"level"`
		Categories []string   `json:"categories"`
		Parent     string     `json:"parentCategory,omitempty"`
	}

	// Snapshot is a read-only view of the controller plus the aggregates
	// the stat cards and highlight panels render.
	Snapshot struct {
		DatasetID    string                    `json:"datasetId"`
		RecordCount  int                       `json:"recordCount"`
		Year         int                       `json:"year"` // 0 means all years
		Years        []int                     `json:"years"`
		Level1Filter string                    `json:"level1Filter,omitempty"`
		Display      DisplayState              `json:"display"`
		Stats        analytics.Stats           `json:"stats"`
		TopLevel2    []analytics.CategoryTotal `json:"topCategories"`
		Highlights   analytics.Highlights      `json:"highlights"`
	}

	// TrendView is the chart payload: the dense bucket matrix plus the
	// state needed to pick which series to draw.
	TrendView struct {
		Matrix     []map[string]any `json:"data"`
		Categories []string         `json:"allCategories"`
		Display    DisplayState     `json:"display"`
	}

	// CategoryOptions lists the selectable chips and dropdown entries.
	CategoryOptions struct {
		Level1 []string            `json:"level1"`
		Level2 []string            `json:"level2"`
		Level3 map[string][]string `json:"level3"` // keyed by Level2 parent
	}

	Controller struct {
		mu           sync.Mutex
		records      []core.ExpenseRecord
		datasetID    string
		year         int
		yearChosen   bool
		level1Filter string
		display      DisplayState
		series       *cache.LRUCache[trend.Series]
	}
)

func NewController() *Controller {
	return &Controller{
		datasetID: uuid.NewString(),
		display:   DisplayState{Level: core.Level1, Categories: []string{}},
		series:    cache.NewLRUCache[trend.Series](16, 10*time.Minute),
	}
}

// ReplaceRecords swaps in a freshly parsed record set. The previous set is
// discarded wholesale. An empty current selection re-runs the initial-state
// computation; a non-empty one is preserved, with stale category names
// rendering as all-zero series rather than erroring.
func (c *Controller) ReplaceRecords(records []core.ExpenseRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = records
	c.datasetID = uuid.NewString()

	if !c.yearChosen {
		if years := availableYears(records); len(years) > 0 {
			c.year = years[len(years)-1]
			c.yearChosen = true
		}
	}
	if len(c.display.Categories) == 0 && c.level1Filter == "" {
		c.resetDisplayLocked()
	}
}

// SelectLevel1 applies a Level1 filter chip. Selecting the active chip
// toggles the filter off and restores the default top-category view computed
// against the unfiltered set.
func (c *Controller) SelectLevel1(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.level1Filter == category {
		c.level1Filter = ""
		c.resetDisplayLocked()
		return
	}
	c.level1Filter = category
	c.display = DisplayState{Level: core.Level1, Categories: []string{category}}
}

// SelectLevel2 shows a single mid-level category's trend. It always replaces
// the prior Level2/Level3 selection, never merges.
func (c *Controller) SelectLevel2(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.display = DisplayState{Level: core.Level2, Categories: []string{category}}
}

// ToggleLevel3 adds or removes one leaf under the given Level2 parent.
// Switching parent (or coming from a non-Level3 view) starts from an empty
// working set. An empty result collapses back to the parent's Level2 view.
func (c *Controller) ToggleLevel3(category, parent string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	working := c.display.Categories
	if c.display.Level != core.Level3 || c.display.Parent != parent {
		working = nil
	}

	next := make([]string, 0, len(working)+1)
	removed := false
	for _, cat := range working {
		if cat == category {
			removed = true
			continue
		}
		next = append(next, cat)
	}
	if !removed {
		next = append(next, category)
	}

	if len(next) == 0 {
		c.display = DisplayState{Level: core.Level2, Categories: []string{parent}}
		return
	}
	c.display = DisplayState{Level: core.Level3, Categories: next, Parent: parent}
}

// SetYear switches the working year (0 means all years). The drill-down
// selection persists across the switch; only an empty selection re-runs the
// default computation.
func (c *Controller) SetYear(year int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.year = year
	c.yearChosen = true
	if len(c.display.Categories) == 0 && c.level1Filter == "" {
		c.resetDisplayLocked()
	}
}

func (c *Controller) resetDisplayLocked() {
	c.display = DisplayState{
		Level:      core.Level1,
		Categories: analytics.DefaultDisplayCategories(c.yearRecordsLocked(), defaultDisplayCount),
	}
}

// Snapshot computes the stat-card aggregates over the year-filtered set.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	working := c.yearRecordsLocked()
	return Snapshot{
		DatasetID:    c.datasetID,
		RecordCount:  len(c.records),
		Year:         c.year,
		Years:        availableYears(c.records),
		Level1Filter: c.level1Filter,
		Display:      c.displayCopyLocked(),
		Stats:        analytics.ComputeStats(working),
		TopLevel2:    analytics.TopN(analytics.CategoryTotals(working, core.Level2, true), 5, false),
		Highlights:   analytics.ComputeHighlights(working),
	}
}

// Trend returns the chart payload for the current context. Series for a
// given dataset, year, and Level1 filter are cached; any state change lands
// on a different key, so invalidation is implicit.
func (c *Controller) Trend() TrendView {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.seriesLocked()
	return TrendView{
		Matrix:     s.Matrix(),
		Categories: s.Categories,
		Display:    c.displayCopyLocked(),
	}
}

// Detail returns the tooltip payload for one bucket of the current view.
func (c *Controller) Detail(bucketLabel string) trend.Detail {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.seriesLocked()
	return s.DetailFor(bucketLabel, c.display.Level == core.Level2, c.display.Categories)
}

// Options lists the selectable category chips over the year-filtered set.
func (c *Controller) Options() CategoryOptions {
	c.mu.Lock()
	defer c.mu.Unlock()

	l1 := make(map[string]struct{})
	l2 := make(map[string]struct{})
	l3 := make(map[string]map[string]struct{})
	for _, r := range c.yearRecordsLocked() {
		if r.Level1 != "" {
			l1[r.Level1] = struct{}{}
		}
		if r.Level2 != "" {
			l2[r.Level2] = struct{}{}
		}
		if r.Level2 != "" && r.Level3 != "" {
			if l3[r.Level2] == nil {
				l3[r.Level2] = make(map[string]struct{})
			}
			l3[r.Level2][r.Level3] = struct{}{}
		}
	}

	opts := CategoryOptions{
		Level1: sortedKeys(l1),
		Level2: sortedKeys(l2),
		Level3: make(map[string][]string, len(l3)),
	}
	for parent, leaves := range l3 {
		opts.Level3[parent] = sortedKeys(leaves)
	}
	return opts
}

// ContextRecords projects the records the chat collaborator should see:
// year-filtered, then narrowed to the active display. An empty selection
// falls back to the whole year-filtered set.
func (c *Controller) ContextRecords() []core.ExpenseRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	working := c.yearRecordsLocked()
	if len(c.display.Categories) == 0 {
		return working
	}

	active := make(map[string]struct{}, len(c.display.Categories))
	for _, cat := range c.display.Categories {
		active[cat] = struct{}{}
	}

	out := make([]core.ExpenseRecord, 0, len(working))
	for _, r := range working {
		if c.level1Filter != "" && r.Level1 != c.level1Filter {
			continue
		}
		var member bool
		switch c.display.Level {
		case core.Level1:
			_, member = active[r.Level1]
		case core.Level2:
			_, member = active[r.Level2]
		case core.Level3:
			if r.Level2 == c.display.Parent {
				_, member = active[r.Level3]
			}
		}
		if member {
			out = append(out, r)
		}
	}
	return out
}

// AllRecords returns a copy of the full loaded set (the table view operates
// on all years).
func (c *Controller) AllRecords() []core.ExpenseRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.ExpenseRecord(nil), c.records...)
}

// YearRecords returns a copy of the year-filtered working set.
func (c *Controller) YearRecords() []core.ExpenseRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.ExpenseRecord(nil), c.yearRecordsLocked()...)
}

func (c *Controller) yearRecordsLocked() []core.ExpenseRecord {
	if c.year == 0 {
		return c.records
	}
	out := make([]core.ExpenseRecord, 0, len(c.records))
	for _, r := range c.records {
		if r.Year == c.year {
			out = append(out, r)
		}
	}
	return out
}

func (c *Controller) seriesLocked() trend.Series {
	key := c.datasetID + "|" + strconvYear(c.year) + "|" + c.level1Filter
	if s, ok := c.series.Get(key); ok {
		return s
	}

	working := c.yearRecordsLocked()
	if c.level1Filter != "" {
		filtered := make([]core.ExpenseRecord, 0, len(working))
		for _, r := range working {
			if r.Level1 == c.level1Filter {
				filtered = append(filtered, r)
			}
		}
		working = filtered
	}
	s := trend.Monthly(working)
	c.series.Set(key, s)
	return s
}

func (c *Controller) displayCopyLocked() DisplayState {
	return DisplayState{
		Level:      c.display.Level,
		Categories: append([]string(nil), c.display.Categories...),
		Parent:     c.display.Parent,
	}
}

func availableYears(records []core.ExpenseRecord) []int {
	seen := make(map[int]struct{})
	for _, r := range records {
		if r.Year != 0 {
			seen[r.Year] = struct{}{}
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func strconvYear(y int) string {
	if y == 0 {
		return "all"
	}
	return strconv.Itoa(y)
}
