// Package table implements the all-expenses tabular view: independent
// per-column text filters plus a single-key sort over the full record set.
package table

import (
	"sort"
	"strconv"
	"strings"

	"spendview/internal/core"
)

// Column names accepted by filters and sort keys.
const (
	ColID              = "id"
	ColDate            = "date"
	ColYear            = "year"
	ColWeek            = "week"
	ColDescription     = "description"
	ColAmount          = "amount"
	ColLevel1          = "level1"
	ColLevel2          = "level2"
	ColLevel3          = "level3"
	ColTransactionType = "transactionType"
	ColPaymentMode     = "paymentMode"
	ColCategory        = "category"
)

type (
	// SortKey is the single active sort column and direction.
	SortKey struct {
		Column string `json:"column"`
		Desc   bool   `json:"desc"`
	}

	// Query is one table request: per-column substring filters (ANDed)
	// plus the sort key.
	Query struct {
		Filters map[string]string
		Sort    SortKey
	}
)

// DefaultSort is the table's initial state: newest first.
var DefaultSort = SortKey{Column: ColDate, Desc: true}

// NextSort returns the sort key after the user selects a column header:
// reselecting the active column flips the direction, a new column starts
// ascending.
func NextSort(current SortKey, column string) SortKey {
	if current.Column == column {
		return SortKey{Column: column, Desc: !current.Desc}
	}
	return SortKey{Column: column}
}

// Apply filters and sorts the records for display. A record passes only if
// every non-empty filter's lowercase text is a substring of that column's
// stringified value. The input slice is never modified.
func Apply(records []core.ExpenseRecord, q Query) []core.ExpenseRecord {
	out := make([]core.ExpenseRecord, 0, len(records))
	for _, r := range records {
		if matches(r, q.Filters) {
			out = append(out, r)
		}
	}

	col := q.Sort.Column
	if col == "" {
		col = DefaultSort.Column
	}
	sort.SliceStable(out, func(i, j int) bool {
		cmp := compare(out[i], out[j], col)
		if q.Sort.Desc {
			return cmp > 0
		}
		return cmp < 0
	})
	return out
}

func matches(r core.ExpenseRecord, filters map[string]string) bool {
	for col, f := range filters {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(columnValue(r, col)), f) {
			return false
		}
	}
	return true
}

// compare dispatches on column semantics: dates compare as true calendar
// dates (never lexically), numeric columns numerically, the rest as strings.
func compare(a, b core.ExpenseRecord, col string) int {
	switch col {
	case ColDate:
		at, aerr := a.Time()
		bt, berr := b.Time()
		if aerr == nil && berr == nil {
			return at.Compare(bt)
		}
	case ColAmount:
		return compareFloat(a.Amount, b.Amount)
	case ColYear:
		return a.Year - b.Year
	case ColWeek:
		return a.Week - b.Week
	}
	return strings.Compare(strings.ToLower(columnValue(a, col)), strings.ToLower(columnValue(b, col)))
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func columnValue(r core.ExpenseRecord, col string) string {
	switch col {
	case ColID:
		return r.ID
	case ColDate:
		return r.Date
	case ColYear:
		return strconv.Itoa(r.Year)
	case ColWeek:
		return strconv.Itoa(r.Week)
	case ColDescription:
		return r.Description
	case ColAmount:
		return strconv.FormatFloat(r.Amount, 'f', -1, 64)
	case ColLevel1:
		return r.Level1
	case ColLevel2:
		return r.Level2
	case ColLevel3:
		return r.Level3
	case ColTransactionType:
		return r.TransactionType
	case ColPaymentMode:
		return r.PaymentMode
	case ColCategory:
		return r.Category
	}
	return ""
}
