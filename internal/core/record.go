package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Category hierarchy levels. Every record carries all three as independent
// string fields; the data source does not guarantee they nest consistently.
const (
	Level1 Level = "level1"
	Level2 Level = "level2"
	Level3 Level = "level3"
)

type (
	Level string

	// ExpenseRecord is one parsed bank transaction. Records are immutable
	// once constructed; the loaded set is replaced wholesale, never patched.
	ExpenseRecord struct {
		ID              string
		Date            string // raw DD/MM/YY as it appeared in the source
		Year            int
		Week            int
		Description     string
		Amount          float64 // signed: spends positive, refunds negative
		Level1          string
		Level2          string
		Level3          string
		TransactionType string
		PaymentMode     string
		Category        string // "{level2} - {level3}", derived at parse time
	}
)

var ErrBadDate = errors.New("date must match DD/MM/YY")

// ParseDMY parses a two-digit-year DD/MM/YY date. The year is always
// anchored to the 2000s, so 99 means 2099. Only the pattern is validated;
// out-of-range day or month values normalize forward onto the calendar.
func ParseDMY(s string) (time.Time, error) {
	if len(s) != 8 || s[2] != '/' || s[5] != '/' {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	for _, i := range [...]int{0, 1, 3, 4, 6, 7} {
		if s[i] < '0' || s[i] > '9' {
			return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
		}
	}
	day := int(s[0]-'0')*10 + int(s[1]-'0')
	month := int(s[3]-'0')*10 + int(s[4]-'0')
	year := 2000 + int(s[6]-'0')*10 + int(s[7]-'0')
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// Time returns the record's calendar date. The parser only admits records
// whose date field parses, so failure here means a hand-built record.
func (e ExpenseRecord) Time() (time.Time, error) {
	return ParseDMY(e.Date)
}

// CategoryAt returns the record's category name at the given hierarchy level.
func (e ExpenseRecord) CategoryAt(level Level) string {
	switch level {
	case Level1:
		return e.Level1
	case Level2:
		return e.Level2
	case Level3:
		return e.Level3
	}
	return ""
}

// DeriveCategory builds the combined category label stored on each record.
func DeriveCategory(level2, level3 string) string {
	return strings.TrimSpace(level2) + " - " + strings.TrimSpace(level3)
}
