// Package ingest turns a raw CSV export of bank transactions into typed
// expense records. Parsing is a pure function of the input text: no I/O, no
// shared state, and the full record sequence materializes on every call.
package ingest

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"spendview/internal/core"
)

// Expected header labels. Column order is resolved by name lookup, so a
// reordered export still parses.
const (
	colDate            = "Date"
	colYear            = "Year"
	colWeek            = "Week"
	colDescription     = "Description"
	colAmount          = "Amount"
	colLevel1          = "Level 1"
	colLevel2          = "Level 2"
	colLevel3          = "Level 3"
	colTransactionType = "Transaction Type"
	colPaymentMode     = "Payment Mode"
)

type columnIndex struct {
	date, year, week, description, amount    int
	level1, level2, level3, txType, payMode  int
	width                                    int
}

// Parse reads one CSV document and returns the admitted expense records in
// input order. A row is silently dropped when it has fewer fields than the
// header, its amount is not a finite number, or its date is not DD/MM/YY.
// Missing year/week values degrade to 0 instead of rejecting the row.
func Parse(text string) []core.ExpenseRecord {
	r := csv.NewReader(strings.NewReader(strings.TrimSpace(text)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil
	}
	idx := resolveColumns(header)

	records := make([]core.ExpenseRecord, 0)
	for row := 0; ; row++ {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // malformed row, row-level failure only
		}
		if rec, ok := parseRow(fields, idx, row); ok {
			records = append(records, rec)
		}
	}
	return records
}

func resolveColumns(header []string) columnIndex {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(h)] = i
	}
	at := func(name string) int {
		if i, ok := pos[name]; ok {
			return i
		}
		return -1
	}
	return columnIndex{
		date:        at(colDate),
		year:        at(colYear),
		week:        at(colWeek),
		description: at(colDescription),
		amount:      at(colAmount),
		level1:      at(colLevel1),
		level2:      at(colLevel2),
		level3:      at(colLevel3),
		txType:      at(colTransactionType),
		payMode:     at(colPaymentMode),
		width:       len(header),
	}
}

func parseRow(fields []string, idx columnIndex, row int) (core.ExpenseRecord, bool) {
	if len(fields) < idx.width {
		return core.ExpenseRecord{}, false
	}
	field := func(i int) string {
		if i < 0 || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	amount, err := strconv.ParseFloat(field(idx.amount), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return core.ExpenseRecord{}, false
	}

	dateStr := field(idx.date)
	when, err := core.ParseDMY(dateStr)
	if err != nil {
		return core.ExpenseRecord{}, false
	}

	return core.ExpenseRecord{
		// Timestamp plus row index: unique within a batch, not stable
		// across re-parses of a changed file.
		ID:              strconv.FormatInt(when.UnixMilli(), 10) + "-" + strconv.Itoa(row),
		Date:            dateStr,
		Year:            parseIntDefault(field(idx.year)),
		Week:            parseIntDefault(field(idx.week)),
		Description:     field(idx.description),
		Amount:          amount,
		Level1:          field(idx.level1),
		Level2:          field(idx.level2),
		Level3:          field(idx.level3),
		TransactionType: field(idx.txType),
		PaymentMode:     field(idx.payMode),
		Category:        core.DeriveCategory(field(idx.level2), field(idx.level3)),
	}, true
}

func parseIntDefault(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
