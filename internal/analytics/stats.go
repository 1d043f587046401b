package analytics

import "spendview/internal/core"

// Stats backs the stat cards at the top of the dashboard.
type Stats struct {
	Regular float64 `json:"regular"`
	OneTime float64 `json:"oneTime"`
	Total   float64 `json:"total"`
}

// ComputeStats nets each Level1 bucket over signed amounts, then reports the
// absolute value of each. Total is the sum of the two absolutes, which the
// cards present as consistent with each other; when either bucket is net
// negative this diverges from the true signed net of all records. That is
// the shipped behavior and is kept as is.
func ComputeStats(records []core.ExpenseRecord) Stats {
	var regular, oneTime float64
	for _, r := range records {
		switch r.Level1 {
		case "Regular":
			regular += r.Amount
		case "One-Time":
			oneTime += r.Amount
		}
	}
	regular = abs(regular)
	oneTime = abs(oneTime)
	return Stats{Regular: regular, OneTime: oneTime, Total: regular + oneTime}
}
