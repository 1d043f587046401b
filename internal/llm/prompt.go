package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"spendview/internal/core"
)

// CategorySummary compresses one category's records for the analysis prompt:
// total, count, and a few example descriptions for context.
type CategorySummary struct {
	Category            string   `json:"category"`
	TotalAmount         float64  `json:"totalAmount"`
	TransactionCount    int      `json:"transactionCount"`
	ExampleDescriptions []string `json:"exampleDescriptions"`
}

const maxExamples = 3

// Summarize aggregates records by their derived category label. Output order
// follows first occurrence, so the prompt is stable for a given record set.
func Summarize(records []core.ExpenseRecord) []CategorySummary {
	byCat := core.NewOrderedMap[*CategorySummary]()
	for _, r := range records {
		cat := r.Category
		if cat == "" {
			cat = "Uncategorized"
		}
		s, ok := byCat.Get(cat)
		if !ok {
			s = &CategorySummary{Category: cat}
			byCat.Set(cat, s)
		}
		s.TotalAmount = round2(s.TotalAmount + r.Amount)
		s.TransactionCount++
		if len(s.ExampleDescriptions) < maxExamples {
			s.ExampleDescriptions = append(s.ExampleDescriptions, r.Description)
		}
	}

	out := make([]CategorySummary, 0, byCat.Len())
	for _, cat := range byCat.Keys() {
		s, _ := byCat.Get(cat)
		out = append(out, *s)
	}
	return out
}

func analysisPrompt(aggregatedJSON string) string {
	return `Analyze the following aggregated list of personal expenses with amounts in INR.
Based on this data, provide:
1. A consolidated list of spending category totals. You can merge similar categories. The output must match the schema: an array of objects, each with 'category' and 'total'.
2. A brief, insightful, and friendly summary of the spending habits. Mention total spending, percentage of spend, and key areas. All monetary values must be in INR.
3. A list of 2-3 actionable, concise financial tips based on the spending patterns. Always show the total INR value that can be saved by implementing the tips.

Aggregated Expenses Data: ` + aggregatedJSON
}

// chatRecord is the trimmed projection of a record sent with a chat question.
type chatRecord struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Level1      string  `json:"level1"`
	Level2      string  `json:"level2"`
	Level3      string  `json:"level3"`
}

func projectRecords(records []core.ExpenseRecord) []chatRecord {
	if len(records) > chatRecordCap {
		records = records[:chatRecordCap]
	}
	out := make([]chatRecord, len(records))
	for i, r := range records {
		out[i] = chatRecord{
			Date:        r.Date,
			Description: r.Description,
			Amount:      round2(r.Amount),
			Level1:      r.Level1,
			Level2:      r.Level2,
			Level3:      r.Level3,
		}
	}
	return out
}

func chatPrompt(records []chatRecord, question string) string {
	data, _ := json.Marshal(records)
	return fmt.Sprintf(`You are a personal financial analyst chatbot.
Your task is to analyze a user's filtered expense data and answer their question.
The user has already filtered their transactions to a specific view, and you are being provided with ONLY that filtered data.
The user's question is: %q

Based on the following JSON data of their expenses (in INR), provide a crisp response.
Your response MUST be friendly, insightful, provide future actionable points, and be less than 100 words.
Do not repeat the user's question. Focus on the answer and actionable advice.

Expense Data: %s`, question, data)
}

// cleanModelJSON strips Markdown fences and surrounding junk the model may
// emit despite being told not to, keeping the outermost JSON value.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return s
	}
	var end int
	if s[start] == '[' {
		end = strings.LastIndex(s, "]")
	} else {
		end = strings.LastIndex(s, "}")
	}
	if end > start {
		s = s[start : end+1]
	}
	return strings.TrimSpace(s)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
