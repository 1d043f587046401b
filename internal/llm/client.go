// Package llm wraps the hosted Gemini API for the two analysis features:
// whole-dataset spending analysis and free-text "ask your data" chat. The
// rest of the system treats its outputs as opaque values to display.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"spendview/internal/core"
)

const DefaultModel = "gemini-2.5-flash"

// chatRecordCap bounds the raw-record projection sent with a chat question.
const chatRecordCap = 100

// Analysis is the structured result of a whole-dataset analysis request.
type Analysis struct {
	CategoryTotals []CategoryTotal `json:"categoryTotals"`
	Summary        string          `json:"summary"`
	Tips           []string        `json:"tips"`
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

type Client struct {
	genai *genai.Client
	model string
}

// NewClient creates a Gemini client. Credentials come from the environment
// (GEMINI_API_KEY / GOOGLE_API_KEY), resolved by the genai library itself.
func NewClient(ctx context.Context, model string) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{genai: cli, model: model}, nil
}

// Analyze sends the aggregated category summary to the model and decodes the
// structured {categoryTotals, summary, tips} result. The summary keeps the
// prompt small regardless of how many raw records are loaded.
func (c *Client) Analyze(ctx context.Context, records []core.ExpenseRecord) (*Analysis, error) {
	summaries := Summarize(records)
	payload, err := json.Marshal(summaries)
	if err != nil {
		return nil, fmt.Errorf("encode category summary: %w", err)
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model,
		genai.Text(analysisPrompt(string(payload))),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   analysisSchema,
			Temperature:      genai.Ptr[float32](0.5),
		})
	if err != nil {
		return nil, fmt.Errorf("analysis request: %w", err)
	}

	raw := resp.Text()
	if raw == "" {
		return nil, errors.New("analysis request: empty model response")
	}

	var result Analysis
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &result); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	// Required fields only; everything else is opaque to us.
	if result.CategoryTotals == nil || result.Summary == "" || result.Tips == nil {
		return nil, errors.New("decode analysis: missing required fields")
	}
	return &result, nil
}

// Chat asks a free-text question against a projection of the first 100
// records of the caller's current view and returns the model's answer.
func (c *Client) Chat(ctx context.Context, records []core.ExpenseRecord, question string) (string, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, c.model,
		genai.Text(chatPrompt(projectRecords(records), question)), nil)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("chat request: empty model response")
	}
	return text, nil
}

var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"categoryTotals": {
			Type:        genai.TypeArray,
			Description: "Spending categories with their total amounts. Categories should be concise.",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"category": {Type: genai.TypeString},
					"total":    {Type: genai.TypeNumber},
				},
				Required: []string{"category", "total"},
			},
		},
		"summary": {
			Type:        genai.TypeString,
			Description: "A brief, insightful, friendly summary of spending habits. All monetary values in INR.",
		},
		"tips": {
			Type:        genai.TypeArray,
			Description: "2-3 actionable financial tips with the INR value each could save.",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"categoryTotals", "summary", "tips"},
}
