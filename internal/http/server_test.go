package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"spendview/internal/core"
	"spendview/internal/dashboard"
	"spendview/internal/llm"
)

const scenarioCSV = `Date,Year,Week,Description,Amount,Level 1,Level 2,Level 3,Transaction Type,Payment Mode
01/01/24,2024,1,Groceries,100,Regular,Food,Groceries,Debit,Card
15/01/24,2024,3,Cashback,-20,Regular,Food,Groceries,Credit,Card
02/02/24,2024,5,Flight,50,One-Time,Travel,Flight,Debit,Card
`

type stubSource struct {
	text string
	err  error
}

func (s *stubSource) Fetch(context.Context) (string, error) {
	return s.text, s.err
}

type stubAnalyst struct {
	analysis *llm.Analysis
	answer   string
	err      error
	lastSeen []core.ExpenseRecord
}

func (a *stubAnalyst) Analyze(_ context.Context, records []core.ExpenseRecord) (*llm.Analysis, error) {
	a.lastSeen = records
	return a.analysis, a.err
}

func (a *stubAnalyst) Chat(_ context.Context, records []core.ExpenseRecord, _ string) (string, error) {
	a.lastSeen = records
	return a.answer, a.err
}

func newTestServer(t *testing.T, src *stubSource, analyst Analyst) *Server {
	t.Helper()
	s := NewServer(Options{
		Controller: dashboard.NewController(),
		Source:     src,
		Analyst:    analyst,
	})
	if src != nil && src.err == nil {
		if err := s.Load(context.Background()); err != nil {
			t.Fatalf("load: %v", err)
		}
	}
	return s
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, w.Body.String())
	}
}

func TestDashboardScenario(t *testing.T) {
	s := newTestServer(t, &stubSource{text: scenarioCSV}, nil)

	w := do(s, http.MethodGet, "/api/dashboard", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var snap dashboard.Snapshot
	decode(t, w, &snap)

	if snap.RecordCount != 3 {
		t.Fatalf("record count: %d", snap.RecordCount)
	}
	// Default display: Level1 categories ranked by absolute net,
	// |80| for Regular vs |50| for One-Time.
	want := []string{"Regular", "One-Time"}
	if len(snap.Display.Categories) != 2 || snap.Display.Categories[0] != want[0] || snap.Display.Categories[1] != want[1] {
		t.Fatalf("default display: %v", snap.Display.Categories)
	}
	// Stat cards: |80| + |50|.
	if snap.Stats.Total != 130 {
		t.Fatalf("stats total: %v", snap.Stats.Total)
	}
}

func TestTrendScenario(t *testing.T) {
	s := newTestServer(t, &stubSource{text: scenarioCSV}, nil)

	var tv dashboard.TrendView
	decode(t, do(s, http.MethodGet, "/api/trend", ""), &tv)

	if len(tv.Matrix) != 2 {
		t.Fatalf("buckets: %d", len(tv.Matrix))
	}
	if tv.Matrix[0]["name"] != "Jan-24" || tv.Matrix[1]["name"] != "Feb-24" {
		t.Fatalf("bucket labels: %v / %v", tv.Matrix[0]["name"], tv.Matrix[1]["name"])
	}
	if tv.Matrix[0]["Food"].(float64) != 80 {
		t.Fatalf("Jan Food net: %v", tv.Matrix[0]["Food"])
	}
	if tv.Matrix[1]["Travel"].(float64) != 50 {
		t.Fatalf("Feb Travel net: %v", tv.Matrix[1]["Travel"])
	}
	if _, ok := tv.Matrix[0]["Food_MA"]; !ok {
		t.Fatal("missing moving-average key")
	}
}

func TestSelectionEndpoints(t *testing.T) {
	s := newTestServer(t, &stubSource{text: scenarioCSV}, nil)

	var snap dashboard.Snapshot
	decode(t, do(s, http.MethodPost, "/api/select/level2", `{"category":"Food"}`), &snap)
	if snap.Display.Level != core.Level2 || snap.Display.Categories[0] != "Food" {
		t.Fatalf("after level2 select: %+v", snap.Display)
	}

	decode(t, do(s, http.MethodPost, "/api/select/level3", `{"category":"Groceries","parent":"Food"}`), &snap)
	if snap.Display.Level != core.Level3 || snap.Display.Parent != "Food" {
		t.Fatalf("after level3 toggle: %+v", snap.Display)
	}

	// Toggling the sole leaf off falls back to the Level2 view.
	decode(t, do(s, http.MethodPost, "/api/select/level3", `{"category":"Groceries","parent":"Food"}`), &snap)
	if snap.Display.Level != core.Level2 || snap.Display.Categories[0] != "Food" {
		t.Fatalf("after fallback: %+v", snap.Display)
	}

	if w := do(s, http.MethodPost, "/api/select/level1", `{"category":""}`); w.Code != http.StatusBadRequest {
		t.Fatalf("blank category: status %d", w.Code)
	}
}

func TestExpensesTableQuery(t *testing.T) {
	s := newTestServer(t, &stubSource{text: scenarioCSV}, nil)

	var resp struct {
		Records []core.ExpenseRecord `json:"records"`
		Count   int                  `json:"count"`
	}
	decode(t, do(s, http.MethodGet, "/api/expenses?filter.level2=food&sort=amount&dir=desc", ""), &resp)

	if resp.Count != 2 {
		t.Fatalf("count: %d", resp.Count)
	}
	if resp.Records[0].Amount != 100 || resp.Records[1].Amount != -20 {
		t.Fatalf("sort order: %v, %v", resp.Records[0].Amount, resp.Records[1].Amount)
	}
}

func TestReloadFailureKeepsRecords(t *testing.T) {
	src := &stubSource{text: scenarioCSV}
	s := newTestServer(t, src, nil)

	src.err = errors.New("network down")
	if w := do(s, http.MethodPost, "/api/reload", ""); w.Code != http.StatusBadGateway {
		t.Fatalf("reload status: %d", w.Code)
	}

	var snap dashboard.Snapshot
	decode(t, do(s, http.MethodGet, "/api/dashboard", ""), &snap)
	if snap.RecordCount != 3 {
		t.Fatalf("record set must survive a failed reload: %d", snap.RecordCount)
	}
}

func TestEmptyDataYieldsValidResponses(t *testing.T) {
	s := newTestServer(t, &stubSource{text: ""}, nil)

	var snap dashboard.Snapshot
	decode(t, do(s, http.MethodGet, "/api/dashboard", ""), &snap)
	if snap.RecordCount != 0 || snap.Stats.Total != 0 {
		t.Fatalf("empty snapshot: %+v", snap)
	}

	var tv dashboard.TrendView
	decode(t, do(s, http.MethodGet, "/api/trend", ""), &tv)
	if len(tv.Matrix) != 0 {
		t.Fatalf("empty trend: %v", tv.Matrix)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	analyst := &stubAnalyst{analysis: &llm.Analysis{
		CategoryTotals: []llm.CategoryTotal{{Category: "Food", Total: 80}},
		Summary:        "mostly food",
		Tips:           []string{"cook at home"},
	}}
	s := newTestServer(t, &stubSource{text: scenarioCSV}, analyst)

	var got llm.Analysis
	decode(t, do(s, http.MethodPost, "/api/analyze", ""), &got)
	if got.Summary != "mostly food" || len(got.Tips) != 1 {
		t.Fatalf("analysis: %+v", got)
	}
	if len(analyst.lastSeen) != 3 {
		t.Fatalf("analyst must see the working records, saw %d", len(analyst.lastSeen))
	}
}

func TestAnalyzeFailureIsDistinctErrorState(t *testing.T) {
	analyst := &stubAnalyst{err: errors.New("model unavailable")}
	s := newTestServer(t, &stubSource{text: scenarioCSV}, analyst)

	if w := do(s, http.MethodPost, "/api/analyze", ""); w.Code != http.StatusBadGateway {
		t.Fatalf("status: %d", w.Code)
	}

	// The loaded record set is untouched by a collaborator failure.
	var snap dashboard.Snapshot
	decode(t, do(s, http.MethodGet, "/api/dashboard", ""), &snap)
	if snap.RecordCount != 3 {
		t.Fatalf("record count after LLM failure: %d", snap.RecordCount)
	}
}

func TestChatEndpoint(t *testing.T) {
	analyst := &stubAnalyst{answer: "you spend a lot on food"}
	s := newTestServer(t, &stubSource{text: scenarioCSV}, analyst)

	var resp map[string]string
	decode(t, do(s, http.MethodPost, "/api/chat", `{"question":"where does my money go?"}`), &resp)
	if resp["answer"] != "you spend a lot on food" {
		t.Fatalf("answer: %q", resp["answer"])
	}

	if w := do(s, http.MethodPost, "/api/chat", `{"question":"  "}`); w.Code != http.StatusBadRequest {
		t.Fatalf("blank question: status %d", w.Code)
	}
}

func TestChatUnconfigured(t *testing.T) {
	s := newTestServer(t, &stubSource{text: scenarioCSV}, nil)
	if w := do(s, http.MethodPost, "/api/chat", `{"question":"hi"}`); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: %d", w.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &stubSource{text: scenarioCSV}, nil)
	if w := do(s, http.MethodPost, "/api/dashboard", ""); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status: %d", w.Code)
	}
	if w := do(s, http.MethodGet, "/api/reload", ""); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status: %d", w.Code)
	}
}
