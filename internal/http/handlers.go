package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"spendview/internal/table"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDashboard returns the stat cards, ranked categories, highlights, and
// current drill-down state in one snapshot.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

// handleTrend returns the dense month-bucket matrix for the chart renderer.
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Trend())
}

// handleTrendDetail returns the tooltip payload for one bucket.
func (s *Server) handleTrendDetail(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	bucket := strings.TrimSpace(r.URL.Query().Get("bucket"))
	if bucket == "" {
		writeError(w, http.StatusBadRequest, "missing bucket parameter")
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Detail(bucket))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Options())
}

// handleExpenses serves the tabular view. Filters arrive as filter.<column>
// query parameters; sort and dir pick the single sort key.
func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	q := table.Query{Filters: make(map[string]string), Sort: table.DefaultSort}
	for key, vals := range r.URL.Query() {
		if col, ok := strings.CutPrefix(key, "filter."); ok && len(vals) > 0 {
			q.Filters[col] = vals[0]
		}
	}
	if col := strings.TrimSpace(r.URL.Query().Get("sort")); col != "" {
		q.Sort = table.SortKey{Column: col, Desc: r.URL.Query().Get("dir") == "desc"}
	}

	records := table.Apply(s.ctrl.AllRecords(), q)
	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"count":   len(records),
		"sort":    q.Sort,
	})
}

func (s *Server) handleSelectLevel1(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if !decodeSelection(w, r, &req, &req.Category) {
		return
	}
	s.ctrl.SelectLevel1(req.Category)
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleSelectLevel2(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if !decodeSelection(w, r, &req, &req.Category) {
		return
	}
	s.ctrl.SelectLevel2(req.Category)
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleSelectLevel3(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
		Parent   string `json:"parent"`
	}
	if !decodeSelection(w, r, &req, &req.Category) {
		return
	}
	if strings.TrimSpace(req.Parent) == "" {
		writeError(w, http.StatusBadRequest, "missing parent category")
		return
	}
	s.ctrl.ToggleLevel3(req.Category, req.Parent)
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleYear(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Year string `json:"year"` // a year number or "all"
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	year := 0
	if req.Year != "" && req.Year != "all" {
		y, err := strconv.Atoi(req.Year)
		if err != nil {
			writeError(w, http.StatusBadRequest, "year must be a number or 'all'")
			return
		}
		year = y
	}
	s.ctrl.SetYear(year)
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

// handleReload re-fetches the CSV and swaps the record set. A fetch failure
// is a non-fatal notice: the previous record set stays as it was.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := s.Load(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "Dataset reload failed", "error", err)
		writeError(w, http.StatusBadGateway, "could not load expense data")
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

// handleAnalyze runs the whole-dataset LLM analysis over the current
// year-filtered records. LLM failures surface as an explicit error state and
// never touch the loaded data.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if s.analyst == nil {
		writeError(w, http.StatusServiceUnavailable, "analysis is not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.llmTimeout)
	defer cancel()

	result, err := s.analyst.Analyze(ctx, s.ctrl.YearRecords())
	if err != nil {
		s.logger.ErrorContext(ctx, "Analysis request failed", "error", err)
		writeError(w, http.StatusBadGateway, "could not get analysis from the model")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleChat answers a free-text question against the user's current view.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if s.analyst == nil {
		writeError(w, http.StatusServiceUnavailable, "chat is not configured")
		return
	}
	var req struct {
		Question string `json:"question"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "missing question")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.llmTimeout)
	defer cancel()

	answer, err := s.analyst.Chat(ctx, s.ctrl.ContextRecords(), req.Question)
	if err != nil {
		s.logger.ErrorContext(ctx, "Chat request failed", "error", err)
		writeError(w, http.StatusBadGateway, "could not get an answer from the model")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}
