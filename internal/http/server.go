// Package http exposes the dashboard as a JSON API. The chart and table
// renderers are external collaborators; they only ever receive read-only
// snapshots and derived views, never the controller itself.
package http

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"spendview/internal/core"
	"spendview/internal/dashboard"
	"spendview/internal/ingest"
	"spendview/internal/llm"
	applog "spendview/internal/log"
	"spendview/internal/middleware/ratelimit"
	"spendview/internal/middleware/trace"
	"spendview/internal/source"
)

// Analyst is the hosted-LLM collaborator. A nil Analyst disables the two
// analysis endpoints without affecting the data pipeline.
type Analyst interface {
	Analyze(ctx context.Context, records []core.ExpenseRecord) (*llm.Analysis, error)
	Chat(ctx context.Context, records []core.ExpenseRecord, question string) (string, error)
}

type Server struct {
	ctrl        *dashboard.Controller
	src         source.Source
	analyst     Analyst
	logger      *applog.Logger
	loadTimeout time.Duration
	llmTimeout  time.Duration
	loadGen     atomic.Int64 // reload is last-request-wins
	mux         *http.ServeMux
	handler     http.Handler
}

// The analysis endpoints each cost a full model round trip, so they get a
// tighter per-client budget than the rest of the API.
const llmRequestsPerMinute = 10

type Options struct {
	Controller  *dashboard.Controller
	Source      source.Source
	Analyst     Analyst
	Logger      *applog.Logger
	LoadTimeout time.Duration
	LLMTimeout  time.Duration
}

func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = 30 * time.Second
	}
	if opts.LLMTimeout <= 0 {
		opts.LLMTimeout = 60 * time.Second
	}
	s := &Server{
		ctrl:        opts.Controller,
		src:         opts.Source,
		analyst:     opts.Analyst,
		logger:      opts.Logger.WithComponent("http"),
		loadTimeout: opts.LoadTimeout,
		llmTimeout:  opts.LLMTimeout,
		mux:         http.NewServeMux(),
	}
	s.routes()
	s.handler = trace.Middleware(s.logger)(s.mux)
	return s
}

func (s *Server) routes() {
	llmLimit := ratelimit.NewLimiter(llmRequestsPerMinute).Middleware
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/dashboard", s.handleDashboard)
	s.mux.HandleFunc("/api/trend", s.handleTrend)
	s.mux.HandleFunc("/api/trend/detail", s.handleTrendDetail)
	s.mux.HandleFunc("/api/categories", s.handleCategories)
	s.mux.HandleFunc("/api/expenses", s.handleExpenses)
	s.mux.HandleFunc("/api/select/level1", s.handleSelectLevel1)
	s.mux.HandleFunc("/api/select/level2", s.handleSelectLevel2)
	s.mux.HandleFunc("/api/select/level3", s.handleSelectLevel3)
	s.mux.HandleFunc("/api/year", s.handleYear)
	s.mux.HandleFunc("/api/reload", s.handleReload)
	s.mux.Handle("/api/analyze", llmLimit(http.HandlerFunc(s.handleAnalyze)))
	s.mux.Handle("/api/chat", llmLimit(http.HandlerFunc(s.handleChat)))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Load fetches the CSV from the configured source, parses it, and replaces
// the record set wholesale. A fetch superseded by a newer one has its result
// discarded. A fetch failure leaves the current record set untouched.
func (s *Server) Load(ctx context.Context) error {
	gen := s.loadGen.Add(1)

	ctx, cancel := context.WithTimeout(ctx, s.loadTimeout)
	defer cancel()

	text, err := s.src.Fetch(ctx)
	if err != nil {
		return err
	}
	records := ingest.Parse(text)
	if s.loadGen.Load() != gen {
		s.logger.InfoContext(ctx, "Discarding superseded dataset load", "generation", gen)
		return nil
	}
	s.ctrl.ReplaceRecords(records)
	s.logger.InfoContext(ctx, "Dataset loaded", "records", len(records))
	return nil
}
