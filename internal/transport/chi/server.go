package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/seqsearch/internal/domain"
	"github.com/kailas-cloud/seqsearch/internal/domain/algorithm"
	"github.com/kailas-cloud/seqsearch/internal/domain/corpus"
	"github.com/kailas-cloud/seqsearch/internal/domain/search/request"
	"github.com/kailas-cloud/seqsearch/internal/hyperlink"
	"github.com/kailas-cloud/seqsearch/internal/logger"
	entryuc "github.com/kailas-cloud/seqsearch/internal/usecase/entry"
	healthuc "github.com/kailas-cloud/seqsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/seqsearch/internal/usecase/search"
)

// maxBodyBytes leaves room for JSON framing around the largest accepted sequence.
const maxBodyBytes = request.MaxSequenceLength + 64<<10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Searcher runs and renders searches.
type Searcher interface {
	Submit(ctx context.Context, req request.Request) (*searchuc.Result, error)
	Get(ctx context.Context, id string) (*searchuc.Result, error)
	Delete(ctx context.Context, id string) error
	Render(res *searchuc.Result) searchuc.Rendering
}

// EntryRetriever fetches raw corpus entries.
type EntryRetriever interface {
	Retrieve(ctx context.Context, ids string, corpusIDs []string) (entryuc.Retrieval, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the search API on a chi router.
type Server struct {
	search        Searcher
	entries       EntryRetriever
	health        HealthChecker
	algorithms    *algorithm.Registry
	corpora       *corpus.Registry
	searchTimeout time.Duration
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. searchTimeout bounds each search; zero means
// the request context alone decides.
func NewServer(
	search Searcher,
	entries EntryRetriever,
	health HealthChecker,
	algorithms *algorithm.Registry,
	corpora *corpus.Registry,
	searchTimeout time.Duration,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:        search,
		entries:       entries,
		health:        health,
		algorithms:    algorithms,
		corpora:       corpora,
		searchTimeout: searchTimeout,
		logger:        logger,
	}
	s.errorHandlers = []errorHandler{
		searchErrorHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, ErrorCodeSearchTimeout),
		sentinelHandler(domain.ErrSearchFailed, http.StatusInternalServerError, ErrorCodeSearchFailed),
	}
	return s
}

// Register mounts every route on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Get(hyperlink.EntriesPath, s.GetEntries)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/searches", s.CreateSearch)
		r.Get("/searches/{id}", s.GetSearch)
		r.Delete("/searches/{id}", s.DeleteSearch)
		r.Get("/corpora", s.ListCorpora)
		r.Get("/algorithms", s.ListAlgorithms)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})
}

// CreateSearch handles POST /api/v1/searches.
func (s *Server) CreateSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Algorithm) == "" {
		algo, err := s.suggest(req)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		req.Algorithm = string(algo)
	}

	ctx := r.Context()
	if s.searchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.searchTimeout)
		defer cancel()
	}

	res, err := s.search.Submit(ctx, request.New(req.Algorithm, req.Sequence, req.Corpora, req.Options))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if res.Stored {
		w.Header().Set("Location", "/api/v1/searches/"+res.ID)
	}
	writeJSON(w, http.StatusCreated, s.searchToResponse(res))
}

// GetSearch handles GET /api/v1/searches/{id}.
func (s *Server) GetSearch(w http.ResponseWriter, r *http.Request) {
	res, err := s.search.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.searchToResponse(res))
}

// DeleteSearch handles DELETE /api/v1/searches/{id}.
func (s *Server) DeleteSearch(w http.ResponseWriter, r *http.Request) {
	if err := s.search.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetEntries handles GET /entries?id=..&corpus=.. and returns FASTA text.
func (s *Server) GetEntries(w http.ResponseWriter, r *http.Request) {
	var (
		ids, corpora string
		download     *bool
	)
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "id", q, &ids); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "corpus", q, &corpora); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "download", q, &download); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	got, err := s.entries.Retrieve(r.Context(), ids, strings.Fields(corpora))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Entries-Requested", strconv.Itoa(len(got.Requested)))
	w.Header().Set("X-Entries-Found", strconv.Itoa(got.Found))
	if download != nil && *download {
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=\"seqsearch_%d_hits.fa\"", got.Found))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(got.FASTA))
}

// ListCorpora handles GET /api/v1/corpora, optionally filtered to the corpora an
// algorithm can search.
func (s *Server) ListCorpora(w http.ResponseWriter, r *http.Request) {
	var param *string
	if err := runtime.BindQueryParameter("form", true, false, "algorithm", r.URL.Query(), &param); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	entries := s.corpora.Entries()
	if param != nil && *param != "" {
		algo := *param
		if _, ok := s.algorithms.Lookup(algo); !ok {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
				fmt.Sprintf("unknown algorithm %q, valid algorithms: %s", algo, strings.Join(s.algorithms.Names(), ", ")))
			return
		}
		entries = s.corpora.OfKind(algorithm.Algorithm(algo).TargetKind())
	}

	items := make([]CorpusResponse, len(entries))
	for i, e := range entries {
		items[i] = CorpusResponse{ID: e.ID(), Title: e.Title(), Kind: string(e.Kind())}
	}
	writeJSON(w, http.StatusOK, CorpusListResponse{Items: items})
}

// ListAlgorithms handles GET /api/v1/algorithms.
func (s *Server) ListAlgorithms(w http.ResponseWriter, _ *http.Request) {
	names := s.algorithms.Names()
	items := make([]AlgorithmResponse, len(names))
	for i, n := range names {
		a := algorithm.Algorithm(n)
		items[i] = AlgorithmResponse{
			Name:       n,
			QueryKind:  string(a.QueryKind()),
			TargetKind: string(a.TargetKind()),
		}
	}
	writeJSON(w, http.StatusOK, AlgorithmListResponse{Items: items})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) suggest(req SearchRequest) (algorithm.Algorithm, error) {
	selected, err := s.corpora.Select(req.Corpora)
	if err != nil {
		return "", err
	}
	return searchuc.SuggestAlgorithm(req.Sequence, selected)
}

func (s *Server) searchToResponse(res *searchuc.Result) SearchResponse {
	view := s.search.Render(res)
	rep := res.Report

	queries := make([]QueryResponse, len(rep.Queries))
	for i, q := range rep.Queries {
		hits := make([]HitResponse, len(q.Hits))
		for j, h := range q.Hits {
			hits[j] = HitResponse{
				ID:        h.ID,
				SeqID:     h.SeqID,
				Meta:      h.Meta,
				Fragment:  view.Queries[i].Hits[j].Fragment,
				Alignment: h.Alignment,
			}
			if h.Coordinates != nil {
				hits[j].Coordinates = &SpanResponse{Start: h.Coordinates.Start, End: h.Coordinates.End}
			}
		}
		queries[i] = QueryResponse{ID: q.ID, Preamble: q.Preamble, Hits: hits}
	}

	resp := SearchResponse{
		ID:        res.ID,
		Stored:    res.Stored,
		Algorithm: res.Algorithm,
		Corpora:   res.CorpusIDs,
		Options:   res.Options,
		CreatedAt: res.CreatedAt,
		Reference: rep.Reference,
		Queries:   queries,
		Summary:   rep.Summary,
	}
	if view.RetrieveAll != nil {
		resp.RetrieveAll = &LinkResponse{Href: view.RetrieveAll.Href, Text: view.RetrieveAll.Text}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrSearchFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "search timed out"
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// searchErrorHandler surfaces caller-attributable faults with their full message.
// Internal faults fall through to the opaque handlers.
func searchErrorHandler(w http.ResponseWriter, err error, _ string) bool {
	var se *domain.SearchError
	if !errors.As(err, &se) {
		return false
	}
	switch se.Kind {
	case domain.FaultValidation:
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, se.Message)
	case domain.FaultArgument:
		writeError(w, http.StatusBadRequest, ErrorCodeInvalidArgument, se.Message)
	default:
		return false
	}
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
