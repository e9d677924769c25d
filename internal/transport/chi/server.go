// Package chi exposes the job search engine over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobsearch/internal/domain/search/request"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/result"
	"github.com/kailas-cloud/jobsearch/internal/domain/suggestion"
	"github.com/kailas-cloud/jobsearch/internal/logger"
	healthuc "github.com/kailas-cloud/jobsearch/internal/usecase/health"
	"github.com/kailas-cloud/jobsearch/internal/version"
)

// UserIDHeader carries the optional caller identity used for analytics.
const UserIDHeader = "X-User-ID"

const maxBodyBytes = 64 << 10

type searcher interface {
	Search(ctx context.Context, req *request.Request) (result.Outcome, error)
}

type suggester interface {
	Suggest(ctx context.Context, query string, category suggestion.Category, limit int) (suggestion.Suggestions, error)
}

type clickRecorder interface {
	RecordClick(ctx context.Context, query, jobID, userID string) (bool, error)
}

type healthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the search API. clicks may be nil when analytics is disabled.
type Server struct {
	search        searcher
	suggest       suggester
	clicks        clickRecorder
	health        healthChecker
	validate      *validator.Validate
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search searcher,
	suggest suggester,
	clicks clickRecorder,
	health healthChecker,
	logger *zap.Logger,
) *Server {
	return &Server{
		search:        search,
		suggest:       suggest,
		clicks:        clicks,
		health:        health,
		validate:      newValidator(),
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// SearchJobs handles POST /search/jobs.
func (s *Server) SearchJobs(w http.ResponseWriter, r *http.Request) {
	var body searchRequest
	if !s.decode(w, r, &body, true) {
		return
	}

	req, err := body.toRequest(r.Header.Get(UserIDHeader))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	out, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	logger.FromContext(r.Context()).Info("search",
		zap.String("query", req.Query()),
		zap.String("mode", string(req.Mode())),
		zap.Int("total_candidates", out.TotalCandidates),
		zap.Bool("fallback_used", out.FallbackUsed),
		zap.Int("layers_used", len(out.LayersUsed)),
		zap.String("state", string(out.State)),
	)
	writeJSON(w, http.StatusOK, searchResponseFrom(&out))
}

// Suggestions handles GET /search/suggestions.
func (s *Server) Suggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	category, err := suggestion.ParseCategory(q.Get("type"))
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			writeError(w, http.StatusBadRequest, codeValidation, "limit must be an integer")
			return
		}
	}

	out, err := s.suggest.Suggest(r.Context(), q.Get("query"), category, limit)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestionsResponseFrom(&out))
}

// RecordClick handles POST /search/clicks. Attribution is best-effort, so any
// well-formed click is accepted.
func (s *Server) RecordClick(w http.ResponseWriter, r *http.Request) {
	var body clickRequest
	if !s.decode(w, r, &body, false) {
		return
	}
	if body.UserID == "" {
		body.UserID = r.Header.Get(UserIDHeader)
	}

	if s.clicks != nil {
		attached, err := s.clicks.RecordClick(r.Context(), body.Query, body.JobID, body.UserID)
		logger.FromContext(r.Context()).Debug("click",
			zap.String("job_id", body.JobID), zap.Bool("attached", attached), zap.Error(err))
	}
	w.WriteHeader(http.StatusAccepted)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{
		Status:  string(report.Status),
		Version: version.Version,
		Checks:  checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decode reads and validates a JSON body. An empty body is accepted when allowEmpty is set.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && (!errors.Is(err, io.EOF) || !allowEmpty) {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, validationMessage(err))
		return false
	}
	return true
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logger.FromContext(ctx)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("request failed", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}
