// Package rest is the plain HTTP facade over the tool surface, for callers
// that are not MCP clients. Every route delegates to the same tools.Service
// the MCP transports use.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mattymil/craft-mcp-wrapper/internal/config"
	"github.com/mattymil/craft-mcp-wrapper/internal/domain"
	"github.com/mattymil/craft-mcp-wrapper/internal/metrics"
	"github.com/mattymil/craft-mcp-wrapper/internal/tools"
)

// Error codes returned on the REST surface.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeToolNotFound     = "tool_not_found"
	codeInternalError    = "internal_error"
)

// errorResponse is the REST error envelope. The message rides under "error"
// so failures look the same here as on the soft-error payloads.
type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// Server handles the REST routes.
type Server struct {
	tools     *tools.Service
	documents []config.Document
	pinger    Pinger
	logger    *zap.Logger
}

// Pinger checks reachability of one document endpoint.
type Pinger interface {
	Ping(ctx context.Context, document, endpoint string) error
}

// NewServer creates the REST facade. pinger may be nil; the health endpoint
// then skips upstream checks.
func NewServer(
	toolSvc *tools.Service,
	documents []config.Document,
	pinger Pinger,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{tools: toolSvc, documents: documents, pinger: pinger, logger: logger}
}

// Router builds the chi router with the shared middleware chain.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Get("/tools", s.handleListTools)
	r.Post("/tools/call", s.handleCallTool)

	r.Get("/documents", s.handleListDocuments)
	r.Post("/search", s.handleSearchAll)
	r.Post("/search/{documentName}", s.handleSearchDocument)
	r.Get("/document/{documentName}", s.handleReadDocument)
	r.Get("/document/{documentName}/block/{blockID}", s.handleReadBlock)

	return r
}

// handleHealth reports upstream reachability per configured document. The
// checks are best-effort: an unreachable document degrades the status but
// the endpoint itself always answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(s.documents))
	healthy := true
	for _, d := range s.documents {
		if s.pinger == nil {
			checks[d.Name] = "skipped"
			continue
		}
		if err := s.pinger.Ping(r.Context(), d.Name, d.APIEndpoint); err != nil {
			checks[d.Name] = "unreachable"
			healthy = false
			continue
		}
		checks[d.Name] = "ok"
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}

// handleListTools handles GET /tools.
func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	defs := tools.Definitions()
	writeJSON(w, http.StatusOK, map[string]any{
		"tools": defs,
		"count": len(defs),
	})
}

// callRequest is the POST /tools/call body.
type callRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// handleCallTool handles POST /tools/call.
func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	var req callRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Tool name is required")
		return
	}

	out, err := s.tools.Invoke(r.Context(), req.Name, req.Arguments)
	if err != nil {
		s.handleToolError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"result":  out,
	})
}

// handleListDocuments handles GET /documents.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	out, err := s.tools.ListDocuments(r.Context())
	if err != nil {
		s.handleToolError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// searchRequest is the body of the search routes.
type searchRequest struct {
	Query         string `json:"query"`
	CaseSensitive bool   `json:"caseSensitive"`
}

// handleSearchAll handles POST /search.
func (s *Server) handleSearchAll(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	out, err := s.tools.SearchAllNotes(r.Context(), tools.SearchAllArgs{
		Query:         req.Query,
		CaseSensitive: req.CaseSensitive,
	})
	if err != nil {
		s.handleToolError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSearchDocument handles POST /search/{documentName}.
func (s *Server) handleSearchDocument(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	out, err := s.tools.SearchDocument(r.Context(), tools.SearchDocumentArgs{
		DocumentName:  chi.URLParam(r, "documentName"),
		Query:         req.Query,
		CaseSensitive: req.CaseSensitive,
	})
	if err != nil {
		s.handleToolError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleReadDocument handles GET /document/{documentName}.
func (s *Server) handleReadDocument(w http.ResponseWriter, r *http.Request) {
	maxDepth := 0
	if raw := r.URL.Query().Get("maxDepth"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "maxDepth must be an integer")
			return
		}
		maxDepth = v
	}

	out, err := s.tools.ReadDocument(r.Context(), tools.ReadDocumentArgs{
		DocumentName: chi.URLParam(r, "documentName"),
		MaxDepth:     maxDepth,
	})
	if err != nil {
		s.handleToolError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleReadBlock handles GET /document/{documentName}/block/{blockID}.
func (s *Server) handleReadBlock(w http.ResponseWriter, r *http.Request) {
	out, err := s.tools.ReadBlock(r.Context(), tools.ReadBlockArgs{
		DocumentName: chi.URLParam(r, "documentName"),
		BlockID:      chi.URLParam(r, "blockID"),
	})
	if err != nil {
		s.handleToolError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleToolError maps tool-surface errors onto HTTP statuses. Upstream and
// lookup failures never reach here; those come back as payloads.
func (s *Server) handleToolError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
	case errors.Is(err, domain.ErrToolNotFound):
		writeError(w, http.StatusNotFound, codeToolNotFound, err.Error())
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:  code,
		Error: message,
	})
}
