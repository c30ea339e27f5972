package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alanmeadows/prharvest/internal/collect"
)

// Collector runs one collection for a repository reference.
type Collector interface {
	Run(ctx context.Context, input, token string) (*collect.Result, error)
}

// Archive persists collection results and lists past runs.
type Archive interface {
	Save(ctx context.Context, res *collect.Result) (string, error)
	ListRuns(ctx context.Context) ([]collect.Run, error)
}

// API serves the HTTP endpoints.
type API struct {
	collector Collector
	archive   Archive
	started   time.Time
	fetches   atomic.Int64
}

// NewAPI creates an API backed by the given collector and archive.
func NewAPI(collector Collector, archive Archive) *API {
	return &API{
		collector: collector,
		archive:   archive,
		started:   time.Now(),
	}
}

// Routes registers the API handlers on mux.
func (a *API) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /fetch-prs", a.handleFetchPRs)
	mux.HandleFunc("GET /status", a.handleStatus)
	mux.HandleFunc("GET /fetches", a.handleListFetches)
}

// FetchRequest is the JSON body for POST /fetch-prs.
type FetchRequest struct {
	RepoURL string `json:"repoUrl"`
	Token   string `json:"token"`
}

// FetchResponse is the JSON response for a successful POST /fetch-prs.
type FetchResponse struct {
	Message  string                `json:"message"`
	FilePath string                `json:"filePath"`
	PRs      []collect.QualifiedPR `json:"prs"`
}

// ErrorResponse carries a failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Status     string `json:"status"`
	Uptime     string `json:"uptime"`
	FetchCount int64  `json:"fetch_count"`
}

func (a *API) handleFetchPRs(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req FetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	repoURL := strings.TrimSpace(req.RepoURL)
	if repoURL == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Repository URL is required"})
		return
	}

	res, err := a.collector.Run(r.Context(), repoURL, req.Token)
	if err != nil {
		slog.Error("fetch failed", "repo", repoURL, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	path, err := a.archive.Save(r.Context(), res)
	if err != nil {
		slog.Error("failed to save fetched PRs", "repo", res.Repo.String(), "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	a.fetches.Add(1)

	writeJSON(w, http.StatusOK, FetchResponse{
		Message:  "PRs fetched successfully",
		FilePath: path,
		PRs:      res.PRs,
	})
}

func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:     "running",
		Uptime:     time.Since(a.started).Round(time.Second).String(),
		FetchCount: a.fetches.Load(),
	})
}

func (a *API) handleListFetches(w http.ResponseWriter, r *http.Request) {
	runs, err := a.archive.ListRuns(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if runs == nil {
		runs = []collect.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}
