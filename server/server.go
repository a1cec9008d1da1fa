// Package server exposes the pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/w-h-a/rag"
	"github.com/w-h-a/rag/ingest"
)

type queryRequest struct {
	Query string `json:"query"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type HttpServer struct {
	pipeline  *rag.Pipeline
	processor *ingest.Processor
	options   Options
	srv       *http.Server
}

func NewServer(pipeline *rag.Pipeline, processor *ingest.Processor, opts ...Option) *HttpServer {
	if pipeline == nil {
		panic("pipeline is required")
	}

	if processor == nil {
		panic("processor is required")
	}

	s := &HttpServer{
		pipeline:  pipeline,
		processor: processor,
		options:   NewOptions(opts...),
	}

	router := mux.NewRouter()
	router.HandleFunc("/v1/query", s.handleQuery).Methods(http.MethodPost)
	router.HandleFunc("/v1/stats", s.handleStats).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	var handler http.Handler = router
	if ms, ok := MiddlewareFrom(s.options.Context); ok {
		for i := len(ms) - 1; i >= 0; i-- {
			handler = ms[i](handler)
		}
	}

	s.srv = &http.Server{
		Addr:    s.options.Address,
		Handler: otelhttp.NewHandler(handler, "rag"),
	}

	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HttpServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		slog.InfoContext(ctx, "http server listening", "address", s.options.Address)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.srv.Shutdown(shutdownCtx)
}

func (s *HttpServer) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJson(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return
	}

	if len(strings.TrimSpace(req.Query)) == 0 {
		writeJson(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
		return
	}

	answer, err := s.pipeline.Ask(r.Context(), req.Query)
	if err != nil {
		slog.ErrorContext(r.Context(), "query failed", "error", err)
		writeJson(w, http.StatusInternalServerError, errorResponse{Error: "query failed"})
		return
	}

	writeJson(w, http.StatusOK, answer)
}

func (s *HttpServer) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.processor.Stats(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "stats failed", "error", err)
		writeJson(w, http.StatusInternalServerError, errorResponse{Error: "stats failed"})
		return
	}

	writeJson(w, http.StatusOK, stats)
}

func (s *HttpServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJson(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
