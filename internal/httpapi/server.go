// Package httpapi serves /healthz, /readyz, and /metrics for a running
// simulation, the same three endpoints and DBChecker-style small-interface
// testability the teacher's internal/http.Server uses for its ingestion
// service.
package httpapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// DBChecker abstracts the optional snapshot-store health check for testability.
type DBChecker interface {
	Ping(ctx context.Context) error
}

// RunStatus reports whether the controller has finished driving its
// topology's actions to quiescence.
type RunStatus interface {
	Done() bool
}

type Server struct {
	srv       *http.Server
	dbChecker DBChecker
	run       RunStatus
	logger    *zap.Logger
}

func NewServer(addr string, dbChecker DBChecker, run RunStatus, logger *zap.Logger) *Server {
	s := &Server{
		dbChecker: dbChecker,
		run:       run,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/readyz", s.handleReadyz)
	mux.Handle("/metrics", promhttp.Handler())

	s.srv = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	return s
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.logger.Info("HTTP server listening", zap.String("addr", s.srv.Addr))
	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	allOK := true

	if s.dbChecker != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.dbChecker.Ping(ctx); err != nil {
			checks["snapshot_store"] = "error"
			allOK = false
		} else {
			checks["snapshot_store"] = "ok"
		}
	}

	if s.run != nil {
		if s.run.Done() {
			checks["run"] = "done"
		} else {
			checks["run"] = "running"
		}
	} else {
		checks["run"] = "error"
		allOK = false
	}

	w.Header().Set("Content-Type", "application/json")
	status := "ready"
	httpStatus := http.StatusOK
	if !allOK {
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]any{
		"status": status,
		"checks": checks,
	})
}
