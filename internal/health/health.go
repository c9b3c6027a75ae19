package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/market-scanner/pkg/logger"
)

const banner = "Multi-Market Scanner is running 24/7"

// Server exposes the status endpoints. Read-only and independent of the
// scanner loop: it never touches mutable scanner state, so it can never block
// on or be blocked by ingestion.
type Server struct {
	server    *http.Server
	startTime time.Time
}

// HealthStatus represents process health
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"time"`
	Uptime    string `json:"uptime"`
}

// NewServer creates status server on the given port
func NewServer(port string) *Server {
	mux := http.NewServeMux()

	s := &Server{
		server: &http.Server{
			Addr:         ":" + port,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		startTime: time.Now(),
	}

	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/healthz", s.handleHealth) // alias

	return s
}

// Start starts the status server. A bind failure here is the one fatal
// startup error in the system.
func (s *Server) Start() error {
	logger.Info("status server starting",
		zap.String("addr", s.server.Addr),
	)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	logger.Info("stopping status server...")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, banner)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}
