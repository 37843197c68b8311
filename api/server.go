package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"weather-widget/datasource"
	"weather-widget/widget"
)

// Server exposes the widget state to a UI over HTTP
type Server struct {
	model  *widget.Model
	server *http.Server

	// fetches outlive the HTTP request that started them
	fetchCtx    context.Context
	cancelFetch context.CancelFunc
}

// NewServer creates a new API server
func NewServer(model *widget.Model, port int) *Server {
	mux := http.NewServeMux()
	fetchCtx, cancelFetch := context.WithCancel(context.Background())

	server := &Server{
		model: model,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		fetchCtx:    fetchCtx,
		cancelFetch: cancelFetch,
	}

	// Display state
	mux.HandleFunc("/api/weather/current", server.handleGetCurrent)
	mux.HandleFunc("/api/forecast", server.handleGetForecast)
	mux.HandleFunc("/api/notification", server.handleGetNotification)
	mux.HandleFunc("/api/snapshot", server.handleGetSnapshot)

	// Fetch triggers
	mux.HandleFunc("/api/weather/fetch", server.handleFetchCurrent)
	mux.HandleFunc("/api/forecast/fetch", server.handleFetchForecast)

	// Health check
	mux.HandleFunc("/api/health", server.handleHealthCheck)

	return server
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins the API server
func (s *Server) Start() error {
	log.Printf("Starting API server on %s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting connections and cancels fetches it started
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancelFetch()
	return s.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func (s *Server) handleGetCurrent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.model.Current().Get())
}

func (s *Server) handleGetForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.model.Forecast().Get())
}

func (s *Server) handleGetNotification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"notification": s.model.Notification().Get(),
	})
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.model.Snapshot())
}

func (s *Server) handleFetchCurrent(w http.ResponseWriter, r *http.Request) {
	s.handleFetch(w, r, s.model.FetchCurrent)
}

func (s *Server) handleFetchForecast(w http.ResponseWriter, r *http.Request) {
	s.handleFetch(w, r, s.model.FetchForecast)
}

// handleFetch starts a download and answers before it completes
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request,
	fetch func(ctx context.Context, city string) (*datasource.Request, error)) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := fetch(s.fetchCtx, r.URL.Query().Get("city"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, datasource.ErrEmptyCity) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, req)
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
