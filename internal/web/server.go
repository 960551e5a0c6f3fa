package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/apartment-accesscode/internal/store"
)

// Config holds the web server settings
type Config struct {
	Host string
	Port int
	// LogRequests enables the per-request logging middleware
	LogRequests bool
}

// Server serves the dashboard API over the results store. The store may
// be nil, in which case only the live classification endpoints work.
type Server struct {
	config     *Config
	store      *store.Store
	httpServer *http.Server
	router     *mux.Router
}

// NewServer creates the server and wires its routes
func NewServer(config *Config, st *store.Store) *Server {
	s := &Server{
		config: config,
		store:  st,
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	api := s.router.PathPrefix("/api").Subrouter()

	// Live classification over the in-process engine
	api.HandleFunc("/classify", s.handleClassify).Methods("GET")

	// Stored results
	api.HandleFunc("/runs", s.handleRuns).Methods("GET")
	api.HandleFunc("/runs/{id}/results", s.handleRunResults).Methods("GET")
	api.HandleFunc("/search", s.handleSearch).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.Use(corsMiddleware())
	if s.config.LogRequests {
		s.router.Use(loggingMiddleware())
	}
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		fmt.Printf("Starting server on http://%s\n", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server error: %v\n", err)
		}
	}()

	<-stop
	fmt.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		fmt.Printf("Server shutdown error: %v\n", err)
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			fmt.Printf("Database close error: %v\n", err)
		}
	}

	fmt.Println("Server stopped")
	return nil
}
