// Package app wires the marinedesk runtime and HTTP lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harborworks/marinedesk/internal/api/auth"
	"github.com/harborworks/marinedesk/internal/api/httpapi"
	directorysqlite "github.com/harborworks/marinedesk/internal/directory/sqlite"
	"github.com/harborworks/marinedesk/internal/platform/config"
	"github.com/harborworks/marinedesk/internal/workflow"
	"github.com/harborworks/marinedesk/internal/workflow/engine"
	workflowsqlite "github.com/harborworks/marinedesk/internal/workflow/storage/sqlite"
)

const shutdownTimeout = 10 * time.Second

type serverEnv struct {
	Addr            string `env:"MARINEDESK_HTTP_ADDR"`
	DirectoryDBPath string `env:"MARINEDESK_DIRECTORY_DB_PATH"`
	WorkflowDBPath  string `env:"MARINEDESK_WORKFLOW_DB_PATH"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = ":8080"
	}
	if strings.TrimSpace(cfg.DirectoryDBPath) == "" {
		cfg.DirectoryDBPath = filepath.Join("data", "directory.db")
	}
	if strings.TrimSpace(cfg.WorkflowDBPath) == "" {
		cfg.WorkflowDBPath = filepath.Join("data", "workflow.db")
	}
	return cfg
}

// Server hosts the HTTP API and storage lifecycle.
type Server struct {
	listener      net.Listener
	httpServer    *http.Server
	directory     *directorysqlite.Store
	workflowStore *workflowsqlite.Store
}

// New creates a configured server from environment configuration.
func New() (*Server, error) {
	env := loadServerEnv()
	return NewWithAddr(env.Addr)
}

// NewWithAddr creates a configured server for the provided address.
func NewWithAddr(addr string) (*Server, error) {
	env := loadServerEnv()
	authCfg, err := auth.LoadConfigFromEnv(nil)
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	directoryStore, err := openDirectoryStore(env.DirectoryDBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}
	workflowStore, err := openWorkflowStore(env.WorkflowDBPath)
	if err != nil {
		_ = listener.Close()
		_ = directoryStore.Close()
		return nil, err
	}

	engines, err := buildEngines(workflowStore, directoryStore)
	if err != nil {
		_ = listener.Close()
		_ = directoryStore.Close()
		_ = workflowStore.Close()
		return nil, err
	}

	httpServer := &http.Server{
		Handler:           httpapi.NewRouter(authCfg, engines),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		listener:      listener,
		httpServer:    httpServer,
		directory:     directoryStore,
		workflowStore: workflowStore,
	}, nil
}

func buildEngines(store *workflowsqlite.Store, dir *directorysqlite.Store) (httpapi.Engines, error) {
	serviceRequests, err := engine.New(workflow.FamilyServiceRequest, store, dir)
	if err != nil {
		return httpapi.Engines{}, fmt.Errorf("build service request engine: %w", err)
	}
	surveyorBookings, err := engine.New(workflow.FamilySurveyorBooking, store, dir)
	if err != nil {
		return httpapi.Engines{}, fmt.Errorf("build surveyor booking engine: %w", err)
	}
	cargoBookings, err := engine.New(workflow.FamilyCargoBooking, store, dir)
	if err != nil {
		return httpapi.Engines{}, fmt.Errorf("build cargo booking engine: %w", err)
	}
	return httpapi.Engines{
		ServiceRequests:  serviceRequests,
		SurveyorBookings: surveyorBookings,
		CargoBookings:    cargoBookings,
	}, nil
}

func openDirectoryStore(path string) (*directorysqlite.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create directory db dir: %w", err)
	}
	store, err := directorysqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open directory store: %w", err)
	}
	return store, nil
}

func openWorkflowStore(path string) (*workflowsqlite.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create workflow db dir: %w", err)
	}
	store, err := workflowsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workflow store: %w", err)
	}
	return store, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a server until context cancellation.
func Run(ctx context.Context) error {
	server, err := New()
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the HTTP server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("marinedesk server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.workflowStore != nil {
		if err := s.workflowStore.Close(); err != nil {
			log.Printf("close workflow store: %v", err)
		}
	}
	if s.directory != nil {
		if err := s.directory.Close(); err != nil {
			log.Printf("close directory store: %v", err)
		}
	}
}
