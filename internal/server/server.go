package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jackzampolin/folio/internal/api"
	"github.com/jackzampolin/folio/internal/books"
	"github.com/jackzampolin/folio/internal/config"
	"github.com/jackzampolin/folio/internal/engine"
	"github.com/jackzampolin/folio/internal/home"
	"github.com/jackzampolin/folio/internal/metrics"
	"github.com/jackzampolin/folio/internal/segmenter"
	"github.com/jackzampolin/folio/internal/server/endpoints"
	"github.com/jackzampolin/folio/internal/store"
	"github.com/jackzampolin/folio/internal/svcctx"
)

// Server is the main Folio HTTP server.
// When ManageEngine is set it also owns the engine container, starting it
// on server start and stopping it on shutdown.
type Server struct {
	httpServer    *http.Server
	engineManager *engine.DockerManager
	configMgr     *config.Manager
	home          *home.Dir
	metrics       *metrics.Recorder
	logger        *slog.Logger

	// store is created in Start unless one was injected.
	store store.Store

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu       sync.RWMutex
	running  bool
	listener net.Listener
}

// Config holds server configuration.
type Config struct {
	// Host overrides server.host from the config file
	Host string
	// Port overrides server.port from the config file
	Port string
	// Home is the folio home directory
	Home *home.Dir
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// ManageEngine starts and stops the engine container with the server
	ManageEngine bool
	// Store overrides the store selected by store.redis_url
	Store store.Store
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.ConfigManager == nil {
		return nil, errors.New("config manager is required")
	}
	if cfg.Home == nil {
		return nil, errors.New("home directory is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	c := cfg.ConfigManager.Get()
	host, port := c.Server.Host, c.Server.Port
	if cfg.Host != "" {
		host = cfg.Host
	}
	if cfg.Port != "" {
		port = cfg.Port
	}

	s := &Server{
		configMgr: cfg.ConfigManager,
		home:      cfg.Home,
		metrics:   metrics.New(),
		logger:    cfg.Logger,
		store:     cfg.Store,
	}

	if cfg.ManageEngine {
		mgr, err := engine.NewDockerManager(engine.DockerConfig{
			ContainerName: c.Engine.Docker.ContainerName,
			Image:         c.Engine.Docker.Image,
			HostPort:      c.Engine.Docker.Port,
			BooksPath:     booksPath(c, cfg.Home),
			DataPath:      cfg.Home.EngineDataPath(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create engine manager: %w", err)
		}
		s.engineManager = mgr
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		if err := s.endpointRegistry.Register(ep); err != nil {
			return nil, err
		}
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(host, port),
		Handler:      s.withServices(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: c.Engine.Timeout()*time.Duration(c.Engine.MaxRetries+1) + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

func booksPath(c *config.Config, h *home.Dir) string {
	if c.Books.Path != "" {
		return c.Books.Path
	}
	return h.BooksPath()
}

func (s *Server) engineClient(c *config.Config) *engine.Client {
	url := c.Engine.URL
	if s.engineManager != nil {
		url = s.engineManager.URL()
	}
	return engine.NewClient(engine.ClientConfig{
		URL:        url,
		Timeout:    c.Engine.Timeout(),
		MaxRetries: c.Engine.MaxRetries,
		Logger:     s.logger,
	})
}

// Start starts the server and, if managed, the engine container.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	c := s.configMgr.Get()

	if s.engineManager != nil {
		s.logger.Info("starting segmentation engine")
		if err := s.engineManager.Start(ctx); err != nil {
			s.setNotRunning()
			return fmt.Errorf("failed to start engine: %w", err)
		}
		s.logger.Info("segmentation engine is ready", "url", s.engineManager.URL())
	}

	if s.store == nil {
		st, err := openStore(ctx, c)
		if err != nil {
			_ = s.shutdown()
			return err
		}
		s.store = st
	}

	defaults, err := c.Segmentation.Defaults()
	if err != nil {
		_ = s.shutdown()
		return fmt.Errorf("invalid segmentation config: %w", err)
	}
	library := books.NewLibrary(books.Config{
		Root:        booksPath(c, s.home),
		ImageFilter: c.Books.ImageFilter,
		PDFDPI:      c.Books.PDFDPI,
		Logger:      s.logger,
	})
	client := s.engineClient(c)

	seg, err := segmenter.New(segmenter.Config{
		Library:      library,
		Engine:       client,
		Store:        s.store,
		Defaults:     defaults,
		Strict:       c.Translation.Strict,
		SettingsPath: s.home.BookSettingsPath,
		Metrics:      s.metrics,
		Logger:       s.logger,
	})
	if err != nil {
		_ = s.shutdown()
		return err
	}

	services := &svcctx.Services{
		Segmenter: seg,
		Library:   library,
		Store:     s.store,
		Engine:    client,
		Docker:    s.engineManager,
		Config:    s.configMgr,
		Metrics:   s.metrics,
		Logger:    s.logger,
		Home:      s.home,
	}
	s.mu.Lock()
	s.services = services
	s.mu.Unlock()

	// Config edits take effect without a restart.
	s.configMgr.OnChange(func(c *config.Config) {
		seg.SetStrict(c.Translation.Strict)
		next := s.engineClient(c)
		seg.SetEngine(next)

		s.mu.Lock()
		updated := *s.services
		updated.Engine = next
		s.services = &updated
		s.mu.Unlock()
		s.logger.Info("configuration reloaded", "engine", next.URL(), "strict", c.Translation.Strict)
	})

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		_ = s.shutdown()
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", ln.Addr().String(), "books", library.Root())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

func openStore(ctx context.Context, c *config.Config) (store.Store, error) {
	if c.Store.RedisURL == "" {
		return store.NewMemoryStore(), nil
	}
	st, err := store.NewRedisStore(ctx, c.Store.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotation store: %w", err)
	}
	return st, nil
}

// shutdown performs graceful shutdown of the HTTP server, the store and
// the engine container.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	// Shutdown HTTP server with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("annotation store close error", "error", err)
		}
	}

	if s.engineManager != nil {
		s.logger.Info("stopping segmentation engine")
		if err := s.engineManager.Stop(shutdownCtx); err != nil {
			s.logger.Error("engine stop error", "error", err)
		}
		if err := s.engineManager.Close(); err != nil {
			s.logger.Error("engine manager close error", "error", err)
		}
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the address the server listens on. Once the server has
// started this is the bound address, so port 0 resolves to the real port.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Endpoints returns the registered endpoints.
func (s *Server) Endpoints() []api.Endpoint {
	return s.endpointRegistry.Endpoints()
}

func (s *Server) currentServices() *svcctx.Services {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.services
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if services := s.currentServices(); services != nil {
			ctx = svcctx.WithServices(ctx, services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable until the segmenter is ready.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if services := s.currentServices(); services == nil || services.Segmenter == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
