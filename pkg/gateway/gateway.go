// Package gateway provides a reusable CI portal gateway that can be embedded
// into other Go applications.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/lei/ci-portal/internal/api"
	"github.com/lei/ci-portal/internal/config"
	"github.com/lei/ci-portal/internal/discovery"
	"github.com/lei/ci-portal/internal/provider/jenkins"
	"github.com/lei/ci-portal/internal/service"
	"github.com/lei/ci-portal/pkg/logger"
)

// Gateway represents a CI portal gateway instance that can be embedded in applications
type Gateway struct {
	config  *Config
	service *service.Service
	router  http.Handler
	server  *http.Server
	logger  *logger.Logger
}

// Config holds the configuration for the Gateway
type Config struct {
	// Server configuration
	Server ServerConfig

	// Services maps discovery service names to base URLs. Must name at
	// least the "proxy" service the CI client goes through.
	Services map[string]string

	// Jenkins holds CI connection settings
	Jenkins JenkinsConfig

	// Logging configuration
	Logging LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// JenkinsConfig holds CI connection settings
type JenkinsConfig struct {
	// ProxyPath is appended to the discovered proxy base URL. Empty
	// selects the default /jenkins/api.
	ProxyPath string
	// FanOut caps concurrent per-build detail requests per folder listing.
	FanOut int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or text
}

// New creates a new Gateway instance with the provided configuration
func New(cfg *Config) (*Gateway, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if len(cfg.Services) == 0 {
		return nil, fmt.Errorf("at least the proxy service must be configured")
	}

	// Initialize logger
	appLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	// Initialize discovery and the CI provider
	resolver := discovery.NewStaticResolver(cfg.Services)
	adapter := jenkins.NewAdapter(resolver, &jenkins.Config{
		ProxyPath: cfg.Jenkins.ProxyPath,
		FanOut:    cfg.Jenkins.FanOut,
	}, appLogger)
	appLogger.Info("initialized jenkins provider", "proxy_path", cfg.Jenkins.ProxyPath)

	// Initialize service layer
	svc := service.NewService(adapter, appLogger)

	// Initialize API layer
	handlers := api.NewHandlers(svc)
	loggingMiddleware := api.NewLoggingMiddleware(appLogger)
	router := api.NewRouter(handlers, loggingMiddleware)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Gateway{
		config:  cfg,
		service: svc,
		router:  router,
		server:  srv,
		logger:  appLogger,
	}, nil
}

// Start starts the HTTP server
// This is a blocking call that will run until the context is canceled or an error occurs
func (g *Gateway) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		g.logger.Info("starting http server", "port", g.config.Server.Port)
		serverErrors <- g.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		g.logger.Info("shutdown signal received")

		// Graceful shutdown with 30s timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := g.server.Shutdown(shutdownCtx); err != nil {
			g.server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		g.logger.Info("server stopped gracefully")
		return nil
	}
}

// Handler returns the http.Handler for the gateway
// Use this if you want to integrate the gateway into an existing HTTP server
func (g *Gateway) Handler() http.Handler {
	return g.router
}

// Service returns the underlying service layer
// Use this for direct programmatic access to gateway functionality
func (g *Gateway) Service() *service.Service {
	return g.service
}

// NewFromFile creates a Gateway instance from a YAML configuration file
func NewFromFile(path string) (*Gateway, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return New(&Config{
		Server: ServerConfig{
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		Services: cfg.Discovery.Services,
		Jenkins: JenkinsConfig{
			ProxyPath: cfg.Jenkins.ProxyPath,
			FanOut:    cfg.Jenkins.FanOut,
		},
		Logging: LoggingConfig{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		},
	})
}
