package http

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/m-mizutani/romfetch/pkg/domain/interfaces"
	"github.com/m-mizutani/romfetch/pkg/infra/events"
)

// config holds internal HTTP server configuration
type config struct {
	addr           string
	broker         *events.Broker
	metricsHandler http.Handler
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithBroker enables the event stream endpoint
func WithBroker(broker *events.Broker) Option {
	return func(c *config) {
		c.broker = broker
	}
}

// WithMetricsHandler mounts h on /metrics
func WithMetricsHandler(h http.Handler) Option {
	return func(c *config) {
		c.metricsHandler = h
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	downloadUC interfaces.DownloadUseCase,
	extractUC interfaces.ExtractUseCase,
	opts ...Option,
) (*Server, error) {
	cfg := &config{
		addr: "localhost:8080",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	router.Get("/health", healthHandler(cfg.broker))
	if cfg.metricsHandler != nil {
		router.Method(http.MethodGet, "/metrics", cfg.metricsHandler)
	}

	router.Route("/api", func(r chi.Router) {
		r.Post("/download", NewDownloadHandler(downloadUC).Handle)
		r.Post("/extract", NewExtractHandler(extractUC).Handle)
		if cfg.broker != nil {
			r.Get("/events", NewEventStreamHandler(cfg.broker).Handle)
		}
	})

	// Request contexts are cancelled when shutdown begins so that long-lived
	// event streams return instead of holding Shutdown until its deadline.
	baseCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return baseCtx },
		},
	}
	server.RegisterOnShutdown(cancel)

	return server, nil
}
