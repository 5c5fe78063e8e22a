package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quillstream/internal/config"
	"quillstream/internal/document"
	"quillstream/internal/gateway"
	"quillstream/internal/prompt"
)

const (
	maxBodyBytes        = 1 << 20 // 1 MiB
	shutdownGracePeriod = 10 * time.Second
	readTimeout         = 30 * time.Second
	idleTimeout         = 120 * time.Second
)

// Options carries the collaborators a Server routes to. Documents and Gatherer are optional.
type Options struct {
	Gateway   *gateway.Gateway
	Documents *document.Store
	Gatherer  prometheus.Gatherer
	Logger    *slog.Logger
}

type Server struct {
	cfg       config.Config
	gateway   *gateway.Gateway
	documents *document.Store
	logger    *slog.Logger
	app       *echo.Echo
	address   string
}

// New constructs an HTTP server wired with routing and middleware.
func New(cfg config.Config, opts Options) (*Server, error) {
	if opts.Gateway == nil {
		return nil, errors.New("gateway must not be nil")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = jsonErrorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency:   true,
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogError:     true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				"request_id", v.RequestID,
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"error", v.Error,
			)
			return nil
		},
	}))
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'; form-action 'none'",
	}))
	if len(cfg.Server.AllowOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.Server.AllowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	srv := &Server{
		cfg:       cfg,
		gateway:   opts.Gateway,
		documents: opts.Documents,
		logger:    logger,
		app:       e,
		address:   fmt.Sprintf(":%d", cfg.Server.Port),
	}

	srv.registerRoutes(opts.Gatherer)

	return srv, nil
}

// Handler exposes the routed echo instance.
func (s *Server) Handler() http.Handler {
	return s.app
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	printStartupBanner(s.cfg.Server.Port, s.documents != nil)
	s.logger.Info("starting server", "addr", s.address, "provider", s.cfg.ActiveProvider, "language", s.cfg.Language)

	// No WriteTimeout: completions stream for as long as the provider writes.
	httpServer := &http.Server{
		Addr:        s.address,
		Handler:     s.app,
		ReadTimeout: readTimeout,
		IdleTimeout: idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.app.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := s.app.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server shutdown complete")
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) registerRoutes(gatherer prometheus.Gatherer) {
	s.app.GET("/health", s.handleHealth)
	s.app.GET("/commands", s.handleCommands)
	s.app.POST("/generate", s.handleGenerate)

	if gatherer != nil {
		s.app.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	if s.documents != nil {
		g := s.app.Group("/documents")
		g.GET("", s.handleListDocuments)
		g.POST("", s.handleCreateDocument)
		g.GET("/:id", s.handleGetDocument)
		g.PUT("/:id", s.handleSaveDocument)
		g.DELETE("/:id", s.handleDeleteDocument)
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCommands(c echo.Context) error {
	lang := c.QueryParam("lang")
	if lang == "" {
		lang = s.cfg.Language
	}
	return c.JSON(http.StatusOK, prompt.Catalog(prompt.ParseLanguage(lang)))
}

func decodeRequestBody[T any](c echo.Context, target *T) error {
	req := c.Request()
	defer req.Body.Close()

	req.Body = http.MaxBytesReader(c.Response(), req.Body, maxBodyBytes)

	decoder := json.NewDecoder(req.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is required")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return requestError{Status: http.StatusRequestEntityTooLarge, Message: "request body too large"}
		}
		return badRequest(fmt.Sprintf("invalid JSON payload: %v", err))
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return badRequest("request body must contain a single JSON object")
	}
	return nil
}

func printStartupBanner(port int, documents bool) {
	host := "127.0.0.1"
	fmt.Println()
	fmt.Println("quillstream ready")
	fmt.Printf("Listening on http://%s:%d\n", host, port)
	fmt.Println("Endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /commands")
	fmt.Println("  GET  /metrics")
	fmt.Println("  POST /generate")
	if documents {
		fmt.Println("  GET|POST /documents, GET|PUT|DELETE /documents/:id")
	}
	fmt.Printf("Example:\n  curl -N http://%s:%d/generate -H 'Content-Type: application/json' -d '{\"prompt\":\"The cat sat\",\"option\":\"continue\"}'\n\n", host, port)
}
