package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	apicontract "github.com/tuanvumaihuynh/quickstore/api-contract"
	"github.com/tuanvumaihuynh/quickstore/internal/collection"
	"github.com/tuanvumaihuynh/quickstore/internal/config"
	"github.com/tuanvumaihuynh/quickstore/internal/http/apierr"
	"github.com/tuanvumaihuynh/quickstore/internal/http/metric"
	"github.com/tuanvumaihuynh/quickstore/internal/http/middleware"
	"github.com/tuanvumaihuynh/quickstore/internal/http/swagger"
	"github.com/tuanvumaihuynh/quickstore/internal/service"
	"github.com/tuanvumaihuynh/quickstore/internal/storage/db"
)

var tracer = otel.Tracer("internal/http")

// Docs wires the documentation viewer into the service.
type Docs struct {
	// Initializer creates the viewer once the listener is bound.
	Initializer *swagger.Initializer
	// Registry is where the viewer is looked up on each request.
	Registry *swagger.Registry
	// Spec is the OpenAPI document served to the viewer.
	Spec []byte
}

// Service represents the HTTP service.
type Service struct {
	cfg             config.HTTP
	logger          *slog.Logger
	metricsRegistry *prometheus.Registry
	metrics         *metric.Metrics

	healthChecker db.HealthChecker
	collections   *collection.Registry
	documentSvc   service.DocumentService
	docs          Docs

	addr net.Addr
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	healthChecker db.HealthChecker,
	collections *collection.Registry,
	documentSvc service.DocumentService,
	docs Docs,
) *Service {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Service{
		cfg:             cfg,
		logger:          log.With(slog.String("service", "http")),
		metricsRegistry: reg,
		metrics:         metric.New(reg),
		healthChecker:   healthChecker,
		collections:     collections,
		documentSvc:     documentSvc,
		docs:            docs,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	return s.RunWithServer(ctx, s.Router())
}

// Router builds the full route tree with middlewares.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r, s.docs.Registry, s.docs.Spec)
	}

	s.RegisterHandlers(r)

	return r
}

// RunWithServer binds the listener, signals readiness to the docs
// initializer, waits for it and then serves handler until the returned
// cleanup is called.
func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}
	s.addr = ln.Addr()

	// the listener is bound: the viewer exists before the first request is served
	ready := make(chan struct{})
	close(ready)
	if s.cfg.Swagger && s.docs.Initializer != nil {
		if _, err := s.docs.Initializer.OnReady(ctx, ready); err != nil {
			ln.Close()
			return nil, fmt.Errorf("initialize docs viewer: %w", err)
		}
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.ErrorContext(ctx, "http server stopped", slog.Any("error", err))
		}
	}()

	s.logger.InfoContext(ctx, "http server listening", slog.String("addr", ln.Addr().String()))

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

// Addr returns the bound listener address once the service runs.
func (s *Service) Addr() net.Addr {
	return s.addr
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer, swagger.Paths...),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(s.cfg.CorsAllowedOrigins),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	h := newDocumentHandler(s.documentSvc)

	r.Route(apicontract.APIPrefix, func(r chi.Router) {
		r.Get("/health", s.handle(s.health))

		r.Group(func(r chi.Router) {
			r.Use(s.collectionCtx)

			r.With(s.authorize(collection.ActionList)).Get("/{collection}", s.handle(h.ListDocuments))
			r.With(s.authorize(collection.ActionCreate)).Post("/{collection}", s.handle(h.CreateDocument))
			r.With(s.authorize(collection.ActionRead)).Get("/{collection}/{id}", s.handle(h.GetDocument))
			r.With(s.authorize(collection.ActionReplace)).Put("/{collection}/{id}", s.handle(h.ReplaceDocument))
			r.With(s.authorize(collection.ActionPatch)).Patch("/{collection}/{id}", s.handle(h.PatchDocument))
			r.With(s.authorize(collection.ActionDelete)).Delete("/{collection}/{id}", s.handle(h.DeleteDocument))
		})
	})

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(s.metricsRegistry, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

// handlerFunc is an http.HandlerFunc that reports failures instead of
// writing them.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Service) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			s.handleResponseError(w, r, err)
		}
	}
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := apierr.Write(w, res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	return nil
}
