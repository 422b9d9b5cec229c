package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/smazurov/portled/internal/api/models"
	"github.com/smazurov/portled/internal/events"
	"github.com/smazurov/portled/internal/led"
	"github.com/smazurov/portled/internal/logging"
	"github.com/smazurov/portled/internal/version"
)

// LEDService is the part of led.Manager the API needs.
type LEDService interface {
	Apply(id int, s led.State) error
	Get(id int) (led.Status, error)
	List() []led.Status
}

// Options configures the API server.
type Options struct {
	AuthUsername      string
	AuthPassword      string
	CORSOrigin        string // empty disables CORS headers
	LEDs              LEDService
	EventBus          *events.Bus
	PrometheusHandler http.Handler // optional, served unauthenticated at /metrics
	HealthChecks      []HealthCheck
}

// HealthCheck reports on one optional subsystem in GET /api/health. A
// failing check marks the service degraded; the endpoint still answers 200.
type HealthCheck struct {
	Name  string
	Check func() (ok bool, detail string)
}

// Server is the huma HTTP API of the LED service.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	leds       LEDService
	eventBus   *events.Bus
	checks     []HealthCheck
	logger     *slog.Logger
}

// NewServer builds the API and registers every route.
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()

	config := huma.DefaultConfig("portled API", version.Version)
	config.Info.Description = "Switch port status LED control"
	config.Servers = []*huma.Server{}
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"basicAuth": {
			Type:   "http",
			Scheme: "basic",
		},
	}

	api := humago.New(mux, config)

	s := &Server{
		api:      api,
		mux:      mux,
		leds:     opts.LEDs,
		eventBus: opts.EventBus,
		checks:   opts.HealthChecks,
		logger:   logging.GetLogger("api"),
	}

	if opts.CORSOrigin != "" {
		api.UseMiddleware(corsMiddleware(opts.CORSOrigin))
		// Preflight requests never reach huma middleware for unregistered methods.
		mux.HandleFunc("OPTIONS /", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", opts.CORSOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.WriteHeader(http.StatusNoContent)
		})
	}
	api.UseMiddleware(HTTPLoggingMiddleware)
	if opts.AuthUsername != "" && opts.AuthPassword != "" {
		api.UseMiddleware(s.basicAuthMiddleware(opts.AuthUsername, opts.AuthPassword))
	}

	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}

	s.registerRoutes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// API returns the huma API instance.
func (s *Server) API() huma.API {
	return s.api
}

// Start listens on addr and blocks until the server is shut down.
// A clean shutdown returns nil.
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting API server", "addr", addr)
	s.logger.Info("OpenAPI documentation available", "url", "http://"+addr+"/docs")

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down, waiting for in-flight requests until ctx ends.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("Stopping API server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		// SSE streams hold connections open; force them closed.
		return s.httpServer.Close()
	}
	return nil
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Check API health status",
		Tags:        []string{"health"},
		Security:    []map[string][]string{},
	}, func(_ context.Context, _ *struct{}) (*models.HealthResponse, error) {
		resp := &models.HealthResponse{
			Body: models.HealthData{
				Status:  "ok",
				Message: "API is healthy",
				LEDs:    len(s.leds.List()),
			},
		}
		for _, hc := range s.checks {
			ok, detail := hc.Check()
			resp.Body.Components = append(resp.Body.Components, models.ComponentHealth{Name: hc.Name, OK: ok, Detail: detail})
			if !ok {
				resp.Body.Status = "degraded"
				resp.Body.Message = hc.Name + " unavailable"
			}
		}
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
		Security:    []map[string][]string{},
	}, func(_ context.Context, _ *struct{}) (*models.VersionResponse, error) {
		info := version.Get()
		return &models.VersionResponse{
			Body: models.VersionData{
				Version:   info.Version,
				GitCommit: info.GitCommit,
				BuildDate: info.BuildDate,
				GoVersion: info.GoVersion,
				Platform:  info.Platform,
			},
		}, nil
	})

	s.registerLEDRoutes()
	s.registerSSERoutes()
}
