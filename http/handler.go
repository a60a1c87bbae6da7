package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sagarc03/stowgate"
)

// Gateway is the part of stowgate.Gateway the HTTP layer depends on.
type Gateway interface {
	Serve(ctx context.Context, w stowgate.Responder, req stowgate.Request) stowgate.Result
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	Locations   []stowgate.Location
	CORS        CORSConfig
	Metrics     *Metrics
	MetricsPath string
}

// Handler routes object requests to the gateway, one mount per location.
type Handler struct {
	config  HandlerConfig
	gateway Gateway
}

// NewHandler creates a new Handler with the given configuration and gateway.
func NewHandler(config *HandlerConfig, gateway Gateway) *Handler {
	return &Handler{
		config:  *config,
		gateway: gateway,
	}
}

// Router returns an http.Handler serving every configured location. Any method
// reaches the gateway; methods other than GET and HEAD are refused there, after
// the object has been looked up.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(middleware.Recoverer)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	if h.config.Metrics != nil && h.config.MetricsPath != "" {
		r.Method(http.MethodGet, h.config.MetricsPath, h.config.Metrics.Handler())
	}

	for _, loc := range h.config.Locations {
		r.Handle(loc.Prefix+"*", h.handleObject(loc))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound)
	})

	return r
}

func (h *Handler) handleObject(loc stowgate.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		if m := h.config.Metrics; m != nil {
			m.InFlight.Inc()
			defer m.InFlight.Dec()
		}

		rw := newResponder(w, r)
		res := h.gateway.Serve(r.Context(), rw, stowgate.Request{
			Method:          r.Method,
			Path:            r.URL.EscapedPath(),
			IfModifiedSince: r.Header.Get("If-Modified-Since"),
			Range:           r.Header.Get("Range"),
			Location:        loc,
		})

		if m := h.config.Metrics; m != nil {
			m.RecordRequest(loc.Prefix, res.Status, res.Delivered, time.Since(start))
		}

		if rw.broken {
			// Headers already promised a body we cannot deliver.
			panic(http.ErrAbortHandler)
		}
	}
}
