// Package valuation exposes the DCF engine over HTTP.
package valuation

import (
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	apiconfig "fcf_valuation/pkg/api/config"
	"fcf_valuation/pkg/core/assumption"
	corevaluation "fcf_valuation/pkg/core/valuation"
)

// Config for the HTTP API handler.
type Config struct {
	Service  *corevaluation.Service
	Defaults assumption.Set
	Source   string // market-data source shown by /config
	BasePath string
	Logger   zerolog.Logger
}

// New returns an HTTP handler exposing the valuation API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/api"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	if err := cfg.Defaults.Validate(); err != nil {
		return nil, err
	}

	huma.DefaultArrayNullable = false
	installErrorEnvelope()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(cors)
	router.Use(requestLogger(cfg.Logger))

	hcfg := huma.DefaultConfig("FCF Valuation API", "1.0.0")
	hcfg.OpenAPIPath = basePath + "/openapi"
	hcfg.DocsPath = basePath + "/docs"
	hcfg.SchemasPath = basePath + "/schemas"
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerHealth(group)
	registerValuation(group, cfg.Service, cfg.Defaults)
	registerCache(group, cfg.Service)
	apiconfig.Register(group, cfg.Defaults, cfg.Source)

	return router, nil
}

// cors allows browser clients on other origins, answering preflights directly.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}
