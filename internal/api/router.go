// Package api exposes the dashboard reports over HTTP.
package api

import (
	"net/http"

	"soc-dashboard/internal/common/logger"
	"soc-dashboard/internal/common/observability"
	"soc-dashboard/pkg/registry"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options wires the router's collaborators.
type Options struct {
	Reports        Reports
	Datastore      Pinger
	Catalog        *registry.ReportRegistry
	Observability  *observability.Observability
	Logger         logger.Logger
	MetricsEnabled bool
	MetricsPath    string
	CORSOrigins    []string
}

// NewRouter builds the HTTP handler: probes, one GET route per catalog
// report and, when enabled, the Prometheus endpoint.
func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = registry.Default()
	}

	h := NewHandler(opts.Reports, opts.Datastore, opts.Observability, log)

	r := chi.NewRouter()
	r.Use(RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(Recoverer(log))
	if len(opts.CORSOrigins) > 0 {
		r.Use(CORS(opts.CORSOrigins))
	}

	r.Get("/api/health", h.Health)
	r.Get("/api/ready", h.Ready)

	for _, rep := range catalog.Reports {
		if !opts.Reports.Has(rep.ID) {
			log.Warn("catalog report has no implementation", map[string]interface{}{
				"report": rep.ID,
				"path":   rep.Path,
			})
			continue
		}
		r.Get(rep.Path, h.Report(rep.ID))
	}

	if opts.MetricsEnabled {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.Handler())
	}

	return r
}
