// Package api assembles the API module: domain systems, route
// registration, and the middleware chain.
package api

import (
	"net/http"

	"github.com/wardenlabs/warden/internal/config"
	"github.com/wardenlabs/warden/internal/infrastructure"
	"github.com/wardenlabs/warden/pkg/middleware"
)

// Module is the mounted API surface: a handler plus the base path it
// serves under.
type Module struct {
	BasePath string
	Handler  http.Handler
	Domain   *Domain
}

// NewModule creates the API module with all domain handlers and
// middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime)

	mw := middleware.New()
	mw.Use(middleware.CORS(&cfg.API.CORS))
	mw.Use(middleware.Logger(runtime.Logger))

	return &Module{
		BasePath: cfg.API.BasePath,
		Handler:  mw.Apply(mux),
		Domain:   domain,
	}, nil
}

// Mount attaches the module to a root mux under its base path.
func (m *Module) Mount(root *http.ServeMux) {
	root.Handle(m.BasePath+"/", http.StripPrefix(m.BasePath, m.Handler))
}
