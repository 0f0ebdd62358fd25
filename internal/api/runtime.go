package api

import (
	"github.com/wardenlabs/warden/internal/config"
	"github.com/wardenlabs/warden/internal/infrastructure"
	"github.com/wardenlabs/warden/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Config     *config.Config
	Pagination pagination.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle:  infra.Lifecycle,
			Logger:     infra.Logger.With("module", "api"),
			Database:   infra.Database,
			Storage:    infra.Storage,
			Capability: infra.Capability,
		},
		Config:     cfg,
		Pagination: cfg.API.Pagination,
	}
}
