package api

import (
	"net/http"

	"github.com/wardenlabs/warden/internal/config"
	"github.com/wardenlabs/warden/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	maxUpload := cfg.API.MaxUploadSizeBytes()
	validationHandler := domain.Validation.Handler(maxUpload)

	routes.Register(
		mux,
		domain.Documents.Handler(maxUpload).Routes(),
		domain.Rules.Handler().Routes(),
		domain.Extraction.Handler().Routes(),
		validationHandler.Routes(),
		validationHandler.FlaggedRoutes(),
		domain.Remediation.Handler().Routes(),
	)
}
