package api

import (
	"github.com/wardenlabs/warden/internal/compiler"
	"github.com/wardenlabs/warden/internal/documents"
	"github.com/wardenlabs/warden/internal/extraction"
	"github.com/wardenlabs/warden/internal/remediation"
	"github.com/wardenlabs/warden/internal/rules"
	"github.com/wardenlabs/warden/internal/validation"
)

// Domain holds all domain systems that comprise the API. One shared
// Compiler backs both rule deletion (cache invalidation) and validation
// runs.
type Domain struct {
	Documents   documents.System
	Rules       rules.System
	Extraction  extraction.System
	Validation  validation.System
	Remediation remediation.System
	Compiler    *compiler.Compiler
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	comp := compiler.New(runtime.Logger)

	rulesSystem := rules.New(
		runtime.Database.Connection(),
		comp,
		runtime.Logger,
		runtime.Pagination,
	)

	docsSystem := documents.New(
		runtime.Database.Connection(),
		runtime.Storage,
		rulesSystem,
		runtime.Logger,
		runtime.Pagination,
	)

	extractionSystem := extraction.New(
		runtime.Capability,
		docsSystem,
		rulesSystem,
		runtime.Logger,
		&runtime.Config.Extraction,
	)

	validationSystem := validation.New(
		runtime.Database.Connection(),
		comp,
		rulesSystem,
		runtime.Logger,
		runtime.Pagination,
		&runtime.Config.Validation,
	)

	remediationSystem := remediation.New(
		runtime.Capability,
		rulesSystem,
		validationSystem,
		runtime.Logger,
		&runtime.Config.Capability,
	)

	return &Domain{
		Documents:   docsSystem,
		Rules:       rulesSystem,
		Extraction:  extractionSystem,
		Validation:  validationSystem,
		Remediation: remediationSystem,
		Compiler:    comp,
	}
}
