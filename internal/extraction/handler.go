package extraction

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/wardenlabs/warden/internal/documents"
	"github.com/wardenlabs/warden/pkg/handlers"
	"github.com/wardenlabs/warden/pkg/routes"
)

// Handler provides the HTTP endpoint for rule extraction.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// ExtractRequest is the JSON body for the extraction endpoint.
type ExtractRequest struct {
	DocumentID uuid.UUID `json:"document_id"`
	Query      string    `json:"query"`
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "extraction"),
	}
}

// Routes returns the route group for extraction endpoints. Extraction
// lives under the rules prefix since it produces rules.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/rules",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/extract", Handler: h.Extract},
		},
	}
}

// Extract runs rule extraction for a document and returns the stored
// rules plus the dropped-candidate count.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidInput)
		return
	}

	if req.DocumentID == uuid.Nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidInput)
		return
	}

	output, err := h.sys.Extract(r.Context(), req.DocumentID, req.Query)
	if err != nil {
		handlers.RespondError(w, h.logger, mapStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, output)
}

func mapStatus(err error) int {
	if errors.Is(err, documents.ErrNotFound) {
		return http.StatusNotFound
	}
	return MapHTTPStatus(err)
}
