package remediation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/wardenlabs/warden/internal/rules"
	"github.com/wardenlabs/warden/internal/validation"
	"github.com/wardenlabs/warden/pkg/handlers"
	"github.com/wardenlabs/warden/pkg/routes"
)

// Handler provides the HTTP endpoint for remediation plans.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// AdviseRequest is the JSON body for the remediation endpoint. An empty
// FlaggedItemIDs list means all open flagged items for the rule.
type AdviseRequest struct {
	RuleID         string      `json:"rule_id"`
	FlaggedItemIDs []uuid.UUID `json:"flagged_item_ids,omitempty"`
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "remediation"),
	}
}

// Routes returns the route group for remediation endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/remediation",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Advise},
		},
	}
}

// Advise composes a remediation plan for a rule's flagged items.
func (h *Handler) Advise(w http.ResponseWriter, r *http.Request) {
	var req AdviseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidInput)
		return
	}

	if req.RuleID == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidInput)
		return
	}

	plan, err := h.sys.Advise(r.Context(), req.RuleID, req.FlaggedItemIDs)
	if err != nil {
		handlers.RespondError(w, h.logger, mapStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, plan)
}

func mapStatus(err error) int {
	if errors.Is(err, rules.ErrNotFound) || errors.Is(err, rules.ErrInvalidID) {
		return rules.MapHTTPStatus(err)
	}
	if errors.Is(err, validation.ErrNotFound) {
		return validation.MapHTTPStatus(err)
	}
	return MapHTTPStatus(err)
}
