package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/wardenlabs/warden/internal/rules"
	"github.com/wardenlabs/warden/pkg/handlers"
	"github.com/wardenlabs/warden/pkg/pagination"
	"github.com/wardenlabs/warden/pkg/routes"
)

// Handler provides HTTP endpoints for validation runs and flagged item
// review.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// GenerateRequest is the JSON body for the source generation endpoint.
type GenerateRequest struct {
	RuleIDs []string `json:"rule_ids"`
}

// RunRequest is the JSON body for a validation run over inline rows.
type RunRequest struct {
	RuleIDs []string          `json:"rule_ids"`
	Dataset []json.RawMessage `json:"dataset"`
}

// NewHandler creates a Handler with the given system, logger, pagination
// config, and CSV upload size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "validation"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group for validation endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/validation",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/generate", Handler: h.Generate},
			{Method: "POST", Pattern: "/run", Handler: h.Run},
		},
	}
}

// FlaggedRoutes returns the route group for flagged item endpoints.
func (h *Handler) FlaggedRoutes() routes.Group {
	return routes.Group{
		Prefix: "/flagged",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.ListFlagged},
			{Method: "POST", Pattern: "/{id}/resolve", Handler: h.Resolve},
		},
	}
}

// Generate returns per-rule rendered validator source for audit.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidInput)
		return
	}

	sources, err := h.sys.Generate(r.Context(), req.RuleIDs)
	if err != nil {
		handlers.RespondError(w, h.logger, mapStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, sources)
}

// Run executes a validation run. The dataset arrives either inline as
// JSON rows or as a multipart CSV upload with rule ids in form values.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	var (
		ruleIDs []string
		ds      *Dataset
		err     error
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		ruleIDs, ds, err = h.parseCSVRun(r)
	} else {
		ruleIDs, ds, err = parseInlineRun(r)
	}
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	output, err := h.sys.Run(r.Context(), ruleIDs, ds)
	if err != nil {
		handlers.RespondError(w, h.logger, mapStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, output)
}

// ListFlagged returns a paginated list of flagged items, open by
// default.
func (h *Handler) ListFlagged(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	if filters.Status == nil {
		open := FlagStatusOpen
		filters.Status = &open
	}

	result, err := h.sys.ListFlagged(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Resolve marks a flagged item resolved.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidInput)
		return
	}

	item, err := h.sys.Resolve(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, item)
}

func parseInlineRun(r *http.Request) ([]string, *Dataset, error) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, nil, fmt.Errorf("%w: decode body: %v", ErrInvalidInput, err)
	}

	rows, order, err := decodeRows(req.Dataset)
	if err != nil {
		return nil, nil, err
	}
	return req.RuleIDs, DatasetFromRows(rows, order), nil
}

func (h *Handler) parseCSVRun(r *http.Request) ([]string, *Dataset, error) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	ruleIDs := r.MultipartForm.Value["rule_ids"]
	if len(ruleIDs) == 1 && strings.Contains(ruleIDs[0], ",") {
		ruleIDs = strings.Split(ruleIDs[0], ",")
		for i := range ruleIDs {
			ruleIDs[i] = strings.TrimSpace(ruleIDs[i])
		}
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: csv file required", ErrInvalidInput)
	}
	defer file.Close()

	ds, err := DatasetFromCSV(file)
	if err != nil {
		return nil, nil, err
	}
	return ruleIDs, ds, nil
}

// decodeRows decodes raw JSON objects into value maps while preserving
// the key order of the wire payload, which fixes the field first-seen
// ordering of outcomes.
func decodeRows(raw []json.RawMessage) ([]map[string]any, []string, error) {
	rows := make([]map[string]any, 0, len(raw))

	var order []string
	seen := make(map[string]bool)

	for i, msg := range raw {
		dec := json.NewDecoder(bytes.NewReader(msg))

		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: row %d: %v", ErrInvalidInput, i, err)
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '{' {
			return nil, nil, fmt.Errorf("%w: row %d is not an object", ErrInvalidInput, i)
		}

		row := make(map[string]any)
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, nil, fmt.Errorf("%w: row %d: %v", ErrInvalidInput, i, err)
			}
			key := keyTok.(string)

			var value any
			if err := dec.Decode(&value); err != nil {
				return nil, nil, fmt.Errorf("%w: row %d field %s: %v", ErrInvalidInput, i, key, err)
			}

			row[key] = value
			if !seen[key] {
				seen[key] = true
				order = append(order, key)
			}
		}
		rows = append(rows, row)
	}
	return rows, order, nil
}

func mapStatus(err error) int {
	if status := MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	// rule lookups surface the rule domain's errors
	return rules.MapHTTPStatus(err)
}
