package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/phrazzld/finance-api/internal/api/shared"
	"github.com/phrazzld/finance-api/internal/domain"
	"github.com/phrazzld/finance-api/internal/platform/logger"
	"github.com/phrazzld/finance-api/internal/service"
)

// RecordHandler handles the financial record endpoints. Every operation is
// scoped to the authenticated user.
type RecordHandler struct {
	records service.RecordService
	logger  *slog.Logger
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(records service.RecordService, logger *slog.Logger) *RecordHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordHandler{
		records: records,
		logger:  logger.With(slog.String("component", "record_handler")),
	}
}

// Create handles POST /api/financials. The owner is always the caller.
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var req CreateRecordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	value, err := domain.ParseRecordValue(req.Value)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	record, err := h.records.Create(r.Context(), user.ID, service.RecordInput{
		Type:        domain.RecordType(req.Type),
		Value:       value,
		Description: req.Description,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("record created",
		slog.String("record_id", record.ID.String()),
		slog.String("user_id", user.ID.String()))

	shared.RespondWithJSON(w, r, http.StatusCreated, recordToResponse(record))
}

// List handles GET /api/financials.
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	records, err := h.records.ListOwned(r.Context(), user.ID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, recordsToResponse(records))
}

// Update handles PATCH /api/financials/{id}.
func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	recordID, err := getPathUUID(r, RecordIDParam)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var body map[string]json.RawMessage
	if err := shared.DecodeJSON(w, r, &body); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	patch, err := parseRecordPatch(body)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	record, err := h.records.Update(r.Context(), user.ID, recordID, patch)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, recordToResponse(record))
}

// Delete handles DELETE /api/financials/{id} and returns the removed record.
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	recordID, err := getPathUUID(r, RecordIDParam)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	record, err := h.records.Delete(r.Context(), user.ID, recordID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, recordToResponse(record))
}

// parseRecordPatch builds a patch from the raw body fields. The presence of a
// "user" key is recorded whatever its value; other unknown keys are ignored.
// A null type, value or description is rejected, never treated as a clear.
func parseRecordPatch(body map[string]json.RawMessage) (domain.RecordPatch, error) {
	var patch domain.RecordPatch

	if _, ok := body["user"]; ok {
		patch.OwnerSet = true
		return patch, nil
	}

	if raw, ok := body["type"]; ok {
		s, ok := jsonString(raw)
		if !ok {
			return patch, domain.ErrInvalidRecordType
		}
		t := domain.RecordType(s)
		patch.Type = &t
	}

	if raw, ok := body["value"]; ok {
		v, err := domain.ParseRecordValue(raw)
		if err != nil {
			return patch, err
		}
		patch.Value = &v
	}

	if raw, ok := body["description"]; ok {
		s, ok := jsonString(raw)
		if !ok {
			return patch, domain.NewValidationError("description", "must be a string", nil)
		}
		patch.Description = &s
	}

	return patch, nil
}

// jsonString decodes raw as a JSON string. null is not a string.
func jsonString(raw json.RawMessage) (string, bool) {
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil || s == nil {
		return "", false
	}
	return *s, true
}
