package httptransport

//go:generate mockgen -source=handlers_records.go -destination=mocks/records-mocks.go -package=mocks TransitionService

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"brandcert/internal/audittrail"
	"brandcert/internal/certification"
	"brandcert/internal/platform/middleware"
	"brandcert/internal/transition"
	"brandcert/internal/transport/http/shared"
	id "brandcert/pkg/domain"
	dErrors "brandcert/pkg/domain-errors"
)

// TransitionService is the write path for status changes.
type TransitionService interface {
	Transition(ctx context.Context, recordID id.RecordID, newStatus certification.Status, actor, notes string) (*audittrail.Entry, error)
	TransitionMany(ctx context.Context, recordIDs []id.RecordID, newStatus certification.Status, actor, notes string) (transition.BatchResult, error)
}

type transitionRequest struct {
	NewStatus string `json:"new_status"`
	Actor     string `json:"actor"`
	Notes     string `json:"notes"`
}

type bulkTransitionRequest struct {
	RecordIDs []string `json:"record_ids"`
	NewStatus string   `json:"new_status"`
	Actor     string   `json:"actor"`
	Notes     string   `json:"notes"`
}

type bulkFailureDTO struct {
	RecordID string `json:"record_id"`
	Code     string `json:"code"`
	Reason   string `json:"reason"`
}

type bulkTransitionResponse struct {
	Applied []string         `json:"applied"`
	Failed  []bulkFailureDTO `json:"failed"`
}

// handleGetRecord serves one record by id.
func (h *Handler) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	recordID, err := id.ParseRecordID(chi.URLParam(r, "recordID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	record, err := h.records.Get(r.Context(), recordID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toRecordDTO(record))
}

// handleListRecords serves a filtered, paginated record listing.
func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := filterFromQuery(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	limit, offset := paginationFromQuery(r)

	records, err := h.records.List(ctx, filter, limit, offset)
	if err != nil {
		h.logger.ErrorContext(ctx, "list records failed",
			"request_id", middleware.GetRequestID(ctx), "error", err)
		shared.WriteError(w, err)
		return
	}
	total, err := h.records.Count(ctx, filter)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	dtos := make([]recordDTO, 0, len(records))
	for _, record := range records {
		dtos = append(dtos, toRecordDTO(record))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"records": dtos,
		"total":   total,
	})
}

// handleRecordHistory serves a record's audit trail, newest first.
func (h *Handler) handleRecordHistory(w http.ResponseWriter, r *http.Request) {
	recordID, err := id.ParseRecordID(chi.URLParam(r, "recordID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	// A history request for an unknown record is a 404, not an empty list.
	if _, err := h.records.Get(r.Context(), recordID); err != nil {
		shared.WriteError(w, err)
		return
	}
	entries, err := h.trail.ListForRecord(r.Context(), recordID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"entries": toEntryDTOs(entries)})
}

// handleTransition applies one status change.
func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordID, err := id.ParseRecordID(chi.URLParam(r, "recordID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	newStatus, err := certification.ParseStatus(req.NewStatus)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	entry, err := h.engine.Transition(ctx, recordID, newStatus, req.Actor, req.Notes)
	if err != nil {
		h.logger.WarnContext(ctx, "transition rejected",
			"request_id", middleware.GetRequestID(ctx),
			"record_id", recordID.String(),
			"new_status", req.NewStatus,
			"error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toEntryDTO(*entry))
}

// handleBulkTransition applies one status change to many records with
// partial-failure semantics.
func (h *Handler) handleBulkTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req bulkTransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	if len(req.RecordIDs) == 0 {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "record_ids is required"))
		return
	}
	newStatus, err := certification.ParseStatus(req.NewStatus)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	recordIDs := make([]id.RecordID, 0, len(req.RecordIDs))
	for _, raw := range req.RecordIDs {
		recordID, err := id.ParseRecordID(raw)
		if err != nil {
			shared.WriteError(w, dErrors.WithField(err, "record_id", raw))
			return
		}
		recordIDs = append(recordIDs, recordID)
	}

	result, err := h.engine.TransitionMany(ctx, recordIDs, newStatus, req.Actor, req.Notes)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	response := bulkTransitionResponse{Applied: []string{}, Failed: []bulkFailureDTO{}}
	for _, recordID := range result.Applied {
		response.Applied = append(response.Applied, recordID.String())
	}
	for _, failure := range result.Failed {
		response.Failed = append(response.Failed, bulkFailureDTO{
			RecordID: failure.RecordID.String(),
			Code:     string(failure.Code),
			Reason:   failure.Reason,
		})
	}
	shared.WriteJSON(w, http.StatusOK, response)
}

func filterFromQuery(r *http.Request) (certification.ListFilter, error) {
	var filter certification.ListFilter
	query := r.URL.Query()

	if raw := query.Get("status"); raw != "" {
		status, err := certification.ParseStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}
	if raw := query.Get("department"); raw != "" {
		department, err := certification.ParseDepartment(raw)
		if err != nil {
			return filter, err
		}
		filter.Department = department
	}
	if raw := query.Get("purpose"); raw != "" {
		purpose, err := certification.ParsePurpose(raw)
		if err != nil {
			return filter, err
		}
		filter.Purpose = purpose
	}
	filter.NationalID = query.Get("national_id")

	if raw := query.Get("registered_from"); raw != "" {
		from, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return filter, dErrors.Newf(dErrors.CodeValidation, "invalid registered_from %q", raw)
		}
		filter.RegisteredFrom = from
	}
	if raw := query.Get("registered_to"); raw != "" {
		to, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return filter, dErrors.Newf(dErrors.CodeValidation, "invalid registered_to %q", raw)
		}
		filter.RegisteredTo = to.Add(24 * time.Hour)
	}
	return filter, nil
}

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

func paginationFromQuery(r *http.Request) (limit, offset int) {
	limit = defaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = min(parsed, maxPageSize)
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			offset = parsed
		}
	}
	return limit, offset
}
