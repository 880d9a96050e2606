package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"brandcert/internal/kpi"
	"brandcert/internal/platform/middleware"
	"brandcert/internal/transport/http/shared"
	dErrors "brandcert/pkg/domain-errors"
)

// KPIService recomputes and reads daily snapshots.
type KPIService interface {
	ComputeSnapshot(ctx context.Context, date time.Time) (*kpi.Snapshot, error)
}

type computeSnapshotRequest struct {
	Date string `json:"date"`
}

// handleComputeSnapshot triggers recomputation of one date's snapshot.
// Recomputation is idempotent, so repeating the call is harmless.
func (h *Handler) handleComputeSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req computeSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "date must be YYYY-MM-DD"))
		return
	}

	snapshot, err := h.aggregator.ComputeSnapshot(ctx, date)
	if err != nil {
		h.logger.ErrorContext(ctx, "snapshot computation failed",
			"request_id", middleware.GetRequestID(ctx),
			"date", req.Date,
			"error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, snapshot)
}

// handleListSnapshots serves stored snapshots for an inclusive date range.
func (h *Handler) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	start, err := time.Parse(time.DateOnly, query.Get("start"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "start must be YYYY-MM-DD"))
		return
	}
	end, err := time.Parse(time.DateOnly, query.Get("end"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "end must be YYYY-MM-DD"))
		return
	}

	snapshots, err := h.snapshots.ListRange(r.Context(), start, end)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if snapshots == nil {
		snapshots = []kpi.Snapshot{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"snapshots": snapshots})
}
