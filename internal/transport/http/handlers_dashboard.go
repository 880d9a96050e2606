package httptransport

import (
	"context"
	"net/http"

	"brandcert/internal/dashboard"
	"brandcert/internal/platform/middleware"
	"brandcert/internal/transport/http/shared"
)

// DashboardService composes the operational dashboard view.
type DashboardService interface {
	Compose(ctx context.Context) (*dashboard.View, error)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.composer.Compose(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "dashboard compose failed",
			"request_id", middleware.GetRequestID(ctx), "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, view)
}
