package httptransport

import (
	"context"
	"net/http"
	"time"

	"brandcert/internal/platform/middleware"
	"brandcert/internal/report"
	"brandcert/internal/transport/http/shared"
	dErrors "brandcert/pkg/domain-errors"
)

// ReportService generates period-scoped reports.
type ReportService interface {
	Generate(ctx context.Context, start, end time.Time, reportType report.Type, opts ...report.Option) (*report.Data, error)
}

func (h *Handler) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
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
	reportType, err := report.ParseType(query.Get("type"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var opts []report.Option
	if producer := query.Get("producer"); producer != "" {
		opts = append(opts, report.WithProducer(producer))
	}

	data, err := h.reports.Generate(ctx, start, end, reportType, opts...)
	if err != nil {
		h.logger.ErrorContext(ctx, "report generation failed",
			"request_id", middleware.GetRequestID(ctx),
			"type", string(reportType),
			"error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, data)
}
