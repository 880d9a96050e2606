package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"brandcert/internal/audittrail"
	"brandcert/internal/certification"
	"brandcert/internal/kpi"
	"brandcert/internal/platform/metrics"
	"brandcert/internal/platform/middleware"
	"brandcert/internal/transport/http/shared"
)

const requestTimeout = 30 * time.Second

// Handler carries the services behind the HTTP surface.
type Handler struct {
	records    certification.RecordStore
	trail      audittrail.Store
	snapshots  kpi.SnapshotStore
	engine     TransitionService
	composer   DashboardService
	reports    ReportService
	aggregator KPIService
	logger     *slog.Logger
}

// NewHandler wires the HTTP layer. Everything it needs arrives by injection;
// it owns no state.
func NewHandler(
	records certification.RecordStore,
	trail audittrail.Store,
	snapshots kpi.SnapshotStore,
	engine TransitionService,
	composer DashboardService,
	reports ReportService,
	aggregator KPIService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		records:    records,
		trail:      trail,
		snapshots:  snapshots,
		engine:     engine,
		composer:   composer,
		reports:    reports,
		aggregator: aggregator,
		logger:     logger,
	}
}

// NewRouter builds the full route tree with the shared middleware chain.
func NewRouter(h *Handler) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Use(middleware.Logger(h.logger))
	router.Use(metrics.Middleware)
	router.Use(middleware.Timeout(requestTimeout))

	router.Get("/healthz", handleHealth)
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Route("/records", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Get("/", h.handleListRecords)
		r.Post("/transition", h.handleBulkTransition)
		r.Route("/{recordID}", func(r chi.Router) {
			r.Get("/", h.handleGetRecord)
			r.Get("/history", h.handleRecordHistory)
			r.Post("/transition", h.handleTransition)
		})
	})

	router.With(middleware.ContentTypeJSON).Get("/dashboard", h.handleDashboard)
	router.With(middleware.ContentTypeJSON).Get("/reports", h.handleGenerateReport)

	router.Route("/kpi/snapshots", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Get("/", h.handleListSnapshots)
		r.Post("/", h.handleComputeSnapshot)
	})

	return router
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
