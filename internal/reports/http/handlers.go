package reporthttp

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/amparo-lar/amparo-lar/internal/reports"
	"github.com/amparo-lar/amparo-lar/internal/reports/export"
	"github.com/amparo-lar/amparo-lar/internal/shared"
)

// Handler exposes the reporting endpoints.
type Handler struct {
	logger  *slog.Logger
	service *reports.Service
}

// NewHandler builds a reporting Handler.
func NewHandler(logger *slog.Logger, service *reports.Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	periodStart, err := parsePeriodStart(r)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	dashboard, err := h.service.Dashboard(r.Context(), periodStart)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, dashboard)
}

func (h *Handler) handleTrend(w http.ResponseWriter, r *http.Request) {
	periodStart, err := parsePeriodStart(r)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	points, err := h.service.Trend(r.Context(), periodStart)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, points)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	periodStart, err := parsePeriodStart(r)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	dashboard, err := h.service.Dashboard(r.Context(), periodStart)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="relatorio-financeiro.csv"`)
	if err := export.WriteDashboardCSV(w, dashboard); err != nil {
		h.logger.Error("write dashboard csv", slog.String("error", err.Error()))
	}
}

func (h *Handler) handleTrendCSV(w http.ResponseWriter, r *http.Request) {
	periodStart, err := parsePeriodStart(r)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	points, err := h.service.Trend(r.Context(), periodStart)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tendencia-mensal.csv"`)
	if err := export.WriteTrendCSV(w, points); err != nil {
		h.logger.Error("write trend csv", slog.String("error", err.Error()))
	}
}

func parsePeriodStart(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("period_start")
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, shared.NewValidationError("report", "period_start", "expected YYYY-MM-DD")
	}
	return t, nil
}
