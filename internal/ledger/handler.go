package ledger

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/amparo-lar/amparo-lar/internal/shared"
)

// Handler exposes the ledger over HTTP. All I/O happens here and in the
// service; the engine itself stays pure.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a ledger Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/movements", h.currentPeriod)
	r.Post("/movements", h.createMovement)
	r.Put("/movements/{id}", h.updateMovement)
	r.Delete("/movements/{id}", h.deleteMovement)

	r.Get("/history", h.historicalSummaries)
	r.Get("/history/{year}/{month}", h.monthDetail)
	r.Get("/close-period", h.closePeriod)

	r.Get("/categories", h.listCategories)
	r.Post("/categories", h.createCategory)
	r.Post("/categories/{id}/deactivate", h.deactivateCategory)
	r.Post("/categories/{id}/reactivate", h.reactivateCategory)
}

func (h *Handler) currentPeriod(w http.ResponseWriter, r *http.Request) {
	periodStart, err := parsePeriodStart(r)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	view, err := h.service.CurrentPeriod(r.Context(), periodStart)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, view)
}

func (h *Handler) createMovement(w http.ResponseWriter, r *http.Request) {
	var input CreateMovementInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		shared.RespondError(w, h.logger, shared.NewValidationError("cash_movement", "", "malformed payload"))
		return
	}
	movement, err := h.service.CreateMovement(r.Context(), input)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, movement)
}

func (h *Handler) updateMovement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondError(w, h.logger, shared.NewValidationError("cash_movement", "id", "invalid id"))
		return
	}
	var input UpdateMovementInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		shared.RespondError(w, h.logger, shared.NewValidationError("cash_movement", "", "malformed payload"))
		return
	}
	input.ID = id
	movement, err := h.service.UpdateMovement(r.Context(), input)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, movement)
}

func (h *Handler) deleteMovement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondError(w, h.logger, shared.NewValidationError("cash_movement", "id", "invalid id"))
		return
	}
	if err := h.service.DeleteMovement(r.Context(), id); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) historicalSummaries(w http.ResponseWriter, r *http.Request) {
	periodStart, err := parsePeriodStart(r)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	summaries, err := h.service.HistoricalSummaries(r.Context(), periodStart)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, summaries)
}

func (h *Handler) monthDetail(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		shared.RespondError(w, h.logger, shared.NewValidationError("ledger", "year", "invalid year"))
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		shared.RespondError(w, h.logger, shared.NewValidationError("ledger", "month", "invalid month"))
		return
	}
	view, err := h.service.MonthDetail(r.Context(), year, time.Month(month))
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, view)
}

// closePeriod computes the next view boundary. It mutates nothing; the
// caller owns the cursor.
func (h *Handler) closePeriod(w http.ResponseWriter, r *http.Request) {
	periodStart, err := parsePeriodStart(r)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	if periodStart.IsZero() {
		periodStart = h.service.DefaultPeriodStart()
	}
	next := ClosePeriod(periodStart)
	shared.RespondJSON(w, http.StatusOK, map[string]string{
		"period_start":      periodStart.Format("2006-01-02"),
		"next_period_start": next.Format("2006-01-02"),
	})
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	categories, err := h.service.ListCategories(r.Context(), activeOnly)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, categories)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var input CreateCategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		shared.RespondError(w, h.logger, shared.NewValidationError("cash_category", "", "malformed payload"))
		return
	}
	category, err := h.service.CreateCategory(r.Context(), input)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, category)
}

func (h *Handler) deactivateCategory(w http.ResponseWriter, r *http.Request) {
	h.setCategoryActive(w, r, false)
}

func (h *Handler) reactivateCategory(w http.ResponseWriter, r *http.Request) {
	h.setCategoryActive(w, r, true)
}

func (h *Handler) setCategoryActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondError(w, h.logger, shared.NewValidationError("cash_category", "id", "invalid id"))
		return
	}
	var opErr error
	if active {
		opErr = h.service.ReactivateCategory(r.Context(), id)
	} else {
		opErr = h.service.DeactivateCategory(r.Context(), id)
	}
	if opErr != nil {
		shared.RespondError(w, h.logger, opErr)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}

func parsePeriodStart(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("period_start")
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, shared.NewValidationError("ledger", "period_start", "expected YYYY-MM-DD")
	}
	return t, nil
}
