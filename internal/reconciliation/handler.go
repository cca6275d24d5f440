package reconciliation

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

// Handler exposes bank account and reconciliation endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a reconciliation Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers reconciliation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.listAccounts)
		r.Post("/", h.createAccount)
		r.Post("/{id}/deactivate", h.deactivateAccount)
		r.Post("/{id}/reactivate", h.reactivateAccount)
	})
	r.Route("/movements", func(r chi.Router) {
		r.Get("/", h.listMovements)
		r.Post("/", h.importMovement)
		r.Get("/summary", h.summary)
		r.Get("/{id}", h.getMovement)
		r.Delete("/{id}", h.deleteMovement)
		r.Post("/{id}/conciliate", h.conciliate)
		r.Post("/{id}/divergent", h.markDivergent)
	})
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") == ""
	accounts, err := h.service.ListAccounts(r.Context(), activeOnly)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, accounts)
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var input CreateAccountInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		shared.RespondError(w, h.logger, shared.NewValidationError("bank_account", "", "malformed payload"))
		return
	}
	account, err := h.service.CreateAccount(r.Context(), input)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, account)
}

func (h *Handler) deactivateAccount(w http.ResponseWriter, r *http.Request) {
	h.setAccountActive(w, r, false)
}

func (h *Handler) reactivateAccount(w http.ResponseWriter, r *http.Request) {
	h.setAccountActive(w, r, true)
}

func (h *Handler) setAccountActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondError(w, h.logger, shared.NewValidationError("bank_account", "id", "invalid id"))
		return
	}
	if active {
		err = h.service.ReactivateAccount(r.Context(), id)
	} else {
		err = h.service.DeactivateAccount(r.Context(), id)
	}
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	movements, err := h.service.ListMovements(r.Context(), filter)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	pagination := shared.NewPagination(page, perPage, len(movements))
	start := (pagination.Page - 1) * pagination.PerPage
	if start > len(movements) {
		start = len(movements)
	}
	end := start + pagination.PerPage
	if end > len(movements) {
		end = len(movements)
	}

	shared.RespondJSON(w, http.StatusOK, map[string]any{
		"items":      movements[start:end],
		"pagination": pagination,
	})
}

func (h *Handler) importMovement(w http.ResponseWriter, r *http.Request) {
	var input CreateMovementInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		shared.RespondError(w, h.logger, shared.NewValidationError("bank_movement", "", "malformed payload"))
		return
	}
	m, err := h.service.ImportMovement(r.Context(), input)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, m)
}

func (h *Handler) getMovement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondError(w, h.logger, shared.NewValidationError("bank_movement", "id", "invalid id"))
		return
	}
	m, err := h.service.GetMovement(r.Context(), id)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, m)
}

func (h *Handler) deleteMovement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondError(w, h.logger, shared.NewValidationError("bank_movement", "id", "invalid id"))
		return
	}
	if err := h.service.DeleteMovement(r.Context(), id); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) conciliate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondError(w, h.logger, shared.NewValidationError("bank_movement", "id", "invalid id"))
		return
	}
	m, err := h.service.Conciliate(r.Context(), id)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, m)
}

func (h *Handler) markDivergent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondError(w, h.logger, shared.NewValidationError("bank_movement", "id", "invalid id"))
		return
	}
	var body struct {
		Note string `json:"note"`
	}
	if r.Body != nil {
		// An empty body keeps the existing observations.
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	m, err := h.service.MarkDivergent(r.Context(), id, body.Note)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, m)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	sum, err := h.service.Summary(r.Context(), filter)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, sum)
}

func parseFilter(r *http.Request) (Filter, error) {
	var filter Filter
	q := r.URL.Query()
	filter.Search = q.Get("search")
	filter.Status = Status(q.Get("status"))
	filter.Type = MovementType(q.Get("tipo"))
	if raw := q.Get("conta_bancaria_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return Filter{}, shared.NewValidationError("bank_movement", "conta_bancaria_id", "invalid id")
		}
		filter.BankAccountID = &id
	}
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return Filter{}, shared.NewValidationError("bank_movement", "from", "expected YYYY-MM-DD")
		}
		filter.Range.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return Filter{}, shared.NewValidationError("bank_movement", "to", "expected YYYY-MM-DD")
		}
		filter.Range.To = t
	}
	return filter, nil
}
