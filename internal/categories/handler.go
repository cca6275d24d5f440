package categories

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/amparo-lar/amparo-lar/internal/shared"
)

// Handler exposes financial category management.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a category Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers category routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/{id}/deactivate", h.deactivate)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	typ := CategoryType(r.URL.Query().Get("type"))
	if typ != "" && !typ.Valid() {
		shared.RespondError(w, h.logger, shared.NewValidationError("financial_category", "type", "expected receita or despesa"))
		return
	}
	activeOnly := r.URL.Query().Get("active") == "true"
	out, err := h.service.List(r.Context(), typ, activeOnly)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, out)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input CreateCategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		shared.RespondError(w, h.logger, shared.NewValidationError("financial_category", "", "malformed payload"))
		return
	}
	category, err := h.service.Create(r.Context(), input)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, category)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondError(w, h.logger, shared.NewValidationError("financial_category", "id", "invalid id"))
		return
	}
	if err := h.service.Deactivate(r.Context(), id); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}
