package shared

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// RespondJSON writes v as a JSON response body.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error  string `json:"error"`
	Entity string `json:"entity,omitempty"`
	Field  string `json:"field,omitempty"`
	ID     string `json:"id,omitempty"`
}

// RespondError maps the core error taxonomy onto HTTP statuses, keeping the
// structured detail the UI needs to highlight the offending record.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		RespondJSON(w, http.StatusUnprocessableEntity, errorBody{Error: ve.Message, Entity: ve.Entity, Field: ve.Field})
		return
	}
	var te *InvalidTransitionError
	if errors.As(err, &te) {
		RespondJSON(w, http.StatusConflict, errorBody{Error: te.Error(), Entity: te.Entity, ID: te.ID.String()})
		return
	}
	if errors.Is(err, ErrNotFound) {
		RespondJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
		return
	}
	var se *StoreError
	if errors.As(err, &se) {
		if logger != nil {
			logger.Error("store unavailable", slog.String("op", se.Op), slog.Any("error", se.Err))
		}
		RespondJSON(w, http.StatusServiceUnavailable, errorBody{Error: "record store unavailable"})
		return
	}
	if logger != nil {
		logger.Error("internal error", slog.Any("error", err))
	}
	RespondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
}
