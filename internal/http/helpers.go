package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/K1T3K1/msfin/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps the core error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrDuplicateName):
		status = http.StatusConflict
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrExternalService):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", core.ErrValidation, err)
	}
	return nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", core.ErrValidation, r.PathValue("id"))
	}
	return id, nil
}

// parseTime accepts RFC3339; an empty value yields the zero time.
func parseTime(value, param string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid %s %q, want RFC3339", core.ErrValidation, param, value)
	}
	return ts, nil
}

func parseQuery(r *http.Request) (core.TransactionQuery, error) {
	q := core.TransactionQuery{
		Order:    core.SortDateDesc,
		Sign:     core.SignAll,
		Category: r.URL.Query().Get("category"),
	}

	if order := r.URL.Query().Get("order"); order != "" {
		q.Order = core.SortOrder(order)
		if !q.Order.Valid() {
			return q, fmt.Errorf("%w: unknown order %q", core.ErrValidation, order)
		}
	}
	if sign := r.URL.Query().Get("sign"); sign != "" {
		q.Sign = core.SignFilter(sign)
		if !q.Sign.Valid() {
			return q, fmt.Errorf("%w: unknown sign %q", core.ErrValidation, sign)
		}
	}

	var err error
	if q.From, err = parseTime(r.URL.Query().Get("from"), "from"); err != nil {
		return q, err
	}
	if q.To, err = parseTime(r.URL.Query().Get("to"), "to"); err != nil {
		return q, err
	}
	return q, nil
}
