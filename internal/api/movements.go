package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

// MovementsHandler serves the movement ledger.
type MovementsHandler struct {
	Ledger *store.Ledger
}

// parseDay parses a YYYY-MM-DD date in local time.
func parseDay(v string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, v, time.Local)
}

// movementFilter builds a ledger filter from item_id, kind, from and to
// query parameters. Both dates are inclusive days.
func movementFilter(r *http.Request) (store.MovementFilter, string) {
	q := r.URL.Query()
	f := store.MovementFilter{ItemID: q.Get("item_id")}

	if v := q.Get("kind"); v != "" {
		f.Kind = model.MovementKind(v)
		if !f.Kind.Valid() {
			return f, "kind must be entry or exit"
		}
	}
	if v := q.Get("from"); v != "" {
		from, err := parseDay(v)
		if err != nil {
			return f, "invalid from date"
		}
		f.From = from
	}
	if v := q.Get("to"); v != "" {
		to, err := parseDay(v)
		if err != nil {
			return f, "invalid to date"
		}
		f.To = to.AddDate(0, 0, 1)
	}
	return f, ""
}

// List handles GET /api/movements.
func (h *MovementsHandler) List(w http.ResponseWriter, r *http.Request) {
	f, msg := movementFilter(r)
	if msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	movements, err := h.Ledger.Filter(f)
	if err != nil {
		slog.Error("failed to read movements", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list movements")
		return
	}
	jsonResponse(w, http.StatusOK, movements)
}
