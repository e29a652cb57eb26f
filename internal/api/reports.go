package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/zaloga/internal/report"
	"github.com/erazemk/zaloga/internal/store"
)

// ReportsHandler renders downloadable reports.
type ReportsHandler struct {
	Inventory *store.Inventory
	Ledger    *store.Ledger
	RangeDays int
}

// sendFile writes a rendered report as an attachment.
func sendFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// InventoryPDF handles GET /api/reports/inventory.pdf?end=YYYY-MM-DD.
func (h *ReportsHandler) InventoryPDF(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	end := now
	if v := r.URL.Query().Get("end"); v != "" {
		day, err := parseDay(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid end date")
			return
		}
		end = day
	}

	var buf bytes.Buffer
	period := report.NewPeriod(end, h.RangeDays)
	if err := report.InventoryPDF(&buf, h.Inventory.List(), period, now); err != nil {
		slog.Error("failed to render inventory report", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	slog.Info("inventory report generated", "user", username(r), "period", period.String())
	sendFile(w, "application/pdf", report.InventoryFilename(end), buf.Bytes())
}

// MovementsXLSX handles GET /api/reports/movements.xlsx. It accepts the same
// filters as the movement list.
func (h *ReportsHandler) MovementsXLSX(w http.ResponseWriter, r *http.Request) {
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

	var buf bytes.Buffer
	if err := report.MovementsXLSX(&buf, movements); err != nil {
		slog.Error("failed to render movements export", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to render export")
		return
	}

	sendFile(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		report.MovementsFilename(time.Now()), buf.Bytes())
}
