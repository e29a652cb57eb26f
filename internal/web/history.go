package web

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/report"
	"github.com/erazemk/zaloga/internal/store"
)

// historyFilter is the filter form as entered by the user.
type historyFilter struct {
	ItemID string
	Kind   string
	From   string
	To     string
}

// parseHistoryFilter reads the filter query. Invalid values are dropped
// rather than rejected; both dates are inclusive.
func parseHistoryFilter(r *http.Request) (historyFilter, store.MovementFilter) {
	q := r.URL.Query()
	form := historyFilter{ItemID: q.Get("item_id")}
	f := store.MovementFilter{ItemID: form.ItemID}

	if kind := model.MovementKind(q.Get("kind")); kind.Valid() {
		form.Kind = string(kind)
		f.Kind = kind
	}
	if from, err := time.ParseInLocation(time.DateOnly, q.Get("from"), time.Local); err == nil {
		form.From = q.Get("from")
		f.From = from
	}
	if to, err := time.ParseInLocation(time.DateOnly, q.Get("to"), time.Local); err == nil {
		form.To = q.Get("to")
		f.To = to.AddDate(0, 0, 1)
	}
	return form, f
}

// exportURL links to the spreadsheet export of the same filter.
func (h historyFilter) exportURL() template.URL {
	q := url.Values{}
	for key, value := range map[string]string{
		"item_id": h.ItemID,
		"kind":    h.Kind,
		"from":    h.From,
		"to":      h.To,
	} {
		if value != "" {
			q.Set(key, value)
		}
	}
	if len(q) == 0 {
		return "/history/export"
	}
	return template.URL("/history/export?" + q.Encode())
}

// HistoryPage handles GET /history.
func (s *Server) HistoryPage(w http.ResponseWriter, r *http.Request) {
	form, f := parseHistoryFilter(r)

	movements, err := s.Ledger.Filter(f)
	if err != nil {
		slog.Error("failed to read movements", "error", err)
	}

	data := &struct {
		PageData
		Filter    historyFilter
		ExportURL template.URL
		Movements []model.Movement
	}{
		PageData:  page(r, "Zgodovina"),
		Filter:    form,
		ExportURL: form.exportURL(),
		Movements: movements,
	}
	if err != nil {
		data.Error = "Zgodovine ni bilo mogoče prebrati."
	}
	s.Templates.Render(w, "history.html", data)
}

// HistoryExport handles GET /history/export, downloading the filtered
// movements as a spreadsheet.
func (s *Server) HistoryExport(w http.ResponseWriter, r *http.Request) {
	_, f := parseHistoryFilter(r)

	movements, err := s.Ledger.Filter(f)
	if err != nil {
		slog.Error("failed to read movements", "error", err)
		http.Error(w, "failed to read history", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := report.MovementsXLSX(&buf, movements); err != nil {
		slog.Error("failed to render movements export", "error", err)
		http.Error(w, "failed to render export", http.StatusInternalServerError)
		return
	}

	slog.Info("movements exported", "user", username(r), "count", len(movements))
	sendAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		report.MovementsFilename(time.Now()), buf.Bytes())
}

// sendAttachment writes data as a file download.
func sendAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write download", "error", err)
	}
}
