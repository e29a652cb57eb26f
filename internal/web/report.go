package web

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/zaloga/internal/report"
)

type reportPage struct {
	PageData
	Today     string
	RangeDays int
}

func (s *Server) rangeDays() int {
	if s.ReportDays > 0 {
		return s.ReportDays
	}
	return report.DefaultRangeDays
}

// ReportPage handles GET /report.
func (s *Server) ReportPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "report.html", &reportPage{
		PageData:  page(r, "Poročilo"),
		Today:     time.Now().Format(time.DateOnly),
		RangeDays: s.rangeDays(),
	})
}

// ReportSubmit handles POST /report, downloading the inventory PDF for the
// period ending at the chosen date.
func (s *Server) ReportSubmit(w http.ResponseWriter, r *http.Request) {
	end, err := time.ParseInLocation(time.DateOnly, r.FormValue("end_date"), time.Local)
	if err != nil {
		data := &reportPage{
			PageData:  page(r, "Poročilo"),
			Today:     time.Now().Format(time.DateOnly),
			RangeDays: s.rangeDays(),
		}
		data.Error = "Neveljaven datum."
		s.Templates.RenderStatus(w, http.StatusBadRequest, "report.html", data)
		return
	}

	var buf bytes.Buffer
	period := report.NewPeriod(end, s.rangeDays())
	if err := report.InventoryPDF(&buf, s.Inventory.List(), period, time.Now()); err != nil {
		slog.Error("failed to render inventory report", "error", err)
		http.Error(w, "failed to render report", http.StatusInternalServerError)
		return
	}

	slog.Info("inventory report generated", "user", username(r), "period", period.String())
	sendAttachment(w, "application/pdf", report.InventoryFilename(end), buf.Bytes())
}
