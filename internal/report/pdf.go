package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/erazemk/zaloga/internal/model"
)

const (
	maxNameRunes     = 30
	maxCategoryRunes = 18
	rowHeight        = 7.0
)

type column struct {
	title string
	width float64
	align string
}

var inventoryColumns = []column{
	{"ID", 22, "L"},
	{"Name", 58, "L"},
	{"Category", 38, "L"},
	{"Quantity", 22, "R"},
	{"Unit", 20, "L"},
	{"Status", 20, "L"},
}

// InventoryPDF writes an A4 inventory report listing every item. The table
// header is repeated on each page and every page carries a "Page n/N" footer.
func InventoryPDF(w io.Writer, items []model.Item, period Period, generatedAt time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Inventory report", true)
	pdf.SetCreationDate(generatedAt)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() == 1 {
			pdf.SetFont("Helvetica", "B", 16)
			pdf.CellFormat(0, 10, "Inventory report", "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			pdf.CellFormat(0, 6, "Period: "+period.String(), "", 1, "L", false, 0, "")
			pdf.CellFormat(0, 6, "Generated: "+generatedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
			pdf.Ln(4)
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(220, 220, 220)
		for _, c := range inventoryColumns {
			pdf.CellFormat(c.width, rowHeight, c.title, "1", 0, c.align, true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	if len(items) == 0 {
		pdf.CellFormat(0, rowHeight, "No items in stock.", "", 1, "L", false, 0, "")
	}
	for _, item := range items {
		cells := []string{
			item.ID,
			truncate(item.Name, maxNameRunes),
			truncate(item.Category, maxCategoryRunes),
			strconv.Itoa(item.Quantity),
			item.Unit,
			item.Status,
		}
		for i, c := range inventoryColumns {
			pdf.CellFormat(c.width, rowHeight, tr(cells[i]), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("rendering inventory PDF: %w", err)
	}
	return nil
}
