package report

import (
	"fmt"
	"io"

	"github.com/tealeg/xlsx/v3"

	"github.com/erazemk/zaloga/internal/model"
)

// MovementsSheet is the name of the worksheet holding the movement export.
const MovementsSheet = "Movements"

var movementHeaders = []string{"Date", "Item ID", "Item", "Kind", "Quantity", "Unit", "Reason"}

// MovementsXLSX writes movements to a spreadsheet, one row each in the given order.
func MovementsXLSX(w io.Writer, movements []model.Movement) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(MovementsSheet)
	if err != nil {
		return fmt.Errorf("adding worksheet: %w", err)
	}

	header := sheet.AddRow()
	for _, title := range movementHeaders {
		cell := header.AddCell()
		cell.Value = title
		cell.GetStyle().Font.Bold = true
	}

	for _, m := range movements {
		row := sheet.AddRow()
		row.AddCell().Value = m.Timestamp.Format("2006-01-02 15:04")
		row.AddCell().Value = m.ItemID
		row.AddCell().Value = m.ItemName
		row.AddCell().Value = string(m.Kind)
		row.AddCell().SetInt(m.Quantity)
		row.AddCell().Value = m.Unit
		row.AddCell().Value = m.Reason
	}

	for i := range movementHeaders {
		sheet.SetColWidth(i+1, i+1, 18)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
