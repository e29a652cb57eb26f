package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"

	"github.com/erazemk/zaloga/internal/model"
)

func cellValue(t *testing.T, sheet *xlsx.Sheet, row, col int) string {
	t.Helper()
	c, err := sheet.Cell(row, col)
	require.NoError(t, err)
	return c.Value
}

func TestMovementsXLSX(t *testing.T) {
	ts := time.Date(2024, 1, 15, 9, 5, 0, 0, time.UTC)
	movements := []model.Movement{
		{Timestamp: ts, ItemID: "A1", ItemName: "Hammer", Quantity: 5, Kind: model.MovementEntry, Unit: "pieces", Reason: "item added"},
		{Timestamp: ts.Add(time.Hour), ItemID: "A1", ItemName: "Hammer", Quantity: 2, Kind: model.MovementExit, Unit: "pieces", Reason: "quantity adjustment"},
	}

	var buf bytes.Buffer
	require.NoError(t, MovementsXLSX(&buf, movements))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	sheet, ok := file.Sheet[MovementsSheet]
	require.True(t, ok)
	assert.Equal(t, 3, sheet.MaxRow)

	for col, want := range movementHeaders {
		assert.Equal(t, want, cellValue(t, sheet, 0, col))
	}

	assert.Equal(t, "2024-01-15 09:05", cellValue(t, sheet, 1, 0))
	assert.Equal(t, "A1", cellValue(t, sheet, 1, 1))
	assert.Equal(t, "Hammer", cellValue(t, sheet, 1, 2))
	assert.Equal(t, "entry", cellValue(t, sheet, 1, 3))
	assert.Equal(t, "5", cellValue(t, sheet, 1, 4))
	assert.Equal(t, "exit", cellValue(t, sheet, 2, 3))
	assert.Equal(t, "quantity adjustment", cellValue(t, sheet, 2, 6))
}

func TestMovementsXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, MovementsXLSX(&buf, nil))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	sheet, ok := file.Sheet[MovementsSheet]
	require.True(t, ok)
	assert.Equal(t, 1, sheet.MaxRow)
}
