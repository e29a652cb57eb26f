// Package report renders inventory and movement exports.
package report

import (
	"fmt"
	"time"
)

// DefaultRangeDays is the default length of a report period.
const DefaultRangeDays = 32

// Period is the date range shown on an inventory report.
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod returns the period of the given number of days ending at end.
func NewPeriod(end time.Time, days int) Period {
	if days <= 0 {
		days = DefaultRangeDays
	}
	return Period{Start: end.AddDate(0, 0, -days), End: end}
}

func (p Period) String() string {
	return fmt.Sprintf("%s to %s", p.Start.Format(time.DateOnly), p.End.Format(time.DateOnly))
}

// InventoryFilename returns the download name of an inventory report for day.
func InventoryFilename(day time.Time) string {
	return "inventory_report_" + day.Format("20060102") + ".pdf"
}

// MovementsFilename returns the download name of a movements export created at t.
func MovementsFilename(t time.Time) string {
	return "movements_" + t.Format("20060102_150405") + ".xlsx"
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
