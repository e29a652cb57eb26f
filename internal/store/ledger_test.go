package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/zaloga/internal/model"
)

func TestLedgerAppendOrder(t *testing.T) {
	ledger, err := OpenLedger(filepath.Join(t.TempDir(), "historial.json"))
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		require.NoError(t, ledger.Append(model.Movement{ItemID: "A", Quantity: i, Kind: model.MovementEntry}))
	}

	movements, err := ledger.List()
	require.NoError(t, err)
	require.Len(t, movements, 5)
	for i, m := range movements {
		assert.Equal(t, i+1, m.Quantity)
	}
}

func TestLedgerEmpty(t *testing.T) {
	ledger, err := OpenLedger(filepath.Join(t.TempDir(), "historial.json"))
	require.NoError(t, err)

	movements, err := ledger.List()
	require.NoError(t, err)
	assert.NotNil(t, movements)
	assert.Empty(t, movements)
}

func TestLedgerTimestampResolution(t *testing.T) {
	now := time.Date(2025, 1, 2, 15, 4, 59, 999, time.UTC)
	ledger, err := OpenLedger(filepath.Join(t.TempDir(), "historial.json"), WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	require.NoError(t, ledger.Append(model.Movement{ItemID: "A", Quantity: 1, Kind: model.MovementEntry}))

	explicit := time.Date(2024, 12, 31, 23, 59, 30, 0, time.UTC)
	require.NoError(t, ledger.Append(model.Movement{ItemID: "A", Quantity: 1, Kind: model.MovementExit, Timestamp: explicit}))

	movements, _ := ledger.List()
	assert.Equal(t, time.Date(2025, 1, 2, 15, 4, 0, 0, time.UTC), movements[0].Timestamp.UTC())
	assert.Equal(t, time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC), movements[1].Timestamp.UTC())
}

func TestLedgerSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "historial.json")
	ledger, err := OpenLedger(path)
	require.NoError(t, err)
	require.NoError(t, ledger.Append(model.Movement{ItemID: "A", ItemName: "Apples", Quantity: 3, Kind: model.MovementEntry, Unit: "kg", Reason: "delivery"}))

	reopened, err := OpenLedger(path)
	require.NoError(t, err)
	movements, err := reopened.List()
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, "Apples", movements[0].ItemName)
	assert.Equal(t, "delivery", movements[0].Reason)
}

func TestLedgerAppendHook(t *testing.T) {
	var seen []model.Movement
	ledger, err := OpenLedger(filepath.Join(t.TempDir(), "historial.json"), WithAppendHook(func(m model.Movement) {
		seen = append(seen, m)
	}))
	require.NoError(t, err)

	require.NoError(t, ledger.Append(model.Movement{ItemID: "A", Quantity: 2, Kind: model.MovementExit}))
	require.Len(t, seen, 1)
	assert.Equal(t, model.MovementExit, seen[0].Kind)
	assert.False(t, seen[0].Timestamp.IsZero())
}

func TestLedgerFilter(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 5, d, 12, 0, 0, 0, time.UTC) }
	ledger, err := OpenLedger(filepath.Join(t.TempDir(), "historial.json"))
	require.NoError(t, err)

	appends := []model.Movement{
		{Timestamp: day(1), ItemID: "A", Quantity: 1, Kind: model.MovementEntry},
		{Timestamp: day(2), ItemID: "B", Quantity: 2, Kind: model.MovementEntry},
		{Timestamp: day(3), ItemID: "A", Quantity: 3, Kind: model.MovementExit},
		{Timestamp: day(4), ItemID: "B", Quantity: 4, Kind: model.MovementExit},
	}
	for _, m := range appends {
		require.NoError(t, ledger.Append(m))
	}

	quantities := func(ms []model.Movement) []int {
		out := []int{}
		for _, m := range ms {
			out = append(out, m.Quantity)
		}
		return out
	}

	tests := []struct {
		name   string
		filter MovementFilter
		want   []int
	}{
		{"all", MovementFilter{}, []int{1, 2, 3, 4}},
		{"item", MovementFilter{ItemID: "A"}, []int{1, 3}},
		{"kind", MovementFilter{Kind: model.MovementExit}, []int{3, 4}},
		{"from inclusive", MovementFilter{From: day(2)}, []int{2, 3, 4}},
		{"to exclusive", MovementFilter{To: day(3)}, []int{1, 2}},
		{"combined", MovementFilter{ItemID: "B", Kind: model.MovementExit, From: day(1), To: day(5)}, []int{4}},
		{"no match", MovementFilter{ItemID: "Z"}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ledger.Filter(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, quantities(got))
		})
	}
}
