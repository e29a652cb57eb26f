package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/zaloga/internal/model"
)

var testTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestInventory(t *testing.T) (*Inventory, *Ledger) {
	t.Helper()
	dir := t.TempDir()

	ledger, err := OpenLedger(filepath.Join(dir, "historial.json"), WithClock(func() time.Time { return testTime }))
	require.NoError(t, err)

	inv, err := OpenInventory(filepath.Join(dir, "inventario.json"), ledger)
	require.NoError(t, err)
	return inv, ledger
}

func rice() model.Item {
	return model.Item{ID: "P1", Name: "Rice", Category: "Grains", Quantity: 10, Unit: "kg", Status: "active"}
}

func TestAddRecordsEntry(t *testing.T) {
	inv, ledger := newTestInventory(t)

	require.NoError(t, inv.Add(rice()))

	got, ok := inv.Get("P1")
	require.True(t, ok)
	assert.Equal(t, 10, got.Quantity)

	movements, err := ledger.List()
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, "P1", movements[0].ItemID)
	assert.Equal(t, "Rice", movements[0].ItemName)
	assert.Equal(t, 10, movements[0].Quantity)
	assert.Equal(t, model.MovementEntry, movements[0].Kind)
	assert.Equal(t, "kg", movements[0].Unit)
	assert.Equal(t, ReasonItemAdded, movements[0].Reason)
	assert.WithinDuration(t, testTime.Truncate(time.Minute), movements[0].Timestamp, 0)
}

func TestAddDuplicateLeavesStoreUnchanged(t *testing.T) {
	inv, ledger := newTestInventory(t)
	require.NoError(t, inv.Add(rice()))

	dup := rice()
	dup.Name = "Other"
	dup.Quantity = 99
	assert.ErrorIs(t, inv.Add(dup), ErrAlreadyExists)

	got, _ := inv.Get("P1")
	assert.Equal(t, rice(), got)
	assert.Equal(t, 1, inv.Len())

	movements, _ := ledger.List()
	assert.Len(t, movements, 1)
}

func TestAddRejectsInvalidInput(t *testing.T) {
	inv, ledger := newTestInventory(t)

	assert.ErrorIs(t, inv.Add(model.Item{Name: "No ID"}), ErrMissingID)

	neg := rice()
	neg.Quantity = -1
	assert.ErrorIs(t, inv.Add(neg), ErrInvalidQuantity)

	for _, id := range []string{"a/b", "a?b", "a#b"} {
		item := rice()
		item.ID = id
		assert.ErrorIs(t, inv.Add(item), ErrInvalidID, id)
	}

	assert.Equal(t, 0, inv.Len())
	movements, _ := ledger.List()
	assert.Empty(t, movements)
}

func TestUpdateDeltaCorrectness(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		records  int
		kind     model.MovementKind
		delta    int
	}{
		{"increase", 15, 1, model.MovementEntry, 5},
		{"decrease", 4, 1, model.MovementExit, 6},
		{"to zero", 0, 1, model.MovementExit, 10},
		{"unchanged", 10, 0, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ledger := newTestInventory(t)
			require.NoError(t, inv.Add(rice()))

			updated, err := inv.Update("P1", ItemUpdate{
				Name: "Brown rice", Category: "Grains", Quantity: tt.quantity, Unit: "kg", Status: "active",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.quantity, updated.Quantity)

			movements, _ := ledger.List()
			require.Len(t, movements, 1+tt.records)
			if tt.records == 0 {
				return
			}
			last := movements[len(movements)-1]
			assert.Equal(t, tt.kind, last.Kind)
			assert.Equal(t, tt.delta, last.Quantity)
			assert.Equal(t, "Brown rice", last.ItemName)
			assert.Equal(t, ReasonQuantityAdjustment, last.Reason)
		})
	}
}

func TestUpdateSameQuantityPersistsOtherFields(t *testing.T) {
	inv, ledger := newTestInventory(t)
	require.NoError(t, inv.Add(rice()))

	_, err := inv.Update("P1", ItemUpdate{Name: "Basmati", Category: "Imports", Quantity: 10, Unit: "kg", Status: "inactive"})
	require.NoError(t, err)

	movements, _ := ledger.List()
	assert.Len(t, movements, 1)

	reopened, err := OpenInventory(inv.path, ledger)
	require.NoError(t, err)
	got, ok := reopened.Get("P1")
	require.True(t, ok)
	assert.Equal(t, "Basmati", got.Name)
	assert.Equal(t, "Imports", got.Category)
	assert.Equal(t, "inactive", got.Status)
}

func TestUpdateKeepsPhotoAndID(t *testing.T) {
	inv, _ := newTestInventory(t)
	item := rice()
	item.Photo = "abc.jpg"
	require.NoError(t, inv.Add(item))

	updated, err := inv.Update("P1", ItemUpdate{Name: "Rice", Quantity: 3, Unit: "kg"})
	require.NoError(t, err)
	assert.Equal(t, "P1", updated.ID)
	assert.Equal(t, "abc.jpg", updated.Photo)
}

func TestUpdateErrors(t *testing.T) {
	inv, ledger := newTestInventory(t)
	require.NoError(t, inv.Add(rice()))

	_, err := inv.Update("missing", ItemUpdate{Quantity: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = inv.Update("P1", ItemUpdate{Name: "Rice", Quantity: -5})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	got, _ := inv.Get("P1")
	assert.Equal(t, 10, got.Quantity)
	movements, _ := ledger.List()
	assert.Len(t, movements, 1)
}

func TestSetQuantity(t *testing.T) {
	inv, ledger := newTestInventory(t)
	require.NoError(t, inv.Add(rice()))

	updated, err := inv.SetQuantity("P1", 25)
	require.NoError(t, err)
	assert.Equal(t, 25, updated.Quantity)
	assert.Equal(t, "Rice", updated.Name)

	_, err = inv.SetQuantity("P1", 25)
	require.NoError(t, err)

	movements, _ := ledger.List()
	require.Len(t, movements, 2)
	assert.Equal(t, model.MovementEntry, movements[1].Kind)
	assert.Equal(t, 15, movements[1].Quantity)
	assert.Equal(t, ReasonStockAdjustment, movements[1].Reason)

	_, err = inv.SetQuantity("nope", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetPhoto(t *testing.T) {
	inv, ledger := newTestInventory(t)
	require.NoError(t, inv.Add(rice()))

	prev, err := inv.SetPhoto("P1", "first.jpg")
	require.NoError(t, err)
	assert.Empty(t, prev)

	prev, err = inv.SetPhoto("P1", "second.jpg")
	require.NoError(t, err)
	assert.Equal(t, "first.jpg", prev)

	got, _ := inv.Get("P1")
	assert.Equal(t, "second.jpg", got.Photo)

	movements, _ := ledger.List()
	assert.Len(t, movements, 1)

	_, err = inv.SetPhoto("nope", "x.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveRecordsExitAndKeepsHistory(t *testing.T) {
	inv, ledger := newTestInventory(t)
	require.NoError(t, inv.Add(rice()))
	_, err := inv.SetQuantity("P1", 4)
	require.NoError(t, err)

	before, _ := ledger.List()

	removed, err := inv.Remove("P1")
	require.NoError(t, err)
	assert.Equal(t, "Rice", removed.Name)

	_, ok := inv.Get("P1")
	assert.False(t, ok)

	after, _ := ledger.List()
	require.Len(t, after, len(before)+1)
	assert.Equal(t, before, after[:len(before)])

	last := after[len(after)-1]
	assert.Equal(t, model.MovementExit, last.Kind)
	assert.Equal(t, 4, last.Quantity)
	assert.Equal(t, ReasonItemRemoved, last.Reason)

	_, err = inv.Remove("P1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEmptyItemRecordsNothing(t *testing.T) {
	inv, ledger := newTestInventory(t)
	item := rice()
	item.Quantity = 0
	require.NoError(t, inv.Add(item))

	got, ok := inv.Get("P1")
	require.True(t, ok)
	assert.Equal(t, 0, got.Quantity)

	movements, _ := ledger.List()
	assert.Empty(t, movements)

	_, err := inv.Remove("P1")
	require.NoError(t, err)

	movements, _ = ledger.List()
	assert.Empty(t, movements)
}

func TestMovementsKeepNameAtTimeOfWriting(t *testing.T) {
	inv, ledger := newTestInventory(t)
	require.NoError(t, inv.Add(rice()))

	_, err := inv.Update("P1", ItemUpdate{Name: "Basmati", Category: "Grains", Quantity: 12, Unit: "kg", Status: "active"})
	require.NoError(t, err)

	movements, err := ledger.List()
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, "Rice", movements[0].ItemName)
	assert.Equal(t, "Basmati", movements[1].ItemName)
	assert.Equal(t, 2, movements[1].Quantity)

	// A rename without a quantity change leaves earlier records alone.
	_, err = inv.Update("P1", ItemUpdate{Name: "Jasmine", Category: "Grains", Quantity: 12, Unit: "kg", Status: "active"})
	require.NoError(t, err)

	movements, err = ledger.List()
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, "Rice", movements[0].ItemName)
	assert.Equal(t, "Basmati", movements[1].ItemName)
}

func TestScenario(t *testing.T) {
	inv, ledger := newTestInventory(t)

	require.NoError(t, inv.Add(model.Item{ID: "P1", Name: "Rice", Category: "Grains", Quantity: 10, Unit: "kg", Status: "active"}))
	assert.Equal(t, 1, inv.Len())

	movements, _ := ledger.List()
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementEntry, movements[0].Kind)
	assert.Equal(t, 10, movements[0].Quantity)

	updated, err := inv.Update("P1", ItemUpdate{Name: "Rice", Category: "Grains", Quantity: 4, Unit: "kg", Status: "active"})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	movements, _ = ledger.List()
	require.Len(t, movements, 2)
	assert.Equal(t, model.MovementExit, movements[1].Kind)
	assert.Equal(t, 6, movements[1].Quantity)

	_, err = inv.Remove("P1")
	require.NoError(t, err)
	_, ok := inv.Get("P1")
	assert.False(t, ok)

	all, _ := ledger.List()
	require.Len(t, all, 3)
	assert.Equal(t, movements, all[:2])
}

func TestRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 100} {
		t.Run(fmt.Sprintf("%d items", n), func(t *testing.T) {
			inv, ledger := newTestInventory(t)
			for i := 0; i < n; i++ {
				require.NoError(t, inv.Add(model.Item{
					ID:       fmt.Sprintf("P%03d", i),
					Name:     fmt.Sprintf("Item %d", i),
					Category: "Misc",
					Quantity: i,
					Unit:     "pieces",
					Status:   "active",
					Photo:    fmt.Sprintf("%d.jpg", i%3),
				}))
			}

			reopened, err := OpenInventory(inv.path, ledger)
			require.NoError(t, err)
			assert.Equal(t, inv.List(), reopened.List())
			assert.Equal(t, n, reopened.Len())
		})
	}
}

func TestOpenInventoryCreatesFile(t *testing.T) {
	inv, _ := newTestInventory(t)

	data, err := os.ReadFile(inv.path)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestPersistFailureRollsBack(t *testing.T) {
	ledger, err := OpenLedger(filepath.Join(t.TempDir(), "historial.json"))
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "inv")
	require.NoError(t, os.Mkdir(dir, 0o755))
	inv, err := OpenInventory(filepath.Join(dir, "inventario.json"), ledger)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(dir))

	err = inv.Add(rice())
	require.Error(t, err)
	_, ok := inv.Get("P1")
	assert.False(t, ok, "failed add must not stay in memory")
}

func TestConcurrentUpdatesDoNotLoseChanges(t *testing.T) {
	inv, ledger := newTestInventory(t)
	for i := 0; i < 8; i++ {
		require.NoError(t, inv.Add(model.Item{ID: fmt.Sprintf("C%d", i), Name: "c", Unit: "pieces"}))
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := inv.SetQuantity(fmt.Sprintf("C%d", i), i+1)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	reopened, err := OpenInventory(inv.path, ledger)
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		got, ok := reopened.Get(fmt.Sprintf("C%d", i))
		require.True(t, ok)
		assert.Equal(t, i+1, got.Quantity)
	}

	movements, _ := ledger.List()
	assert.Len(t, movements, 16)
}
