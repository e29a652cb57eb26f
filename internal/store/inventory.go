package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/erazemk/zaloga/internal/model"
)

// Inventory errors.
var (
	ErrNotFound        = errors.New("item not found")
	ErrAlreadyExists   = errors.New("item already exists")
	ErrInvalidQuantity = errors.New("quantity must not be negative")
	ErrMissingID       = errors.New("item id required")
	ErrInvalidID       = errors.New("item id must not contain '/', '?' or '#'")
)

// ReservedIDChars cannot appear in item IDs, which are used as URL path segments.
const ReservedIDChars = "/?#"

// Movement reasons recorded by the inventory.
const (
	ReasonItemAdded          = "item added"
	ReasonItemRemoved        = "item removed"
	ReasonQuantityAdjustment = "quantity adjustment"
	ReasonStockAdjustment    = "stock adjustment"
)

// Inventory maps item IDs to items and keeps the ledger in step with every
// quantity change. The whole mapping is written to a single JSON file after
// each mutation; a mutex serializes all read-modify-write cycles.
type Inventory struct {
	mu     sync.Mutex
	path   string
	items  map[string]model.Item
	ledger *Ledger
}

// OpenInventory loads the inventory snapshot at path, creating an empty one
// if the file does not exist. Quantity changes are recorded in ledger.
func OpenInventory(path string, ledger *Ledger) (*Inventory, error) {
	s := &Inventory{
		path:   path,
		items:  make(map[string]model.Item),
		ledger: ledger,
	}

	found, err := readJSON(path, &s.items)
	if err != nil {
		return nil, fmt.Errorf("opening inventory: %w", err)
	}
	if s.items == nil {
		s.items = make(map[string]model.Item)
	}
	if !found {
		if err := s.persist(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add inserts a new item and records a non-zero initial quantity as an entry.
func (s *Inventory) Add(item model.Item) error {
	if item.ID == "" {
		return ErrMissingID
	}
	if strings.ContainsAny(item.ID, ReservedIDChars) {
		return ErrInvalidID
	}
	if item.Quantity < 0 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[item.ID]; ok {
		return ErrAlreadyExists
	}

	if item.Quantity > 0 {
		if err := s.record(item, model.MovementEntry, item.Quantity, ReasonItemAdded); err != nil {
			return err
		}
	}

	s.items[item.ID] = item
	if err := s.persist(); err != nil {
		delete(s.items, item.ID)
		return err
	}
	return nil
}

// Remove deletes an item. Any stock it still held is recorded as an exit
// before the item disappears; its earlier history is left untouched.
func (s *Inventory) Remove(id string) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return model.Item{}, ErrNotFound
	}

	if item.Quantity > 0 {
		if err := s.record(item, model.MovementExit, item.Quantity, ReasonItemRemoved); err != nil {
			return model.Item{}, err
		}
	}

	delete(s.items, id)
	if err := s.persist(); err != nil {
		s.items[id] = item
		return model.Item{}, err
	}
	return item, nil
}

// ItemUpdate holds the editable fields of an item.
type ItemUpdate struct {
	Name     string
	Category string
	Quantity int
	Unit     string
	Status   string
}

// Update replaces an item's editable fields. A quantity change is recorded as
// a single entry or exit for the difference.
func (s *Inventory) Update(id string, u ItemUpdate) (model.Item, error) {
	return s.modify(id, ReasonQuantityAdjustment, func(item *model.Item) {
		item.Name = u.Name
		item.Category = u.Category
		item.Quantity = u.Quantity
		item.Unit = u.Unit
		item.Status = u.Status
	})
}

// SetQuantity changes only the quantity of an item.
func (s *Inventory) SetQuantity(id string, quantity int) (model.Item, error) {
	return s.modify(id, ReasonStockAdjustment, func(item *model.Item) {
		item.Quantity = quantity
	})
}

// SetPhoto replaces the photo reference of an item and returns the previous one.
func (s *Inventory) SetPhoto(id, photo string) (string, error) {
	var previous string
	_, err := s.modify(id, "", func(item *model.Item) {
		previous = item.Photo
		item.Photo = photo
	})
	return previous, err
}

// Get returns the item with the given ID.
func (s *Inventory) Get(id string) (model.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	return item, ok
}

// List returns all items ordered by ID.
func (s *Inventory) List() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

// Len returns the number of items.
func (s *Inventory) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// modify applies change to a copy of the item, records the quantity
// difference (if any) with the given reason, and persists the result.
func (s *Inventory) modify(id, reason string, change func(*model.Item)) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.items[id]
	if !ok {
		return model.Item{}, ErrNotFound
	}

	updated := old
	change(&updated)
	updated.ID = old.ID
	if updated.Quantity < 0 {
		return model.Item{}, ErrInvalidQuantity
	}

	if delta := updated.Quantity - old.Quantity; delta != 0 {
		kind, quantity := model.KindForDelta(delta)
		if err := s.record(updated, kind, quantity, reason); err != nil {
			return model.Item{}, err
		}
	}

	s.items[id] = updated
	if err := s.persist(); err != nil {
		s.items[id] = old
		return model.Item{}, err
	}
	return updated, nil
}

// record appends a movement for item to the ledger.
func (s *Inventory) record(item model.Item, kind model.MovementKind, quantity int, reason string) error {
	err := s.ledger.Append(model.Movement{
		ItemID:   item.ID,
		ItemName: item.Name,
		Quantity: quantity,
		Kind:     kind,
		Unit:     item.Unit,
		Reason:   reason,
	})
	if err != nil {
		return fmt.Errorf("recording movement: %w", err)
	}
	return nil
}

func (s *Inventory) persist() error {
	if err := writeJSON(s.path, s.items); err != nil {
		return fmt.Errorf("saving inventory: %w", err)
	}
	return nil
}
