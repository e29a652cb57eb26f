package model

import "time"

// Movement is one immutable entry in the stock history. Item fields are copied
// at the time of the movement, so later renames or deletions do not alter it.
type Movement struct {
	Timestamp time.Time    `json:"timestamp"`
	ItemID    string       `json:"item_id"`
	ItemName  string       `json:"item_name"`
	Quantity  int          `json:"quantity"`
	Kind      MovementKind `json:"kind"`
	Unit      string       `json:"unit"`
	Reason    string       `json:"reason"`
}

// MovementKind is the direction of a movement.
type MovementKind string

// Movement kinds.
const (
	MovementEntry MovementKind = "entry"
	MovementExit  MovementKind = "exit"
)

// Valid reports whether k is a known kind.
func (k MovementKind) Valid() bool {
	return k == MovementEntry || k == MovementExit
}

// KindForDelta returns the movement kind and magnitude for a signed quantity change.
func KindForDelta(delta int) (MovementKind, int) {
	if delta < 0 {
		return MovementExit, -delta
	}
	return MovementEntry, delta
}
