package model

// Item is one stocked inventory entry. ID is chosen by the caller and never changes.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
	Status   string `json:"status"`
	Photo    string `json:"photo,omitempty"`
}

// DefaultUnit is used by the forms when no unit is given.
const DefaultUnit = "pieces"

// Item statuses offered by the forms. Status is free text; these are suggestions.
const (
	ItemStatusActive   = "active"
	ItemStatusInactive = "inactive"
	ItemStatusDamaged  = "damaged"
)
