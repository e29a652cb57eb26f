package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/zaloga/internal/store"
)

// InventoryHandler handles stock level changes.
type InventoryHandler struct {
	Inventory *store.Inventory
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

// SetQuantity handles PUT /api/items/{id}/quantity. The difference to the
// current quantity is recorded as a stock adjustment.
func (h *InventoryHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := h.Inventory.SetQuantity(r.PathValue("id"), *req.Quantity)
	if err != nil {
		inventoryError(w, err, "adjust stock")
		return
	}

	slog.Info("stock adjusted", "user", username(r), "item", item.ID, "quantity", item.Quantity)
	jsonResponse(w, http.StatusOK, item)
}
