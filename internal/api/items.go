package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/zaloga/internal/imaging"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

// ItemsHandler handles item CRUD and photo endpoints.
type ItemsHandler struct {
	Inventory   *store.Inventory
	Ledger      *store.Ledger
	Photos      *imaging.PhotoStore
	UploadLimit int64
}

type createItemRequest struct {
	ID       string `json:"id" validate:"required,max=64,excludesall=/?#"`
	Name     string `json:"name" validate:"required,max=200"`
	Category string `json:"category" validate:"max=100"`
	Quantity int    `json:"quantity" validate:"gte=0"`
	Unit     string `json:"unit" validate:"max=32"`
	Status   string `json:"status" validate:"max=32"`
}

type updateItemRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Category string `json:"category" validate:"max=100"`
	Quantity *int   `json:"quantity" validate:"required,gte=0"`
	Unit     string `json:"unit" validate:"max=32"`
	Status   string `json:"status" validate:"max=32"`
}

func withDefaults(unit, status string) (string, string) {
	if unit == "" {
		unit = model.DefaultUnit
	}
	if status == "" {
		status = model.ItemStatusActive
	}
	return unit, status
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.Inventory.List())
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item := model.Item{
		ID:       req.ID,
		Name:     req.Name,
		Category: req.Category,
		Quantity: req.Quantity,
	}
	item.Unit, item.Status = withDefaults(req.Unit, req.Status)

	if err := h.Inventory.Add(item); err != nil {
		inventoryError(w, err, "create item")
		return
	}

	slog.Info("item created", "user", username(r), "item", item.ID, "quantity", item.Quantity)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := h.Inventory.Get(r.PathValue("id"))
	if !ok {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	u := store.ItemUpdate{
		Name:     req.Name,
		Category: req.Category,
		Quantity: *req.Quantity,
	}
	u.Unit, u.Status = withDefaults(req.Unit, req.Status)

	item, err := h.Inventory.Update(r.PathValue("id"), u)
	if err != nil {
		inventoryError(w, err, "update item")
		return
	}

	slog.Info("item updated", "user", username(r), "item", item.ID, "quantity", item.Quantity)
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, err := h.Inventory.Remove(r.PathValue("id"))
	if err != nil {
		inventoryError(w, err, "delete item")
		return
	}

	if err := h.Photos.Remove(item.Photo); err != nil {
		slog.Warn("failed to remove photo", "item", item.ID, "photo", item.Photo, "error", err)
	}

	slog.Info("item deleted", "user", username(r), "item", item.ID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// History handles GET /api/items/{id}/history.
func (h *ItemsHandler) History(w http.ResponseWriter, r *http.Request) {
	movements, err := h.Ledger.Filter(store.MovementFilter{ItemID: r.PathValue("id")})
	if err != nil {
		slog.Error("failed to read history", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item history")
		return
	}
	jsonResponse(w, http.StatusOK, movements)
}

// UploadPhoto handles PUT /api/items/{id}/photo.
func (h *ItemsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := h.Inventory.Get(id); !ok {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.UploadLimit)
	if err := r.ParseMultipartForm(h.UploadLimit); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	name, err := h.Photos.Save(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	previous, err := h.Inventory.SetPhoto(id, name)
	if err != nil {
		if err := h.Photos.Remove(name); err != nil {
			slog.Warn("failed to remove unused photo", "item", id, "photo", name, "error", err)
		}
		inventoryError(w, err, "save photo")
		return
	}
	if err := h.Photos.Remove(previous); err != nil {
		slog.Warn("failed to remove old photo", "item", id, "photo", previous, "error", err)
	}

	slog.Info("item photo updated", "user", username(r), "item", id)
	jsonResponse(w, http.StatusOK, map[string]string{"photo": name})
}

// GetPhoto handles GET /api/items/{id}/photo.
func (h *ItemsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	item, ok := h.Inventory.Get(r.PathValue("id"))
	if !ok {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if item.Photo == "" {
		jsonError(w, http.StatusNotFound, "no photo")
		return
	}

	path, err := h.Photos.Path(item.Photo)
	if err != nil {
		jsonError(w, http.StatusNotFound, "no photo")
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeFile(w, r, path)
}
