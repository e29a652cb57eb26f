package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

var itemStatuses = []string{model.ItemStatusActive, model.ItemStatusInactive, model.ItemStatusDamaged}

type itemFormPage struct {
	PageData
	Item        model.Item
	Quantity    string
	IsNew       bool
	Statuses    []string
	DefaultUnit string
}

func (s *Server) renderItemForm(w http.ResponseWriter, r *http.Request, status int, data *itemFormPage) {
	if data.Title == "" {
		data.PageData = page(r, "Uredi artikel")
		if data.IsNew {
			data.PageData = page(r, "Nov artikel")
		}
	}
	data.Statuses = itemStatuses
	data.DefaultUnit = model.DefaultUnit
	s.Templates.RenderStatus(w, status, "item_form.html", data)
}

// formError re-renders the item form with a message.
func (s *Server) formError(w http.ResponseWriter, r *http.Request, data *itemFormPage, msg string) {
	title := "Uredi artikel"
	if data.IsNew {
		title = "Nov artikel"
	}
	data.PageData = page(r, title)
	data.Error = msg
	s.renderItemForm(w, r, http.StatusBadRequest, data)
}

// parseItemForm reads the item fields of a (possibly multipart) form. The raw
// quantity text is kept so the form can be shown again unchanged.
func (s *Server) parseItemForm(w http.ResponseWriter, r *http.Request) (*itemFormPage, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.UploadLimit)
	if err := r.ParseMultipartForm(s.UploadLimit); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}

	data := &itemFormPage{
		Item: model.Item{
			ID:       strings.TrimSpace(r.FormValue("id")),
			Name:     strings.TrimSpace(r.FormValue("name")),
			Category: strings.TrimSpace(r.FormValue("category")),
			Unit:     strings.TrimSpace(r.FormValue("unit")),
			Status:   r.FormValue("status"),
		},
		Quantity: strings.TrimSpace(r.FormValue("quantity")),
	}
	if data.Item.Unit == "" {
		data.Item.Unit = model.DefaultUnit
	}
	if data.Item.Status == "" {
		data.Item.Status = model.ItemStatusActive
	}
	return data, nil
}

// validateQuantity converts the quantity text, returning a form message on failure.
func validateQuantity(data *itemFormPage) string {
	q, err := strconv.Atoi(data.Quantity)
	if err != nil {
		return "Količina mora biti celo število."
	}
	if q < 0 {
		return "Količina ne sme biti negativna."
	}
	data.Item.Quantity = q
	return ""
}

// savePhoto stores an uploaded photo if the form carries one. It returns an
// empty name when no file was sent.
func (s *Server) savePhoto(r *http.Request) (string, error) {
	file, _, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()
	return s.Photos.Save(file)
}

// ItemNewPage handles GET /items/new.
func (s *Server) ItemNewPage(w http.ResponseWriter, r *http.Request) {
	s.renderItemForm(w, r, http.StatusOK, &itemFormPage{
		IsNew:    true,
		Item:     model.Item{Unit: model.DefaultUnit, Status: model.ItemStatusActive},
		Quantity: "0",
	})
}

// ItemCreateSubmit handles POST /items/new.
func (s *Server) ItemCreateSubmit(w http.ResponseWriter, r *http.Request) {
	data, err := s.parseItemForm(w, r)
	if err != nil {
		s.formError(w, r, &itemFormPage{IsNew: true}, "Datoteka je prevelika.")
		return
	}
	data.IsNew = true

	if data.Item.ID == "" || data.Item.Name == "" {
		s.formError(w, r, data, "Vnesite ID in naziv artikla.")
		return
	}
	if strings.ContainsAny(data.Item.ID, store.ReservedIDChars) {
		s.formError(w, r, data, "ID artikla ne sme vsebovati znakov /, ? ali #.")
		return
	}
	if msg := validateQuantity(data); msg != "" {
		s.formError(w, r, data, msg)
		return
	}
	if _, exists := s.Inventory.Get(data.Item.ID); exists {
		s.formError(w, r, data, "Artikel s tem ID-jem že obstaja.")
		return
	}

	photo, err := s.savePhoto(r)
	if err != nil {
		s.formError(w, r, data, "Slika mora biti v formatu JPEG ali PNG.")
		return
	}
	data.Item.Photo = photo

	if err := s.Inventory.Add(data.Item); err != nil {
		s.removePhoto(data.Item.ID, photo)
		if errors.Is(err, store.ErrAlreadyExists) {
			s.formError(w, r, data, "Artikel s tem ID-jem že obstaja.")
			return
		}
		slog.Error("failed to create item", "error", err)
		http.Error(w, "failed to create item", http.StatusInternalServerError)
		return
	}

	slog.Info("item created", "user", username(r), "item", data.Item.ID, "quantity", data.Item.Quantity)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ItemEditPage handles GET /items/{id}/edit.
func (s *Server) ItemEditPage(w http.ResponseWriter, r *http.Request) {
	item, ok := s.Inventory.Get(r.PathValue("id"))
	if !ok {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}

	s.renderItemForm(w, r, http.StatusOK, &itemFormPage{
		Item:     item,
		Quantity: strconv.Itoa(item.Quantity),
	})
}

// ItemUpdateSubmit handles POST /items/{id}/edit.
func (s *Server) ItemUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	current, ok := s.Inventory.Get(id)
	if !ok {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}

	data, err := s.parseItemForm(w, r)
	if err != nil {
		s.formError(w, r, &itemFormPage{Item: current, Quantity: strconv.Itoa(current.Quantity)}, "Datoteka je prevelika.")
		return
	}
	data.Item.ID = id
	data.Item.Photo = current.Photo

	if data.Item.Name == "" {
		s.formError(w, r, data, "Vnesite naziv artikla.")
		return
	}
	if msg := validateQuantity(data); msg != "" {
		s.formError(w, r, data, msg)
		return
	}

	photo, err := s.savePhoto(r)
	if err != nil {
		s.formError(w, r, data, "Slika mora biti v formatu JPEG ali PNG.")
		return
	}

	item, err := s.Inventory.Update(id, store.ItemUpdate{
		Name:     data.Item.Name,
		Category: data.Item.Category,
		Quantity: data.Item.Quantity,
		Unit:     data.Item.Unit,
		Status:   data.Item.Status,
	})
	if err != nil {
		s.removePhoto(id, photo)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}
		slog.Error("failed to update item", "error", err)
		http.Error(w, "failed to update item", http.StatusInternalServerError)
		return
	}

	if photo != "" {
		previous, err := s.Inventory.SetPhoto(id, photo)
		if err != nil {
			s.removePhoto(id, photo)
			slog.Error("failed to save photo", "item", id, "error", err)
		} else {
			s.removePhoto(id, previous)
		}
	}

	slog.Info("item updated", "user", username(r), "item", item.ID, "quantity", item.Quantity)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ItemDeleteSubmit handles POST /items/{id}/delete.
func (s *Server) ItemDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	item, err := s.Inventory.Remove(r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to delete item", "error", err)
		http.Error(w, "failed to delete item", http.StatusInternalServerError)
		return
	}

	s.removePhoto(item.ID, item.Photo)

	slog.Info("item deleted", "user", username(r), "item", item.ID)
	http.Redirect(w, r, "/?deleted=1", http.StatusSeeOther)
}

// ItemPhotoGet handles GET /items/{id}/photo.
func (s *Server) ItemPhotoGet(w http.ResponseWriter, r *http.Request) {
	item, ok := s.Inventory.Get(r.PathValue("id"))
	if !ok || item.Photo == "" {
		http.NotFound(w, r)
		return
	}

	path, err := s.Photos.Path(item.Photo)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeFile(w, r, path)
}

// removePhoto deletes a stored photo, logging failures.
func (s *Server) removePhoto(itemID, name string) {
	if err := s.Photos.Remove(name); err != nil {
		slog.Warn("failed to remove photo", "item", itemID, "photo", name, "error", err)
	}
}
