package web

import (
	"net/http"

	"github.com/erazemk/zaloga/internal/model"
)

// Index handles GET /, the item list.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	data := &struct {
		PageData
		Items []model.Item
	}{
		PageData: page(r, "Artikli"),
		Items:    s.Inventory.List(),
	}
	if r.URL.Query().Get("deleted") != "" {
		data.Success = "Artikel je bil izbrisan."
	}
	s.Templates.Render(w, "index.html", data)
}
