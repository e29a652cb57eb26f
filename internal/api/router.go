package api

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/erazemk/zaloga/internal/auth"
	"github.com/erazemk/zaloga/internal/imaging"
	"github.com/erazemk/zaloga/internal/store"
)

// Deps holds the services the API handlers operate on.
type Deps struct {
	Accounts    *auth.Accounts
	Inventory   *store.Inventory
	Ledger      *store.Ledger
	Photos      *imaging.PhotoStore
	UploadLimit int64
	ReportDays  int
	LoginRate   rate.Limit
	LoginBurst  int
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	if d.LoginRate <= 0 {
		d.LoginRate = 1
	}
	if d.LoginBurst <= 0 {
		d.LoginBurst = 5
	}

	mux := http.NewServeMux()

	authHandler := &AuthHandler{Accounts: d.Accounts}
	itemsHandler := &ItemsHandler{
		Inventory:   d.Inventory,
		Ledger:      d.Ledger,
		Photos:      d.Photos,
		UploadLimit: d.UploadLimit,
	}
	inventoryHandler := &InventoryHandler{Inventory: d.Inventory}
	movementsHandler := &MovementsHandler{Ledger: d.Ledger}
	reportsHandler := &ReportsHandler{Inventory: d.Inventory, Ledger: d.Ledger, RangeDays: d.ReportDays}

	authMW := AuthMiddleware(d.Accounts)
	limited := NewRateLimiter(d.LoginRate, d.LoginBurst).Middleware

	// Public, rate limited.
	mux.Handle("POST /api/auth/register", limited(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/verify", limited(http.HandlerFunc(authHandler.Verify)))
	mux.Handle("POST /api/auth/login", limited(http.HandlerFunc(authHandler.Login)))

	// Session.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Items.
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("GET /api/items/{id}/history", authMW(http.HandlerFunc(itemsHandler.History)))
	mux.Handle("PUT /api/items/{id}/photo", authMW(http.HandlerFunc(itemsHandler.UploadPhoto)))
	mux.Handle("GET /api/items/{id}/photo", authMW(http.HandlerFunc(itemsHandler.GetPhoto)))
	mux.Handle("PUT /api/items/{id}/quantity", authMW(http.HandlerFunc(inventoryHandler.SetQuantity)))

	// Ledger and reports.
	mux.Handle("GET /api/movements", authMW(http.HandlerFunc(movementsHandler.List)))
	mux.Handle("GET /api/reports/inventory.pdf", authMW(http.HandlerFunc(reportsHandler.InventoryPDF)))
	mux.Handle("GET /api/reports/movements.xlsx", authMW(http.HandlerFunc(reportsHandler.MovementsXLSX)))

	return mux
}
