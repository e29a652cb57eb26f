package web

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/erazemk/zaloga/internal/api"
	"github.com/erazemk/zaloga/internal/auth"
	"github.com/erazemk/zaloga/internal/imaging"
	"github.com/erazemk/zaloga/internal/store"
	webembed "github.com/erazemk/zaloga/web"
)

// Deps holds the services the page handlers operate on.
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

// Server holds all dependencies for page handlers.
type Server struct {
	Accounts    *auth.Accounts
	Inventory   *store.Inventory
	Ledger      *store.Ledger
	Photos      *imaging.PhotoStore
	Templates   *Templates
	UploadLimit int64
	ReportDays  int
	TokenTTL    time.Duration

	limiter *api.RateLimiter
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(d Deps) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	if d.LoginRate <= 0 {
		d.LoginRate = 1
	}
	if d.LoginBurst <= 0 {
		d.LoginBurst = 5
	}

	s := &Server{
		Accounts:    d.Accounts,
		Inventory:   d.Inventory,
		Ledger:      d.Ledger,
		Photos:      d.Photos,
		Templates:   templates,
		UploadLimit: d.UploadLimit,
		ReportDays:  d.ReportDays,
		TokenTTL:    d.Accounts.TokenTTL,
		limiter:     api.NewRateLimiter(d.LoginRate, d.LoginBurst),
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(d.Accounts)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("GET /register", s.RegisterPage)
	mux.HandleFunc("POST /register", s.RegisterSubmit)
	mux.HandleFunc("GET /verify/{username}", s.VerifyPage)
	mux.HandleFunc("POST /verify/{username}", s.VerifySubmit)
	mux.HandleFunc("POST /verify/{username}/resend", s.VerifyResend)
	mux.HandleFunc("GET /logout", s.Logout)
	mux.HandleFunc("POST /logout", s.Logout)

	// Authenticated routes.
	mux.Handle("GET /{$}", cookieAuth(http.HandlerFunc(s.Index)))

	mux.Handle("GET /items/new", cookieAuth(http.HandlerFunc(s.ItemNewPage)))
	mux.Handle("POST /items/new", cookieAuth(http.HandlerFunc(s.ItemCreateSubmit)))
	mux.Handle("GET /items/{id}/edit", cookieAuth(http.HandlerFunc(s.ItemEditPage)))
	mux.Handle("POST /items/{id}/edit", cookieAuth(http.HandlerFunc(s.ItemUpdateSubmit)))
	mux.Handle("POST /items/{id}/delete", cookieAuth(http.HandlerFunc(s.ItemDeleteSubmit)))
	mux.Handle("GET /items/{id}/photo", cookieAuth(http.HandlerFunc(s.ItemPhotoGet)))

	mux.Handle("GET /history", cookieAuth(http.HandlerFunc(s.HistoryPage)))
	mux.Handle("GET /history/export", cookieAuth(http.HandlerFunc(s.HistoryExport)))

	mux.Handle("GET /report", cookieAuth(http.HandlerFunc(s.ReportPage)))
	mux.Handle("POST /report", cookieAuth(http.HandlerFunc(s.ReportSubmit)))

	return mux, nil
}

// allow applies the sign-in rate limit to r.
func (s *Server) allow(r *http.Request) bool {
	return s.limiter.Allow(api.ClientIP(r))
}
