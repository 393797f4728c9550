package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/vaughan-dsouza/bookcart/internal/middleware"
	"github.com/vaughan-dsouza/bookcart/internal/utils"
)

// Router wires every route. staticDir, when set, is served for GETs that
// match no API route.
func (h *Handler) Router(staticDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AllowAll)

	r.Get("/health", h.Health)

	// Public
	r.Post("/register", h.Auth.Register)
	r.Post("/admin/register", h.Auth.RegisterAdmin)
	r.Post("/login", h.Auth.Login)

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.Tokens, h.Revoker))

		r.Get("/me", h.Auth.Me)
		r.Post("/logout", h.Auth.Logout)

		r.Get("/books", h.Books.List)
		r.Get("/books/{id}", h.Books.Get)
		r.Get("/search", h.Books.Search)

		r.Post("/add-to-cart", h.Cart.Add)
		r.Get("/cart", h.Cart.List)
		r.Delete("/remove-from-cart/{book_id}", h.Cart.Remove)

		// Admin
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Post("/add-book", h.Books.Add)
			r.Delete("/delete-book/{id}", h.Books.Delete)
		})
	})

	if staticDir != "" {
		files := http.FileServer(http.Dir(staticDir))
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				utils.JSONError(w, http.StatusNotFound, "Not found")
				return
			}
			files.ServeHTTP(w, r)
		})
	}

	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.PingContext(r.Context()); err != nil {
		utils.Logger(r.Context()).Error("health check", "err", err)
		utils.JSONError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
