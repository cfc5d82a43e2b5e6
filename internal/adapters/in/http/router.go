// internal/adapters/in/http/router.go
package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"costtracker/internal/adapters/in/http/handler"
	"costtracker/internal/adapters/in/http/middleware"
	"costtracker/internal/application/cartsync"
	"costtracker/internal/application/query"
	"costtracker/internal/application/usecase"
)

// RouterDeps is everything the router needs wired in.
type RouterDeps struct {
	FirebaseAuth *middleware.FirebaseAuthClient
	CartUsecase  *usecase.CartUsecase
	Sessions     *cartsync.Manager
	CatalogQuery *query.CatalogQuery

	// AllowedOrigin for browser clients ("*" during development).
	AllowedOrigin string
}

// NewRouter builds the service routes:
//
//	GET    /healthz
//	GET    /api/products
//	GET    /api/me/cart
//	GET    /api/me/cart/stream
//	POST   /api/me/cart/items
//	PUT    /api/me/cart/items/{itemID}
//	DELETE /api/me/cart/items/{itemID}
//
// Everything under /api/me sits behind Firebase ID-token auth.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recover)
	r.Use(chimw.RealIP)

	origin := strings.TrimSpace(deps.AllowedOrigin)
	if origin == "" {
		origin = "*"
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: origin != "*",
		MaxAge:           600,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	catalogH := handler.NewCatalogHandler(deps.CatalogQuery)
	cartH := handler.NewCartHandler(deps.CartUsecase, deps.Sessions)

	r.Route("/api", func(api chi.Router) {
		api.Get("/products", catalogH.List)

		api.Route("/me", func(me chi.Router) {
			auth := &middleware.Auth{FirebaseAuth: deps.FirebaseAuth}
			me.Use(auth.Handler)

			me.Get("/cart", cartH.Get)
			me.Get("/cart/stream", cartH.Stream)
			me.Post("/cart/items", cartH.AddItem)
			me.Put("/cart/items/{itemID}", cartH.SetQuantity)
			me.Delete("/cart/items/{itemID}", cartH.RemoveItem)
		})
	})

	return r
}
