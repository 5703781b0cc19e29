package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"orderdesk/internal/handler"
	"orderdesk/internal/middleware"
)

// Handlers groups the screen handlers the router mounts under /api.
type Handlers struct {
	Customers *handler.CustomerHandler
	Products  *handler.ProductHandler
	Orders    *handler.OrderHandler
	Draft     *handler.DraftHandler
	Status    *handler.StatusHandler
}

// NewRouter wires the facade. CORS is wide open, like the original dev
// setup: the UI may be served from anywhere.
func NewRouter(h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(api chi.Router) {
		h.Customers.RegisterRoutes(api)
		h.Products.RegisterRoutes(api)
		h.Orders.RegisterRoutes(api)
		h.Draft.RegisterRoutes(api)
		h.Status.RegisterRoutes(api)
	})

	return r
}
