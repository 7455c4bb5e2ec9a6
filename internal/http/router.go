package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/boywithalo/marketplacen2/internal/metrics"
)

func NewRouter(carts *CartHandler, products *CatalogHandler, orders *OrderHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", healthHandler)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", products.ListProducts)
		r.Get("/products/{productId}", products.GetProduct)
		r.Put("/products/{productId}/stock", products.SetStock)

		r.Route("/cart/{sessionId}", func(r chi.Router) {
			r.Get("/", carts.GetCart)
			r.Delete("/", carts.ClearCart)
			r.Post("/items", carts.AddItem)
			r.Put("/items/{productId}", carts.SetQuantity)
			r.Delete("/items/{productId}", carts.RemoveItem)
			r.Post("/checkout", carts.Checkout)
		})

		r.Get("/orders/{orderId}", orders.GetOrder)
		r.Patch("/orders/{orderId}/status", orders.UpdateStatus)
		r.Get("/users/{userId}/orders", orders.ListOrdersByUser)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "storefront"})
}
