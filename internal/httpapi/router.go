package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/courses", func(r chi.Router) {
			r.Get("/", h.ListCourses)
			r.Get("/{courseId}", h.GetCourse)
		})

		r.Route("/cart/{userId}", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Post("/items", h.AddCartItem)
			r.Delete("/items/{courseId}", h.RemoveCartItem)
			r.Delete("/", h.ClearCart)
		})

		r.Route("/wishlist/{userId}", func(r chi.Router) {
			r.Get("/", h.GetWishlist)
			r.Post("/items", h.AddWishlistItem)
			r.Delete("/items/{courseId}", h.RemoveWishlistItem)
		})

		r.With(RequireUserID).Post("/checkout", h.Checkout)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/{orderId}", h.GetOrder)
			r.Get("/user/{userId}", h.ListOrdersByUser)
			r.Post("/{orderId}/status", h.UpdateOrderStatus)
		})

		r.Get("/notifications/{recipient}", h.ListNotifications)
	})

	return r
}
