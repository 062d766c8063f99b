package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coursecity0-ctr/CourseCity-sub000/internal/cart"
	"github.com/coursecity0-ctr/CourseCity-sub000/internal/catalog"
	"github.com/coursecity0-ctr/CourseCity-sub000/internal/checkout"
	"github.com/coursecity0-ctr/CourseCity-sub000/internal/notify"
	"github.com/coursecity0-ctr/CourseCity-sub000/internal/order"
	"github.com/coursecity0-ctr/CourseCity-sub000/internal/wishlist"
)

// CheckoutService is what the checkout handler needs from the orchestrator.
type CheckoutService interface {
	Checkout(ctx context.Context, req checkout.Request) (checkout.Result, error)
}

type Handler struct {
	courses       catalog.Repository
	carts         cart.Repository
	wishlists     wishlist.Repository
	orders        order.Repository
	notifications notify.Repository
	checkout      CheckoutService
}

func NewHandler(
	courses catalog.Repository,
	carts cart.Repository,
	wishlists wishlist.Repository,
	orders order.Repository,
	notifications notify.Repository,
	co CheckoutService,
) *Handler {
	return &Handler{
		courses:       courses,
		carts:         carts,
		wishlists:     wishlists,
		orders:        orders,
		notifications: notifications,
		checkout:      co,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
