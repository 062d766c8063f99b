package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coursecity0-ctr/CourseCity-sub000/internal/checkout"
)

type checkoutRequest struct {
	PaymentMethod string `json:"paymentMethod"`
	// Items is the optional "buy now" list; when present the stored cart is
	// not consulted for the order contents.
	Items []checkoutItem `json:"items,omitempty"`
}

type checkoutItem struct {
	CourseID string `json:"courseId"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user identity")
		return
	}

	var req checkoutRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
	}

	items := make([]checkout.ItemOverride, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, checkout.ItemOverride{CourseID: it.CourseID, Quantity: it.Quantity})
	}

	result, err := h.checkout.Checkout(r.Context(), checkout.Request{
		UserID:        userID,
		PaymentMethod: req.PaymentMethod,
		Items:         items,
	})
	if err != nil {
		var unavailable *checkout.CourseUnavailableError
		switch {
		case errors.Is(err, checkout.ErrMissingUser), errors.Is(err, checkout.ErrEmptyCart):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &unavailable):
			writeError(w, http.StatusConflict, unavailable.Error())
		default:
			writeError(w, http.StatusInternalServerError, "checkout failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, result)
}
