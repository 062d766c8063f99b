package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coursecity0-ctr/CourseCity-sub000/internal/cart"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing userId")
		return
	}

	items, err := h.carts.Items(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	if items == nil {
		items = []cart.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

type addCartItemRequest struct {
	CourseID string `json:"courseId"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing userId")
		return
	}

	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.CourseID == "" || req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "courseId and positive quantity required")
		return
	}

	if err := h.carts.Add(r.Context(), userID, req.CourseID, req.Quantity); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to add item")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	courseID := chi.URLParam(r, "courseId")
	if userID == "" || courseID == "" {
		writeError(w, http.StatusBadRequest, "missing userId or courseId")
		return
	}

	if err := h.carts.Remove(r.Context(), userID, courseID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to remove item")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing userId")
		return
	}

	if err := h.carts.Clear(r.Context(), userID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
