package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coursecity0-ctr/CourseCity-sub000/internal/wishlist"
)

func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing userId")
		return
	}

	items, err := h.wishlists.List(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load wishlist")
		return
	}
	if items == nil {
		items = []wishlist.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

type addWishlistItemRequest struct {
	CourseID string `json:"courseId"`
}

func (h *Handler) AddWishlistItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing userId")
		return
	}

	var req addWishlistItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.CourseID == "" {
		writeError(w, http.StatusBadRequest, "courseId required")
		return
	}

	if err := h.wishlists.Add(r.Context(), userID, req.CourseID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to add item")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) RemoveWishlistItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	courseID := chi.URLParam(r, "courseId")
	if userID == "" || courseID == "" {
		writeError(w, http.StatusBadRequest, "missing userId or courseId")
		return
	}

	if err := h.wishlists.Remove(r.Context(), userID, courseID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to remove item")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
