package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coursecity0-ctr/CourseCity-sub000/internal/catalog"
)

func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load courses")
		return
	}
	if courses == nil {
		courses = []catalog.Course{}
	}
	writeJSON(w, http.StatusOK, courses)
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseId")
	c, err := h.courses.Get(r.Context(), courseID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "course not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load course")
		return
	}
	writeJSON(w, http.StatusOK, c)
}
