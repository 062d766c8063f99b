package httpapi

import (
	"context"
	"net/http"
	"strings"
)

// HeaderUserID carries the already-authenticated user identity; auth itself
// happens upstream.
const HeaderUserID = "X-User-Id"

type ctxKey string

const ctxUserID ctxKey = "user_id"

// RequireUserID enforces the X-User-Id header and stores it in context.
func RequireUserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if uid == "" {
			writeError(w, http.StatusBadRequest, "missing required header: "+HeaderUserID)
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserID, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserID(ctx context.Context) string {
	if v := ctx.Value(ctxUserID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
