package handler

import (
	"context"
	"net/http"

	"talkseed/internal/session"
)

// Context key for attaching the authenticated subject id.
type ctxKey string

const subjectIDKey ctxKey = "talkseed_subject_id"

func withSubjectID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, subjectIDKey, id)
}

// SubjectID extracts the authenticated subject id from the context.
// Handlers call this after requireAuth has run.
func SubjectID(ctx context.Context) string {
	if v, ok := ctx.Value(subjectIDKey).(string); ok {
		return v
	}
	return ""
}

// requireAuth verifies the session ticket cookie and injects the subject id
// into the request context. Faulty tickets short-circuit with a 401 carrying
// a code that tells the client whether to re-login (expired) or treat the
// credential as broken (tampered/malformed/missing).
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		subjectID, err := h.tickets.Verify(session.FromRequest(r))
		if err != nil {
			h.respondError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withSubjectID(r.Context(), subjectID)))
	})
}

// corsMiddleware mirrors the permissive CORS policy the mobile web client
// relies on.
func (h *Handler) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
