package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey string

const (
	requestIDKey ctxKey = "reqid"
	userKey      ctxKey = "user"
)

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(r *http.Request) string {
	v := r.Context().Value(requestIDKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

type userHolder struct{ id, role string }

func withHolder(ctx context.Context, h *userHolder) context.Context {
	return context.WithValue(ctx, userKey, h)
}

func holderFrom(ctx context.Context) *userHolder {
	h, _ := ctx.Value(userKey).(*userHolder)
	return h
}
