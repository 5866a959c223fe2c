package auth

import (
	"context"
	"net/http"
)

type contextKey string

const merchantIDKey contextKey = "merchant_id"

// Middleware copies the merchant scope from the X-Merchant-Id header into the
// request context. The gateway in front of this service has already
// authenticated the caller; this is scoping, not auth.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Merchant-Id"); id != "" {
			r = r.WithContext(WithMerchantID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func WithMerchantID(ctx context.Context, merchantID string) context.Context {
	return context.WithValue(ctx, merchantIDKey, merchantID)
}

func GetMerchantID(ctx context.Context) string {
	if val, ok := ctx.Value(merchantIDKey).(string); ok {
		return val
	}
	return ""
}
