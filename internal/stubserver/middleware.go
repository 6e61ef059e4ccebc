package stubserver

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const accountIDContextKey contextKey = "account_id"

func authMiddleware(tokens *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(strings.ToLower(auth), "bearer ") {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
				return
			}
			accountID, err := tokens.Parse(strings.TrimSpace(auth[7:]))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid bearer token")
				return
			}
			ctx := context.WithValue(r.Context(), accountIDContextKey, accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func accountIDFromContext(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(accountIDContextKey).(uint64)
	return id, ok
}

// idempotencyMiddleware rejects a replayed Idempotency-Key on mutating
// requests. The console sends a fresh key per attempt, so a duplicate
// means a stuck retry loop rather than a legitimate retry.
func idempotencyMiddleware(store *Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			seen, err := store.RecordIdempotencyKey(key)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "INTERNAL", "idempotency check failed")
				return
			}
			if seen {
				writeError(w, http.StatusConflict, "IDEMPOTENT_REPLAY", "idempotency key already used")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
