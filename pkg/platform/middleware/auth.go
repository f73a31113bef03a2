package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	id "veriface/pkg/domain"
	"veriface/pkg/requestcontext"
)

// BankerValidator validates an access token into banker claims.
type BankerValidator interface {
	ValidateToken(tokenString string) (*BankerClaims, error)
}

// BankerClaims is the validated identity the auth middleware stores in the
// request context.
type BankerClaims struct {
	BankerID   id.BankerID
	BranchCode string
}

// RequireAuth rejects requests without a valid Bearer token and stores the
// banker identity in the request context for handlers and audit records.
func RequireAuth(validator BankerValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token", "request_id", requestID)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"request_id", requestID,
					"error", err,
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithBankerID(ctx, claims.BankerID)
			ctx = requestcontext.WithBranchCode(ctx, claims.BranchCode)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
