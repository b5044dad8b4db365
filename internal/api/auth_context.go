package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nesvesk-vienas/nesvesk-server/internal/auth"
	"github.com/nesvesk-vienas/nesvesk-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// userIDKey is the context key for the authenticated user ID.
const userIDKey ctxKey = "userID"

// GetUserID returns the authenticated user ID from context.
// Returns 401 error if user is not authenticated.
func GetUserID(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", huma.Error401Unauthorized("Authentication required")
	}
	return userID, nil
}

// setUserID stores the user ID in context.
func setUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// streamUser resolves the caller of the event stream.
func streamUser(r *http.Request) (string, error) {
	return GetUserID(r.Context())
}

// bearerToken reads the token from the Authorization header. Browsers cannot
// set headers on EventSource, so the stream also accepts ?access_token=.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return r.URL.Query().Get("access_token")
}

// authMiddleware validates identity tokens, resolves the internal user and
// stores its ID in context. Requests without a valid token continue
// anonymously; handlers use GetUserID to reject them.
func authMiddleware(tokens *auth.TokenService, users *service.UserService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" || tokens == nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				logger.Debug("rejected identity token", slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.EnsureUser(r.Context(), claims.Identity())
			if err != nil {
				logger.Warn("failed to resolve user from token",
					slog.String("subject", claims.Subject),
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(setUserID(r.Context(), user.ID)))
		})
	}
}
