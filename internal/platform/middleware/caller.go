package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	id "vouch/pkg/domain"
	"vouch/pkg/requestcontext"
)

// HeightHeader carries the host's logical clock. The host guarantees
// monotonicity; the middleware only validates the value parses.
const HeightHeader = "X-Vouch-Height"

// RequireCaller validates the bearer token and injects the caller account
// into context. The token subject is the account identity supplied by the
// host environment; the ledger never mints identities itself.
func RequireCaller(signingKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				writeAuthError(w, "missing bearer token")
				return
			}

			token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				return []byte(signingKey), nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				logger.WarnContext(r.Context(), "invalid caller token",
					"request_id", requestcontext.RequestID(r.Context()),
					"error", errString(err),
				)
				writeAuthError(w, "invalid bearer token")
				return
			}

			subject, err := token.Claims.GetSubject()
			if err != nil || subject == "" {
				writeAuthError(w, "token missing subject")
				return
			}
			caller, err := id.ParseAccountID(subject)
			if err != nil {
				writeAuthError(w, "token subject is not a valid account")
				return
			}

			ctx := requestcontext.WithCaller(r.Context(), caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Height parses the logical height header into context. Requests without
// the header proceed at height 0 so read paths stay usable from plain
// clients.
func Height(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(HeightHeader)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		height, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid " + HeightHeader + " header"})
			return
		}
		ctx := requestcontext.WithHeight(r.Context(), height)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
