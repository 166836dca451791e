package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/AdamBeresnev/leagueos/internal/httputil"
	"github.com/AdamBeresnev/leagueos/internal/league"
	"github.com/AdamBeresnev/leagueos/internal/service"
	"github.com/go-chi/chi/v5"
)

type ContextKey string

const (
	TokenKey   ContextKey = "token"
	ProfileKey ContextKey = "profile"
)

// RequireToken rejects requests without a bearer token and stores the token
// in the request context for the league API calls made on the caller's behalf.
func RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			httputil.Unauthorized(w, r, "Missing bearer token")
			return
		}
		ctx := context.WithValue(r.Context(), TokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok && token != ""
}

// AuthorizeFunc checks the caller against the club named in the route.
type AuthorizeFunc func(ctx context.Context, token string, clubID int64) (*league.Profile, error)

// RequireAdmin lets through callers who may use the admin workspace of the
// route's {clubID}. It must run after RequireToken.
func RequireAdmin(authorize AuthorizeFunc) func(http.Handler) http.Handler {
	return requireClubAccess(authorize, "Admin access required")
}

// RequireRecorder lets through callers who may record games for the route's
// {clubID}. It must run after RequireToken.
func RequireRecorder(authorize AuthorizeFunc) func(http.Handler) http.Handler {
	return requireClubAccess(authorize, "Recorder access required")
}

func requireClubAccess(authorize AuthorizeFunc, denied string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := TokenFromContext(r.Context())
			if !ok {
				httputil.Unauthorized(w, r, "Missing bearer token")
				return
			}
			clubID, err := strconv.ParseInt(chi.URLParam(r, "clubID"), 10, 64)
			if err != nil {
				httputil.BadRequest(w, r, "Invalid club id", err)
				return
			}

			profile, err := authorize(r.Context(), token, clubID)
			if err != nil {
				if errors.Is(err, service.ErrForbidden) {
					httputil.Forbidden(w, r, denied, err)
					return
				}
				httputil.Upstream(w, r, "Failed to load profile", err)
				return
			}

			ctx := context.WithValue(r.Context(), ProfileKey, profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ProfileFromContext(ctx context.Context) *league.Profile {
	profile, _ := ctx.Value(ProfileKey).(*league.Profile)
	return profile
}
