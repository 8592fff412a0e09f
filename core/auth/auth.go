package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/lms/api/web"
	"github.com/irsalhamdi/lms/api/weberr"
	"github.com/irsalhamdi/lms/core/claims"
	"github.com/irsalhamdi/lms/core/user"
)

const (
	userIDKey     = "userID"
	roleKey       = "role"
	oauthStateKey = "oauthState"
)

// LoadAndSave loads the session of the request into its context and commits
// it once the handler returns.
func LoadAndSave(sm *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			var err error
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				err = handler(r.Context(), w, r)
			})

			sm.LoadAndSave(next).ServeHTTP(w, r.WithContext(ctx))
			return err
		}
		return h
	}
	return m
}

func sessionClaims(ctx context.Context, sm *scs.SessionManager) (claims.Claims, bool) {
	id := sm.GetString(ctx, userIDKey)
	if id == "" {
		return claims.Claims{}, false
	}
	return claims.Claims{UserID: id, Role: sm.GetString(ctx, roleKey)}, true
}

// Identify attaches the claims of a logged in user to the context and lets
// anonymous requests through untouched.
func Identify(sm *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if clm, ok := sessionClaims(ctx, sm); ok {
				ctx = claims.Set(ctx, clm)
			}
			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

func Authenticate(sm *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			clm, ok := sessionClaims(ctx, sm)
			if !ok {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}
			return handler(claims.Set(ctx, clm), w, r)
		}
		return h
	}
	return m
}

func Admin(sm *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			clm, ok := sessionClaims(ctx, sm)
			if !ok {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}
			if clm.Role != claims.RoleAdmin {
				return weberr.Forbidden(fmt.Errorf("user[%s] is not an admin", clm.UserID))
			}
			return handler(claims.Set(ctx, clm), w, r)
		}
		return h
	}
	return m
}

// login binds usr to the session, renewing the token to avoid fixation.
func login(ctx context.Context, sm *scs.SessionManager, usr user.User) error {
	if err := sm.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}
	sm.Put(ctx, userIDKey, usr.ID)
	sm.Put(ctx, roleKey, usr.Role)
	return nil
}
