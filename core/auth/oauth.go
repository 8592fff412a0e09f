package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/irsalhamdi/lms/api/web"
	"github.com/irsalhamdi/lms/api/weberr"
	"github.com/irsalhamdi/lms/core/claims"
	"github.com/irsalhamdi/lms/core/user"
	"github.com/irsalhamdi/lms/database"
	"github.com/irsalhamdi/lms/random"
	"github.com/irsalhamdi/lms/validate"
	"github.com/jmoiron/sqlx"
	"golang.org/x/oauth2"
)

const stateLength = 32

type ProviderConfig struct {
	Name        string
	Client      string
	Secret      string
	URL         string
	RedirectURL string
}

// Provider is an OpenID Connect issuer users can log in with.
type Provider struct {
	oauth    oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// MakeProviders runs discovery against every configured issuer.
func MakeProviders(ctx context.Context, cfgs []ProviderConfig) (map[string]Provider, error) {
	provs := make(map[string]Provider, len(cfgs))

	for _, cfg := range cfgs {
		p, err := oidc.NewProvider(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("discovering provider[%s]: %w", cfg.Name, err)
		}

		provs[cfg.Name] = Provider{
			oauth: oauth2.Config{
				ClientID:     cfg.Client,
				ClientSecret: cfg.Secret,
				RedirectURL:  cfg.RedirectURL,
				Endpoint:     p.Endpoint(),
				Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
			},
			verifier: p.Verifier(&oidc.Config{ClientID: cfg.Client}),
		}
	}

	return provs, nil
}

func provider(r *http.Request, provs map[string]Provider) (Provider, error) {
	name := web.Param(r, "provider")
	p, ok := provs[name]
	if !ok {
		return Provider{}, weberr.NotFound(fmt.Errorf("provider[%s] not supported", name))
	}
	return p, nil
}

func HandleOauthLogin(sm *scs.SessionManager, provs map[string]Provider) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		p, err := provider(r, provs)
		if err != nil {
			return err
		}

		state, err := random.StringSecure(stateLength)
		if err != nil {
			return fmt.Errorf("generating oauth state: %w", err)
		}
		sm.Put(ctx, oauthStateKey, state)

		http.Redirect(w, r, p.oauth.AuthCodeURL(state), http.StatusFound)
		return nil
	}
}

type idClaims struct {
	Email    string `json:"email"`
	Verified bool   `json:"email_verified"`
	Name     string `json:"name"`
}

// HandleOauthCallback completes the code flow, logs in the user owning the
// verified email and redirects to loginRedirect.
func HandleOauthCallback(db *sqlx.DB, sm *scs.SessionManager, provs map[string]Provider, loginRedirect string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		p, err := provider(r, provs)
		if err != nil {
			return err
		}

		state := sm.PopString(ctx, oauthStateKey)
		if state == "" || state != r.URL.Query().Get("state") {
			return weberr.NotAuthorized(errors.New("oauth state mismatch"))
		}

		tok, err := p.oauth.Exchange(ctx, r.URL.Query().Get("code"))
		if err != nil {
			return weberr.NotAuthorized(fmt.Errorf("exchanging code: %w", err))
		}

		raw, ok := tok.Extra("id_token").(string)
		if !ok {
			return weberr.NotAuthorized(errors.New("id_token missing from token response"))
		}

		idt, err := p.verifier.Verify(ctx, raw)
		if err != nil {
			return weberr.NotAuthorized(fmt.Errorf("verifying id_token: %w", err))
		}

		var cl idClaims
		if err := idt.Claims(&cl); err != nil {
			return fmt.Errorf("parsing id_token claims: %w", err)
		}
		if cl.Email == "" || !cl.Verified {
			return weberr.NotAuthorized(errors.New("email not verified by provider"))
		}

		usr, err := emailUser(ctx, db, cl)
		if err != nil {
			return err
		}

		if !usr.Active {
			return weberr.Forbidden(fmt.Errorf("user[%s] is not active", usr.ID))
		}

		if err := login(ctx, sm, usr); err != nil {
			return err
		}

		http.Redirect(w, r, loginRedirect, http.StatusFound)
		return nil
	}
}

func emailUser(ctx context.Context, db sqlx.ExtContext, cl idClaims) (user.User, error) {
	usr, err := user.FetchByEmail(ctx, db, cl.Email)
	if err == nil {
		return usr, nil
	}
	if !errors.Is(err, database.ErrDBNotFound) {
		return user.User{}, fmt.Errorf("fetching user with email[%s]: %w", cl.Email, err)
	}

	name := cl.Name
	if name == "" {
		name = cl.Email
	}

	now := time.Now().UTC()
	usr = user.User{
		ID:        validate.GenerateID(),
		Name:      name,
		Email:     &cl.Email,
		Role:      claims.RoleUser,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.Create(ctx, db, usr); err != nil {
		return user.User{}, fmt.Errorf("creating user with email[%s]: %w", cl.Email, err)
	}
	return usr, nil
}
