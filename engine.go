// This Source Code Form is subject to the terms of the Mozilla Public
// License, version 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package authzcore

import (
	"context"
	"log"

	"github.com/256dpi/xo"

	"github.com/hooklift/authzcore/clock"
	"github.com/hooklift/authzcore/types"
)

// Engine is the authorization engine's public surface. It is stateless:
// every per-request value lives in the Authorization it returns to the
// caller or in the AppCtx threaded through its Backend. An Engine is safe
// for concurrent use by multiple goroutines; Backend and TokenGenerator are
// responsible for their own concurrency safety.
type Engine struct {
	backend Backend
	tokens  TokenGenerator
	cfg     Configuration
	shaper  ResponseShaper
	clock   clock.Clock
}

// New builds an Engine. Backend and TokenGenerator are resolved from cfg
// once, here, per spec's allowance that both are stable for the engine's
// lifetime.
func New(cfg Configuration, shaper ResponseShaper, clk clock.Clock) *Engine {
	return &Engine{
		backend: cfg.Backend(),
		tokens:  cfg.TokenGenerator(),
		cfg:     cfg,
		shaper:  shaper,
		clock:   clk,
	}
}

// AuthorizePassword implements the Resource Owner Password Credentials
// Grant for a public client (http://tools.ietf.org/html/rfc6749#section-4.3).
// The returned Authorization has no Client set.
func (e *Engine) AuthorizePassword(ctx context.Context, app AppCtx, username, password string, scope types.Scope) (AppCtx, types.Authorization, error) {
	app, owner, err := e.backend.AuthenticateResourceOwner(ctx, app, username, password)
	if err != nil {
		return app, types.Authorization{}, errAccessDenied(err)
	}

	app, effective, err := e.backend.VerifyResourceOwnerScope(ctx, app, owner, scope)
	if err != nil {
		return app, types.Authorization{}, errInvalidScope(err)
	}

	ttl, err := e.cfg.ExpiryTime(types.PasswordCredentials)
	if err != nil {
		return app, types.Authorization{}, wrap(ServerError, err)
	}

	return app, types.Authorization{ResourceOwner: owner, Scope: effective, TTL: ttl}, nil
}

// AuthorizePasswordConfidential is AuthorizePassword for a confidential
// client: the client authenticates first, and is attached to the resulting
// Authorization. A failure inside the wrapped password grant surfaces
// unchanged — it is never rewritten to InvalidClient.
func (e *Engine) AuthorizePasswordConfidential(ctx context.Context, app AppCtx, clientID, clientSecret, username, password string, scope types.Scope) (AppCtx, types.Authorization, error) {
	app, client, err := e.backend.AuthenticateClient(ctx, app, clientID, clientSecret)
	if err != nil {
		return app, types.Authorization{}, errInvalidClient(err)
	}

	app, auth, err := e.AuthorizePassword(ctx, app, username, password, scope)
	if err != nil {
		return app, types.Authorization{}, err
	}

	auth.Client = client
	return app, auth, nil
}

// AuthorizePasswordImplicit is AuthorizePasswordConfidential with a
// redirection-URI check between client authentication and the password
// grant, for clients driving the password grant through a registered
// redirect endpoint. A redirection-URI mismatch is InvalidGrant.
func (e *Engine) AuthorizePasswordImplicit(ctx context.Context, app AppCtx, clientID, clientSecret, redirectURI, username, password string, scope types.Scope) (AppCtx, types.Authorization, error) {
	app, client, err := e.backend.AuthenticateClient(ctx, app, clientID, clientSecret)
	if err != nil {
		return app, types.Authorization{}, errInvalidClient(err)
	}

	app, err = e.backend.VerifyRedirectionURI(ctx, app, client, redirectURI)
	if err != nil {
		return app, types.Authorization{}, errInvalidGrant(err)
	}

	app, auth, err := e.AuthorizePassword(ctx, app, username, password, scope)
	if err != nil {
		return app, types.Authorization{}, err
	}

	auth.Client = client
	return app, auth, nil
}

// AuthorizeResourceOwner builds an Authorization for a caller that has
// already authenticated a resource owner by some means outside this
// engine; only scope verification runs.
func (e *Engine) AuthorizeResourceOwner(ctx context.Context, app AppCtx, owner types.Subject, scope types.Scope) (AppCtx, types.Authorization, error) {
	app, effective, err := e.backend.VerifyResourceOwnerScope(ctx, app, owner, scope)
	if err != nil {
		return app, types.Authorization{}, errInvalidScope(err)
	}

	ttl, err := e.cfg.ExpiryTime(types.PasswordCredentials)
	if err != nil {
		return app, types.Authorization{}, wrap(ServerError, err)
	}

	return app, types.Authorization{ResourceOwner: owner, Scope: effective, TTL: ttl}, nil
}

// AuthorizeClientCredentials implements the Client Credentials Grant
// (http://tools.ietf.org/html/rfc6749#section-4.4). The returned
// Authorization has no ResourceOwner set.
func (e *Engine) AuthorizeClientCredentials(ctx context.Context, app AppCtx, clientID, clientSecret string, scope types.Scope) (AppCtx, types.Authorization, error) {
	app, client, err := e.backend.AuthenticateClient(ctx, app, clientID, clientSecret)
	if err != nil {
		return app, types.Authorization{}, errInvalidClient(err)
	}

	app, effective, err := e.backend.VerifyClientScope(ctx, app, client, scope)
	if err != nil {
		return app, types.Authorization{}, errInvalidScope(err)
	}

	ttl, err := e.cfg.ExpiryTime(types.ClientCredentials)
	if err != nil {
		return app, types.Authorization{}, wrap(ServerError, err)
	}

	return app, types.Authorization{Client: client, Scope: effective, TTL: ttl}, nil
}

// AuthorizeCodeGrant exchanges a previously issued authorization code for
// an Authorization usable to mint tokens
// (http://tools.ietf.org/html/rfc6749#section-4.1.3). The code is revoked
// before this method returns: it is single use by construction of the
// Authorization handed back to the caller.
func (e *Engine) AuthorizeCodeGrant(ctx context.Context, app AppCtx, clientID, clientSecret, code, redirectURI string) (AppCtx, types.Authorization, error) {
	app, client, err := e.backend.AuthenticateClient(ctx, app, clientID, clientSecret)
	if err != nil {
		return app, types.Authorization{}, errInvalidClient(err)
	}

	app, err = e.backend.VerifyRedirectionURI(ctx, app, client, redirectURI)
	if err != nil {
		return app, types.Authorization{}, errInvalidGrant(err)
	}

	app, gc, err := e.VerifyAccessCodeForClient(ctx, app, code, client)
	if err != nil {
		return app, types.Authorization{}, err
	}

	// Best-effort: the code has already been resolved and is about to be
	// superseded by the Authorization below, so a revoke failure here is a
	// Backend bug worth logging but not worth crashing the authorization
	// server over.
	var revokeErr error
	app, revokeErr = e.backend.RevokeAccessCode(ctx, app, code)
	if revokeErr != nil {
		log.Printf("[WARN] authzcore: failed to revoke exchanged access code: %v", revokeErr)
	}

	ttl, err := e.cfg.ExpiryTime(types.PasswordCredentials)
	if err != nil {
		return app, types.Authorization{}, wrap(ServerError, err)
	}

	return app, types.Authorization{
		Client:        client,
		ResourceOwner: gc.ResourceOwner,
		Scope:         gc.Scope,
		TTL:           ttl,
	}, nil
}

// AuthorizeCodeRequest implements the authorization endpoint's half of the
// Authorization Code Grant: it authenticates the resource owner and mints
// an Authorization to pass to IssueCode
// (http://tools.ietf.org/html/rfc6749#section-4.1.1). Unlike
// AuthorizeCodeGrant, a redirection-URI mismatch here is UnauthorizedClient,
// not InvalidGrant — this is the RFC's distinction between the
// authorization and token endpoints.
func (e *Engine) AuthorizeCodeRequest(ctx context.Context, app AppCtx, clientID, redirectURI, username, password string, scope types.Scope) (AppCtx, types.Authorization, error) {
	app, client, err := e.backend.ClientIdentity(ctx, app, clientID)
	if err != nil {
		return app, types.Authorization{}, errUnauthorizedClient(err)
	}

	app, err = e.backend.VerifyRedirectionURI(ctx, app, client, redirectURI)
	if err != nil {
		return app, types.Authorization{}, errUnauthorizedClient(err)
	}

	app, owner, err := e.backend.AuthenticateResourceOwner(ctx, app, username, password)
	if err != nil {
		return app, types.Authorization{}, errAccessDenied(err)
	}

	app, effective, err := e.backend.VerifyResourceOwnerScope(ctx, app, owner, scope)
	if err != nil {
		return app, types.Authorization{}, errInvalidScope(err)
	}

	ttl, err := e.cfg.ExpiryTime(types.CodeGrant)
	if err != nil {
		return app, types.Authorization{}, wrap(ServerError, err)
	}

	return app, types.Authorization{Client: client, ResourceOwner: owner, Scope: effective, TTL: ttl}, nil
}

// IssueCode persists an authorization code for auth (built by
// AuthorizeCodeRequest) and shapes the authorization-endpoint response. The
// shaped response's access-token and refresh-token fields are empty; only
// AccessCode is populated.
func (e *Engine) IssueCode(ctx context.Context, app AppCtx, auth types.Authorization) (AppCtx, any, error) {
	gc := types.NewGrantContext(auth.Client, auth.ResourceOwner, e.clock.Now().Add(auth.TTL), auth.Scope)

	code, err := e.tokens.Generate(ctx, gc)
	if err != nil {
		return app, nil, wrap(ServerError, err)
	}

	app, err = e.backend.AssociateAccessCode(ctx, app, code, gc)
	if err != nil {
		return app, nil, wrap(ServerError, err)
	}

	resp, err := e.shaper.Shape(ctx, types.IssuanceResponse{
		TTL:           auth.TTL,
		ResourceOwner: auth.ResourceOwner,
		Scope:         auth.Scope,
		AccessCode:    code,
	})
	if err != nil {
		return app, nil, wrap(ServerError, err)
	}

	return app, resp, nil
}

// IssueToken mints and persists an access token for auth and shapes the
// token-endpoint response. No refresh token is issued; use
// IssueTokenAndRefresh when auth carries both a client and a resource
// owner and a refresh token is desired.
func (e *Engine) IssueToken(ctx context.Context, app AppCtx, auth types.Authorization) (AppCtx, any, error) {
	gc := types.NewGrantContext(auth.Client, auth.ResourceOwner, e.clock.Now().Add(auth.TTL), auth.Scope)

	token, err := e.tokens.Generate(ctx, gc)
	if err != nil {
		return app, nil, wrap(ServerError, err)
	}

	app, err = e.backend.AssociateAccessToken(ctx, app, token, gc)
	if err != nil {
		return app, nil, wrap(ServerError, err)
	}

	resp, err := e.shaper.Shape(ctx, types.IssuanceResponse{
		AccessToken:   token,
		TTL:           auth.TTL,
		ResourceOwner: auth.ResourceOwner,
		Scope:         auth.Scope,
	})
	if err != nil {
		return app, nil, wrap(ServerError, err)
	}

	return app, resp, nil
}

// IssueTokenAndRefresh mints and persists both an access token and a
// refresh token over the same GrantContext, in that order. auth must carry
// both a client and a resource owner; this is InvalidAuthorization's only
// source, and neither the TokenGenerator nor the Backend is ever called
// when the guard fails.
func (e *Engine) IssueTokenAndRefresh(ctx context.Context, app AppCtx, auth types.Authorization) (AppCtx, any, error) {
	if !auth.HasClient() || !auth.HasResourceOwner() {
		return app, nil, errInvalidAuthorization()
	}

	gc := types.NewGrantContext(auth.Client, auth.ResourceOwner, e.clock.Now().Add(auth.TTL), auth.Scope)

	accessToken, err := e.tokens.Generate(ctx, gc)
	if err != nil {
		return app, nil, wrap(ServerError, err)
	}

	refreshToken, err := e.tokens.Generate(ctx, gc)
	if err != nil {
		return app, nil, wrap(ServerError, err)
	}

	app, err = e.backend.AssociateAccessToken(ctx, app, accessToken, gc)
	if err != nil {
		return app, nil, wrap(ServerError, err)
	}

	app, err = e.backend.AssociateRefreshToken(ctx, app, refreshToken, gc)
	if err != nil {
		return app, nil, wrap(ServerError, err)
	}

	resp, err := e.shaper.Shape(ctx, types.IssuanceResponse{
		AccessToken:   accessToken,
		TTL:           auth.TTL,
		ResourceOwner: auth.ResourceOwner,
		Scope:         auth.Scope,
		RefreshToken:  refreshToken,
	})
	if err != nil {
		return app, nil, wrap(ServerError, err)
	}

	return app, resp, nil
}

// VerifyAccessCode resolves code and checks it has not yet expired. An
// expired code is revoked (best-effort) before InvalidGrant is returned.
//
// A resolved GrantContext missing its expiry is a Backend contract
// violation, not a flow outcome: this panics via xo.Panic rather than
// returning an error, so it can never be mistaken for one of the ten RFC
// error kinds.
func (e *Engine) VerifyAccessCode(ctx context.Context, app AppCtx, code string) (AppCtx, types.GrantContext, error) {
	app, gc, err := e.backend.ResolveAccessCode(ctx, app, code)
	if err != nil {
		return app, types.GrantContext{}, errInvalidGrant(err)
	}

	if !gc.WellFormed() {
		xo.Panic(xo.SF("authzcore: resolved access code has no expiry"))
	}

	if gc.ExpiresAt.After(e.clock.Now()) {
		return app, gc, nil
	}

	var revokeErr error
	app, revokeErr = e.backend.RevokeAccessCode(ctx, app, code)
	if revokeErr != nil {
		log.Printf("[WARN] authzcore: failed to revoke expired access code: %v", revokeErr)
	}

	return app, types.GrantContext{}, errInvalidGrant(nil)
}

// VerifyAccessCodeForClient is VerifyAccessCode plus the requirement that
// client equal the client the code was originally bound to. A mismatch, or
// a code that was never bound to a client, is InvalidGrant.
func (e *Engine) VerifyAccessCodeForClient(ctx context.Context, app AppCtx, code string, client types.Subject) (AppCtx, types.GrantContext, error) {
	app, gc, err := e.VerifyAccessCode(ctx, app, code)
	if err != nil {
		return app, types.GrantContext{}, err
	}

	if gc.Client == nil || !types.SubjectEqual(gc.Client, client) {
		return app, types.GrantContext{}, errInvalidGrant(nil)
	}

	return app, gc, nil
}

// VerifyAccessToken resolves token and checks it has not yet expired. An
// expired token is revoked (best-effort); both an expired and an
// unresolvable token are reported as AccessDenied — NOT InvalidGrant,
// unlike the code-verification path above.
// Token verification is a resource-server concern; code exchange is an
// authorization-server concern, and the RFC error vocabularies differ
// between the two.
func (e *Engine) VerifyAccessToken(ctx context.Context, app AppCtx, token string) (AppCtx, types.GrantContext, error) {
	app, gc, err := e.backend.ResolveAccessToken(ctx, app, token)
	if err != nil {
		return app, types.GrantContext{}, errAccessDenied(err)
	}

	if !gc.WellFormed() {
		xo.Panic(xo.SF("authzcore: resolved access token has no expiry"))
	}

	if gc.ExpiresAt.After(e.clock.Now()) {
		return app, gc, nil
	}

	var revokeErr error
	app, revokeErr = e.backend.RevokeAccessToken(ctx, app, token)
	if revokeErr != nil {
		log.Printf("[WARN] authzcore: failed to revoke expired access token: %v", revokeErr)
	}

	return app, types.GrantContext{}, errAccessDenied(nil)
}

// RefreshAccessToken implements the Refresh Token flow
// (http://tools.ietf.org/html/rfc6749#section-6). It may only be entered
// with a confidential client: client credentials are authenticated first,
// and must match the client the refresh token was originally issued to.
// The lifetime of the new access token is the PasswordCredentials
// lifetime, not whatever lifetime produced the original grant. No new
// refresh token is issued.
func (e *Engine) RefreshAccessToken(ctx context.Context, app AppCtx, clientID, clientSecret, refreshToken string, requestedScope types.Scope) (AppCtx, any, error) {
	app, client, err := e.backend.AuthenticateClient(ctx, app, clientID, clientSecret)
	if err != nil {
		return app, nil, errInvalidClient(err)
	}

	app, gc, err := e.backend.ResolveRefreshToken(ctx, app, refreshToken)
	if err != nil {
		return app, nil, errInvalidGrant(err)
	}

	if !gc.WellFormed() {
		xo.Panic(xo.SF("authzcore: resolved refresh token has no expiry"))
	}

	if !gc.ExpiresAt.After(e.clock.Now()) {
		var revokeErr error
		app, revokeErr = e.backend.RevokeRefreshToken(ctx, app, refreshToken)
		if revokeErr != nil {
			log.Printf("[WARN] authzcore: failed to revoke expired refresh token: %v", revokeErr)
		}
		return app, nil, errInvalidGrant(nil)
	}

	if gc.Client == nil || !types.SubjectEqual(gc.Client, client) {
		return app, nil, errInvalidGrant(nil)
	}

	app, effective, err := e.backend.VerifyScope(ctx, app, gc.Scope, requestedScope)
	if err != nil {
		return app, nil, errInvalidScope(err)
	}

	ttl, err := e.cfg.ExpiryTime(types.PasswordCredentials)
	if err != nil {
		return app, nil, wrap(ServerError, err)
	}

	auth := types.Authorization{
		Client:        client,
		ResourceOwner: gc.ResourceOwner,
		Scope:         effective,
		TTL:           ttl,
	}

	return e.IssueToken(ctx, app, auth)
}
