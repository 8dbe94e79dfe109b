// This Source Code Form is subject to the terms of the Mozilla Public
// License, version 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package authzcore implements the core authorization engine described by
// http://tools.ietf.org/html/rfc6749: it validates credential-bearing
// requests and mints and verifies time-bounded authorization artifacts
// (authorization codes, access tokens, refresh tokens) for the Resource
// Owner Password Credentials, Client Credentials, Authorization Code and
// Implicit grants, plus the Refresh Token flow.
//
// The engine owns none of the state it operates on. Identity, scope policy
// and artifact persistence are delegated to a Backend; token material
// generation to a TokenGenerator; and response shaping to a ResponseShaper.
// Users of this package supply all three; the memstore, memgen and respond
// packages hold reference implementations.
package authzcore

import (
	"context"
	"time"

	"github.com/hooklift/authzcore/types"
)

// AppCtx is opaque, caller-owned state threaded linearly through every
// Backend call made within a single Engine operation. The engine never
// inspects it, never stores it past the call that returns it, and never
// reorders the calls that produce and consume it.
type AppCtx = any

// Backend is the persistence and identity store an Engine delegates to. All
// methods return the AppCtx to use for the next call in the chain; the
// engine never calls two Backend methods out of the order a single
// operation's steps specify.
type Backend interface {
	// AuthenticateResourceOwner validates resource-owner credentials and
	// returns its identity.
	AuthenticateResourceOwner(ctx context.Context, app AppCtx, username, password string) (AppCtx, types.Subject, error)

	// AuthenticateClient validates client credentials and returns its
	// identity.
	AuthenticateClient(ctx context.Context, app AppCtx, clientID, clientSecret string) (AppCtx, types.Subject, error)

	// ClientIdentity looks up a client by ID without validating a secret,
	// for use at the authorization endpoint.
	ClientIdentity(ctx context.Context, app AppCtx, clientID string) (AppCtx, types.Subject, error)

	// VerifyRedirectionURI checks uri against the redirection URI
	// registered for client.
	VerifyRedirectionURI(ctx context.Context, app AppCtx, client types.Subject, uri string) (AppCtx, error)

	// VerifyResourceOwnerScope checks requested against what owner may be
	// granted, returning the (possibly narrower) effective scope.
	VerifyResourceOwnerScope(ctx context.Context, app AppCtx, owner types.Subject, requested types.Scope) (AppCtx, types.Scope, error)

	// VerifyClientScope checks requested against what client may be
	// granted, returning the effective scope.
	VerifyClientScope(ctx context.Context, app AppCtx, client types.Subject, requested types.Scope) (AppCtx, types.Scope, error)

	// VerifyScope checks requested against a previously registered scope
	// (used on refresh, where narrowing but never widening is allowed),
	// returning the effective scope.
	VerifyScope(ctx context.Context, app AppCtx, registered, requested types.Scope) (AppCtx, types.Scope, error)

	// AssociateAccessCode persists gc under code.
	AssociateAccessCode(ctx context.Context, app AppCtx, code string, gc types.GrantContext) (AppCtx, error)

	// AssociateAccessToken persists gc under token.
	AssociateAccessToken(ctx context.Context, app AppCtx, token string, gc types.GrantContext) (AppCtx, error)

	// AssociateRefreshToken persists gc under token.
	AssociateRefreshToken(ctx context.Context, app AppCtx, token string, gc types.GrantContext) (AppCtx, error)

	// ResolveAccessCode retrieves the GrantContext associated with code.
	ResolveAccessCode(ctx context.Context, app AppCtx, code string) (AppCtx, types.GrantContext, error)

	// ResolveAccessToken retrieves the GrantContext associated with token.
	ResolveAccessToken(ctx context.Context, app AppCtx, token string) (AppCtx, types.GrantContext, error)

	// ResolveRefreshToken retrieves the GrantContext associated with token.
	ResolveRefreshToken(ctx context.Context, app AppCtx, token string) (AppCtx, types.GrantContext, error)

	// RevokeAccessCode invalidates code and whatever it resolves to.
	RevokeAccessCode(ctx context.Context, app AppCtx, code string) (AppCtx, error)

	// RevokeAccessToken invalidates token.
	RevokeAccessToken(ctx context.Context, app AppCtx, token string) (AppCtx, error)

	// RevokeRefreshToken invalidates token.
	RevokeRefreshToken(ctx context.Context, app AppCtx, token string) (AppCtx, error)
}

// TokenGenerator produces opaque token material for a freshly built
// GrantContext. Implementations must be collision-resistant and
// unpredictable to adversaries; they may be deterministic in tests.
type TokenGenerator interface {
	Generate(ctx context.Context, gc types.GrantContext) (string, error)
}

// Configuration resolves the two bindings and the three lifetimes an
// Engine needs. Engine resolves Backend and TokenGenerator once, at
// construction time; both must remain stable for the Engine's lifetime.
type Configuration interface {
	// ExpiryTime returns the non-negative lifetime configured for kind.
	ExpiryTime(kind types.GrantKind) (time.Duration, error)
	Backend() Backend
	TokenGenerator() TokenGenerator
}

// ResponseShaper turns a successful issuance output into a caller-visible
// response. It is opaque to the engine: Engine never inspects what Shape
// returns, only that it returned without error.
type ResponseShaper interface {
	Shape(ctx context.Context, resp types.IssuanceResponse) (any, error)
}
