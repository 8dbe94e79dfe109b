// This Source Code Form is subject to the terms of the Mozilla Public
// License, version 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package authzcore

import "github.com/256dpi/xo"

// Kind is one of the closed set of RFC 6749 error codes the engine may
// return. No other variants cross the engine boundary.
type Kind string

// Implements the error taxonomy required by the grants this engine
// supports, in accordance with:
// http://tools.ietf.org/html/rfc6749#section-4.1.2.1
// http://tools.ietf.org/html/rfc6749#section-4.2.2.1
// http://tools.ietf.org/html/rfc6749#section-5.2
const (
	// AccessDenied: the resource owner or authorization server denied the
	// request. Returned for bad resource-owner credentials and for an
	// expired/resolution-failed access token on the verify path.
	AccessDenied Kind = "access_denied"

	// InvalidClient: client authentication failed.
	InvalidClient Kind = "invalid_client"

	// InvalidGrant: the provided authorization grant (authorization code,
	// resource owner credentials) or refresh token is invalid, expired,
	// revoked, does not match the redirection URI used in the authorization
	// request, or was issued to another client.
	InvalidGrant Kind = "invalid_grant"

	// InvalidRequest: the request is missing a required parameter, includes
	// an invalid parameter value, or is otherwise malformed.
	InvalidRequest Kind = "invalid_request"

	// InvalidAuthorization: an Authorization was presented to
	// Engine.IssueTokenAndRefresh without both a client and a resource
	// owner bound to it.
	InvalidAuthorization Kind = "invalid_authorization"

	// InvalidScope: the requested scope is invalid, unknown, malformed, or
	// exceeds the scope previously granted.
	InvalidScope Kind = "invalid_scope"

	// UnauthorizedClient: the client is not authorized to request an
	// authorization grant using this method.
	UnauthorizedClient Kind = "unauthorized_client"

	// UnsupportedResponseType: the authorization server does not support
	// obtaining an authorization grant using this method.
	UnsupportedResponseType Kind = "unsupported_response_type"

	// ServerError: the authorization server encountered an unexpected
	// condition that prevented it from fulfilling the request.
	ServerError Kind = "server_error"

	// TemporarilyUnavailable: the authorization server is currently unable
	// to handle the request due to a temporary overloading or maintenance.
	TemporarilyUnavailable Kind = "temporarily_unavailable"
)

// Error is the only error type an Engine method ever returns (besides a
// panic on a malformed GrantContext, see VerifyAccessToken). Kind is part
// of the closed RFC enum above; Err, when present, is the wrapped Backend
// failure that caused it and is never of interest to a caller beyond
// logging — the RFC contract is carried entirely by Kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Err.Error()
}

// Unwrap exposes the underlying Backend failure to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// wrap builds an *Error of the given kind around a Backend failure, adding
// a stack trace via xo.W so the original call site survives past the
// RFC-kind boundary. err may be nil, e.g. when a step fails without the
// Backend itself having returned an error (a resolved/expired artifact).
func wrap(kind Kind, err error) *Error {
	if err == nil {
		return &Error{Kind: kind}
	}
	return &Error{Kind: kind, Err: xo.W(err)}
}

func errAccessDenied(err error) *Error       { return wrap(AccessDenied, err) }
func errInvalidClient(err error) *Error      { return wrap(InvalidClient, err) }
func errInvalidGrant(err error) *Error       { return wrap(InvalidGrant, err) }
func errInvalidScope(err error) *Error       { return wrap(InvalidScope, err) }
func errUnauthorizedClient(err error) *Error { return wrap(UnauthorizedClient, err) }
func errInvalidAuthorization() *Error        { return wrap(InvalidAuthorization, nil) }
