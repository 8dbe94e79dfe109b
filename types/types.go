// Package types defines the data shapes the authorization engine passes
// to and receives from its Backend, TokenGenerator and ResponseShaper
// collaborators.
package types

import "time"

// Subject is an opaque client or resource-owner identity. The engine never
// constructs, inspects or parses one; it only ever passes back whatever a
// Backend handed it, and compares two Subjects for equality when a flow
// requires it (see SubjectEqual).
type Subject any

// Scope is an opaque authorization scope. A Backend may represent it as an
// ordered sequence of scope tokens (e.g. []string) or as a single opaque
// binary value; the engine treats it as inert data and never parses it.
type Scope any

// SubjectEqual reports whether two Subjects represent the same client or
// resource owner, by the underlying type's own equality. Subjects backed by
// an uncomparable type (a slice, map or func) are never equal to anything,
// including themselves, rather than panicking.
func SubjectEqual(a, b Subject) (equal bool) {
	defer func() {
		if recover() != nil {
			equal = false
		}
	}()
	return a == b
}

// GrantKind identifies which configured lifetime applies to an Authorization.
type GrantKind string

// The three lifetimes a Configuration must resolve. Implicit-grant and
// authorization-code-exchange Authorizations reuse PasswordCredentials,
// per the flows documented on Engine.
const (
	PasswordCredentials GrantKind = "password_credentials"
	ClientCredentials   GrantKind = "client_credentials"
	CodeGrant           GrantKind = "code_grant"
)

// Authorization is the engine's intermediate value between credential
// validation and artifact issuance. It is constructed by one of Engine's
// Authorize* methods and consumed exactly once by an Issue* method; nothing
// in this package persists or caches it.
type Authorization struct {
	// Client is the authenticated (or identified) client, or nil for a
	// pure resource-owner authorization (e.g. the public-client password
	// grant).
	Client Subject
	// ResourceOwner is the authenticated resource owner, or nil for the
	// client credentials grant.
	ResourceOwner Subject
	// Scope is the effective scope returned by whichever Backend
	// scope-verifier ran, never the scope as originally requested.
	Scope Scope
	// TTL is the artifact's relative lifetime as of construction.
	TTL time.Duration
}

// HasClient reports whether a is bound to a client.
func (a Authorization) HasClient() bool {
	return a.Client != nil
}

// HasResourceOwner reports whether a is bound to a resource owner.
func (a Authorization) HasResourceOwner() bool {
	return a.ResourceOwner != nil
}

// GrantContext is the record persisted alongside every issued artifact
// (authorization code, access token, refresh token). Unlike Authorization's
// relative TTL, ExpiresAt is absolute: it is the only time representation a
// Backend ever has to persist.
type GrantContext struct {
	Client        Subject
	ResourceOwner Subject
	ExpiresAt     time.Time
	Scope         Scope
}

// NewGrantContext builds the context to associate with a freshly issued
// artifact. expiresAt must already be absolute (clock.Now() + ttl).
func NewGrantContext(client, resourceOwner Subject, expiresAt time.Time, scope Scope) GrantContext {
	return GrantContext{
		Client:        client,
		ResourceOwner: resourceOwner,
		ExpiresAt:     expiresAt,
		Scope:         scope,
	}
}

// WellFormed reports whether gc looks like something Engine itself built,
// as opposed to a zero value a buggy Backend resolved without ever having
// set an expiry. A Backend is expected to return exactly what it was given
// in Associate*; returning anything else is a Backend contract violation,
// not a flow outcome (see Engine's fatal-on-malformed-context behavior).
func (gc GrantContext) WellFormed() bool {
	return !gc.ExpiresAt.IsZero()
}

// IssuanceResponse is the successful output of an Issue* or
// RefreshAccessToken call, handed to a ResponseShaper to turn into a
// caller-visible response. AccessCode is only set by IssueCode;
// RefreshToken is only set by IssueTokenAndRefresh.
type IssuanceResponse struct {
	AccessToken   string
	TTL           time.Duration
	ResourceOwner Subject
	Scope         Scope
	RefreshToken  string
	AccessCode    string
}
