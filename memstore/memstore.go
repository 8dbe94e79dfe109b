// This Source Code Form is subject to the terms of the Mozilla Public
// License, version 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package memstore is a reference authzcore.Backend over in-process maps. It
// exists for tests and examples; it is not meant to back a real
// authorization server, since nothing it holds survives a restart.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/hooklift/authzcore/types"
)

// Client is a registered OAuth client.
type Client struct {
	ID          string
	Secret      string
	RedirectURI string
	Scopes      []string
}

// ResourceOwner is a registered end user.
type ResourceOwner struct {
	Username string
	Password string
	Scopes   []string
}

// Store is a mutex-guarded, map-backed authzcore.Backend. The zero value is
// not usable; build one with New.
//
// Store never uses the AppCtx it is handed for anything: it is returned to
// the caller unchanged from every method. A Backend under real load would
// typically thread a request-scoped value (a database transaction, a
// request ID) through it instead.
type Store struct {
	mu      sync.RWMutex
	clients map[string]Client
	owners  map[string]ResourceOwner
	codes   map[string]types.GrantContext
	tokens  map[string]types.GrantContext
	refresh map[string]types.GrantContext
}

// New builds an empty Store.
func New() *Store {
	return &Store{
		clients: make(map[string]Client),
		owners:  make(map[string]ResourceOwner),
		codes:   make(map[string]types.GrantContext),
		tokens:  make(map[string]types.GrantContext),
		refresh: make(map[string]types.GrantContext),
	}
}

// AddClient registers c, keyed by c.ID.
func (s *Store) AddClient(c Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.ID] = c
}

// AddResourceOwner registers o, keyed by o.Username.
func (s *Store) AddResourceOwner(o ResourceOwner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[o.Username] = o
}

// ParseScope splits a space-delimited scope string into the []string
// representation this Store's scope verifiers expect.
func ParseScope(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}

func asScope(scope types.Scope) []string {
	if scope == nil {
		return nil
	}
	ss, _ := scope.([]string)
	return ss
}

// narrow returns the subset of requested also present in registered, sorted,
// or an error if requested asks for anything registered does not grant. An
// empty requested returns all of registered, sorted.
func narrow(registered, requested []string) ([]string, error) {
	allowed := make(map[string]bool, len(registered))
	for _, s := range registered {
		allowed[s] = true
	}

	out := make([]string, 0, len(requested))
	for _, s := range requested {
		if !allowed[s] {
			return nil, errScopeNotGranted(s)
		}
		out = append(out, s)
	}

	if len(requested) == 0 {
		out = append(out, registered...)
	}

	sort.Strings(out)
	return out, nil
}

type scopeError struct{ scope string }

func errScopeNotGranted(scope string) error { return &scopeError{scope: scope} }
func (e *scopeError) Error() string         { return "scope not granted: " + e.scope }

type notFoundError struct{ what string }

func errNotFound(what string) error    { return &notFoundError{what: what} }
func (e *notFoundError) Error() string { return e.what + " not found" }

// AuthenticateResourceOwner implements authzcore.Backend.
func (s *Store) AuthenticateResourceOwner(ctx context.Context, app any, username, password string) (any, types.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owner, ok := s.owners[username]
	if !ok || owner.Password != password {
		return app, nil, errNotFound("resource owner")
	}
	return app, username, nil
}

// AuthenticateClient implements authzcore.Backend.
func (s *Store) AuthenticateClient(ctx context.Context, app any, clientID, clientSecret string) (any, types.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, ok := s.clients[clientID]
	if !ok || client.Secret != clientSecret {
		return app, nil, errNotFound("client")
	}
	return app, clientID, nil
}

// ClientIdentity implements authzcore.Backend.
func (s *Store) ClientIdentity(ctx context.Context, app any, clientID string) (any, types.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.clients[clientID]; !ok {
		return app, nil, errNotFound("client")
	}
	return app, clientID, nil
}

// VerifyRedirectionURI implements authzcore.Backend.
func (s *Store) VerifyRedirectionURI(ctx context.Context, app any, client types.Subject, uri string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, _ := client.(string)
	c, ok := s.clients[id]
	if !ok || c.RedirectURI != uri {
		return app, errNotFound("redirection uri")
	}
	return app, nil
}

// VerifyResourceOwnerScope implements authzcore.Backend.
func (s *Store) VerifyResourceOwnerScope(ctx context.Context, app any, owner types.Subject, requested types.Scope) (any, types.Scope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	username, _ := owner.(string)
	o, ok := s.owners[username]
	if !ok {
		return app, nil, errNotFound("resource owner")
	}

	effective, err := narrow(o.Scopes, asScope(requested))
	if err != nil {
		return app, nil, err
	}
	return app, types.Scope(effective), nil
}

// VerifyClientScope implements authzcore.Backend.
func (s *Store) VerifyClientScope(ctx context.Context, app any, client types.Subject, requested types.Scope) (any, types.Scope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, _ := client.(string)
	c, ok := s.clients[id]
	if !ok {
		return app, nil, errNotFound("client")
	}

	effective, err := narrow(c.Scopes, asScope(requested))
	if err != nil {
		return app, nil, err
	}
	return app, types.Scope(effective), nil
}

// VerifyScope implements authzcore.Backend.
func (s *Store) VerifyScope(ctx context.Context, app any, registered, requested types.Scope) (any, types.Scope, error) {
	effective, err := narrow(asScope(registered), asScope(requested))
	if err != nil {
		return app, nil, err
	}
	return app, types.Scope(effective), nil
}

// AssociateAccessCode implements authzcore.Backend.
func (s *Store) AssociateAccessCode(ctx context.Context, app any, code string, gc types.GrantContext) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[code] = gc
	return app, nil
}

// AssociateAccessToken implements authzcore.Backend.
func (s *Store) AssociateAccessToken(ctx context.Context, app any, token string, gc types.GrantContext) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = gc
	return app, nil
}

// AssociateRefreshToken implements authzcore.Backend.
func (s *Store) AssociateRefreshToken(ctx context.Context, app any, token string, gc types.GrantContext) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[token] = gc
	return app, nil
}

// ResolveAccessCode implements authzcore.Backend.
func (s *Store) ResolveAccessCode(ctx context.Context, app any, code string) (any, types.GrantContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gc, ok := s.codes[code]
	if !ok {
		return app, types.GrantContext{}, errNotFound("access code")
	}
	return app, gc, nil
}

// ResolveAccessToken implements authzcore.Backend.
func (s *Store) ResolveAccessToken(ctx context.Context, app any, token string) (any, types.GrantContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gc, ok := s.tokens[token]
	if !ok {
		return app, types.GrantContext{}, errNotFound("access token")
	}
	return app, gc, nil
}

// ResolveRefreshToken implements authzcore.Backend.
func (s *Store) ResolveRefreshToken(ctx context.Context, app any, token string) (any, types.GrantContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gc, ok := s.refresh[token]
	if !ok {
		return app, types.GrantContext{}, errNotFound("refresh token")
	}
	return app, gc, nil
}

// RevokeAccessCode implements authzcore.Backend.
func (s *Store) RevokeAccessCode(ctx context.Context, app any, code string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, code)
	return app, nil
}

// RevokeAccessToken implements authzcore.Backend.
func (s *Store) RevokeAccessToken(ctx context.Context, app any, token string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return app, nil
}

// RevokeRefreshToken implements authzcore.Backend.
func (s *Store) RevokeRefreshToken(ctx context.Context, app any, token string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refresh, token)
	return app, nil
}

// NewID returns fresh, unpredictable token material. It is exported for
// callers that want Store-compatible IDs outside a TokenGenerator, e.g. to
// seed a Client with a generated secret.
func NewID() string {
	return uuid.NewString()
}
