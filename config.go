// This Source Code Form is subject to the terms of the Mozilla Public
// License, version 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package authzcore

import (
	"time"

	"github.com/hooklift/authzcore/types"
)

// StaticConfiguration is a Configuration backed by three fixed durations
// and a fixed Backend/TokenGenerator pair. It is the reference
// Configuration: no environment parsing, no file format, just the three
// lifetimes and two bindings New needs.
type StaticConfiguration struct {
	PasswordCredentialsTTL time.Duration
	ClientCredentialsTTL   time.Duration
	CodeGrantTTL           time.Duration

	BackendImpl        Backend
	TokenGeneratorImpl TokenGenerator
}

// ExpiryTime implements Configuration.
func (c StaticConfiguration) ExpiryTime(kind types.GrantKind) (time.Duration, error) {
	switch kind {
	case types.PasswordCredentials:
		return c.PasswordCredentialsTTL, nil
	case types.ClientCredentials:
		return c.ClientCredentialsTTL, nil
	case types.CodeGrant:
		return c.CodeGrantTTL, nil
	default:
		return 0, wrap(ServerError, errUnknownGrantKind(kind))
	}
}

// Backend implements Configuration.
func (c StaticConfiguration) Backend() Backend {
	return c.BackendImpl
}

// TokenGenerator implements Configuration.
func (c StaticConfiguration) TokenGenerator() TokenGenerator {
	return c.TokenGeneratorImpl
}

type unknownGrantKindError struct{ kind types.GrantKind }

func errUnknownGrantKind(kind types.GrantKind) error {
	return &unknownGrantKindError{kind: kind}
}

func (e *unknownGrantKindError) Error() string {
	return "authzcore: unknown grant kind: " + string(e.kind)
}
