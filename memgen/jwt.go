// This Source Code Form is subject to the terms of the Mozilla Public
// License, version 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package memgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/256dpi/xo"

	"github.com/hooklift/authzcore/types"
)

// claims is the token payload a JWT generator signs. It is deliberately
// minimal: the engine never decodes what a TokenGenerator produces, so
// anything beyond exp/sub/scope only matters to whatever resource server
// eventually verifies the signature out of band.
type claims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope,omitempty"`
}

// JWTGenerator is a TokenGenerator that mints a compact, HMAC-signed JSON
// Web Token encoding the GrantContext's subject, audience, scope and
// expiry. Unlike OpaqueGenerator, a token it mints is self-describing: a
// resource server holding Secret can verify one without calling back into
// the Backend that issued it.
type JWTGenerator struct {
	Secret []byte
	Issuer string
}

// Generate implements authzcore.TokenGenerator.
func (g JWTGenerator) Generate(ctx context.Context, gc types.GrantContext) (string, error) {
	subject := gc.ResourceOwner
	if subject == nil {
		subject = gc.Client
	}

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.Issuer,
			Subject:   fmt.Sprint(subject),
			ExpiresAt: jwt.NewNumericDate(gc.ExpiresAt),
		},
		Scope: scopeString(gc.Scope),
	}

	if gc.Client != nil {
		c.Audience = jwt.ClaimStrings{fmt.Sprint(gc.Client)}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)

	signed, err := token.SignedString(g.Secret)
	if err != nil {
		return "", xo.W(err)
	}
	return signed, nil
}

func scopeString(scope types.Scope) string {
	if scope == nil {
		return ""
	}
	if ss, ok := scope.([]string); ok {
		return strings.Join(ss, " ")
	}
	return fmt.Sprint(scope)
}
