// This Source Code Form is subject to the terms of the Mozilla Public
// License, version 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package memgen collects reference authzcore.TokenGenerator
// implementations: OpaqueGenerator, which mints unstructured, unpredictable
// token strings; and JWTGenerator, which mints self-describing signed tokens.
package memgen

import (
	"context"

	"github.com/google/uuid"

	"github.com/hooklift/authzcore/types"
)

// OpaqueGenerator is a TokenGenerator that mints a random UUIDv4 per call
// and otherwise ignores the GrantContext it is given. It is the simplest
// TokenGenerator that satisfies the engine's collision-resistance and
// unpredictability requirement, at the cost of requiring every lookup to go
// through the Backend that associated it — there is nothing to decode.
type OpaqueGenerator struct{}

// Generate implements authzcore.TokenGenerator.
func (OpaqueGenerator) Generate(ctx context.Context, gc types.GrantContext) (string, error) {
	return uuid.NewString(), nil
}
