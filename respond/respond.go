// This Source Code Form is subject to the terms of the Mozilla Public
// License, version 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package respond is a reference authzcore.ResponseShaper producing the
// plain map[string]interface{} shape RFC 6749 section 5.1 describes for a
// successful token response, and the analogous shape for an authorization
// code response.
package respond

import (
	"context"
	"fmt"

	"github.com/hooklift/authzcore/types"
)

// JSON is a ResponseShaper that shapes an IssuanceResponse into the field
// names http://tools.ietf.org/html/rfc6749#section-5.1 specifies. It never
// fails: Shape's error return exists only to satisfy the interface.
type JSON struct{}

// Shape implements authzcore.ResponseShaper.
func (JSON) Shape(ctx context.Context, resp types.IssuanceResponse) (any, error) {
	body := map[string]any{}

	if resp.AccessToken != "" {
		body["access_token"] = resp.AccessToken
		body["token_type"] = "bearer"
		body["expires_in"] = int64(resp.TTL.Seconds())
	}

	if resp.RefreshToken != "" {
		body["refresh_token"] = resp.RefreshToken
	}

	if resp.AccessCode != "" {
		body["code"] = resp.AccessCode
	}

	if resp.Scope != nil {
		body["scope"] = fmt.Sprint(resp.Scope)
	}

	return body, nil
}
