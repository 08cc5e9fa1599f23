// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package session contains the two types everything else in vuhttp is
built from: Session, the per-virtual-user state carried between test
steps, and Expression, a deferred Session-dependent computation.

A Session belongs to exactly one virtual user. Upstream scenario steps
mutate it between requests; the request-construction core only reads
it. A Session must never be shared between virtual users and is not
safe for concurrent mutation.

An Expression is a pure mapping from a Session to a value or an error.
It is re-evaluated every time it is needed and closes only over
immutable configuration, so a single Expression value may be applied
concurrently from many virtual users.

Expressions come in two flavors. Constant wraps a value known at
scenario-build time:

	name := session.Constant("login")

Dynamic wraps a computation that reads per-user state:

	name := session.Dynamic(func(s *session.Session) (string, error) {
		page, _ := s.String("page")
		return "browse " + page, nil
	})

Builders use StaticValue to detect constants and precompute everything
that does not depend on runtime session state.
*/
package session
