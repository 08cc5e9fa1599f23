// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package session

import "fmt"

// An Expression is a deferred, session-dependent computation.
//
// Expressions are pure and stateless: the same expression applied to
// the same session always produces the same result, and a single
// expression value may be applied concurrently from many virtual
// users because it closes only over immutable configuration.
//
// Failures are always returned as values, never panicked, so the
// per-user execution loop can record the failure and continue with
// the next iteration.
type Expression[T any] interface {
	// Apply evaluates the expression against the session.
	Apply(s *Session) (T, error)
}

// Constant returns an expression whose value is known at
// scenario-build time. Builders detect constants with StaticValue and
// precompute work that does not depend on runtime session state.
func Constant[T any](v T) Expression[T] {
	return constant[T]{v: v}
}

type constant[T any] struct {
	v T
}

func (c constant[T]) Apply(_ *Session) (T, error) {
	return c.v, nil
}

// Func adapts an ordinary function to the Expression interface.
type Func[T any] func(s *Session) (T, error)

// Apply implements Expression.
func (f Func[T]) Apply(s *Session) (T, error) {
	return f(s)
}

// Dynamic returns an expression evaluated against the session on
// every application.
func Dynamic[T any](f func(s *Session) (T, error)) Expression[T] {
	return Func[T](f)
}

// StaticValue reports whether e is a constant expression and, if so,
// returns its value.
func StaticValue[T any](e Expression[T]) (T, bool) {
	if c, ok := e.(constant[T]); ok {
		return c.v, true
	}
	var zero T
	return zero, false
}

// Attribute returns an expression producing the string attribute
// stored under key, failing if the attribute is absent or not a
// string.
func Attribute(key string) Expression[string] {
	return Func[string](func(s *Session) (string, error) {
		v, ok := s.String(key)
		if !ok {
			return "", fmt.Errorf("session: undefined attribute %q", key)
		}
		return v, nil
	})
}
