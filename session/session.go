// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package session

import (
	"github.com/google/uuid"
)

// Well-known attribute keys read by the request-construction core.
// Upstream steps store values under these keys; the core never writes
// them.
const (
	// RefererAttribute holds the URL of the previous main request,
	// used for automatic Referer injection.
	RefererAttribute = "vuhttp.referer"

	// DigestChallengeAttribute holds the WWW-Authenticate challenge
	// received from the server, used to derive digest authorization.
	DigestChallengeAttribute = "vuhttp.digest.challenge"
)

// A Session holds the key/value state of one virtual user.
//
// A Session is exclusively owned by its virtual user. It is mutated by
// scenario steps between requests and read by request expressions
// during evaluation. It is not safe for concurrent use.
type Session struct {
	id       uuid.UUID
	scenario string
	attrs    map[string]any
}

// New creates an empty session for a new virtual user of the named
// scenario.
func New(scenario string) *Session {
	return &Session{
		id:       uuid.New(),
		scenario: scenario,
		attrs:    make(map[string]any),
	}
}

// ID returns the unique identity of the virtual user owning the
// session. Sticky selection policies key off this value.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Scenario returns the name of the scenario the virtual user is
// executing.
func (s *Session) Scenario() string {
	return s.scenario
}

// Get returns the attribute stored under key.
func (s *Session) Get(key string) (any, bool) {
	v, ok := s.attrs[key]
	return v, ok
}

// String returns the attribute stored under key if it is a string.
func (s *Session) String(key string) (string, bool) {
	v, ok := s.attrs[key]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// Set stores an attribute. Set is for upstream scenario steps and
// tests; the request-construction core never mutates a session.
func (s *Session) Set(key string, value any) {
	s.attrs[key] = value
}

// Unset removes an attribute.
func (s *Session) Unset(key string) {
	delete(s.attrs, key)
}

// Len returns the number of attributes stored in the session.
func (s *Session) Len() int {
	return len(s.attrs)
}
