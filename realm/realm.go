// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package realm describes HTTP authentication schemes for virtual-user
requests.

A Realm is a declarative descriptor built once at scenario-build time.
Resolving a realm against a session yields a per-session authorization
generator: basic realms resolve to the same Authorization value for
every session, while digest realms are re-derived per session from the
challenge previously stored in that session's state, so two sessions
holding different challenges produce different authorization values
from the same descriptor.
*/
package realm

import (
	"encoding/base64"
	"fmt"
	"net/url"

	"github.com/vuhttp/vuhttp/session"
)

// Kind discriminates the supported authentication schemes.
type Kind int

const (
	// Basic is RFC 7617 basic authentication.
	Basic Kind = iota
	// Digest is RFC 7616 digest authentication, bound to a challenge
	// stored in session state.
	Digest
)

// String returns the scheme name.
func (k Kind) String() string {
	switch k {
	case Basic:
		return "Basic"
	case Digest:
		return "Digest"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// A Realm describes an authentication scheme plus the credentials to
// authenticate with. Credentials are expressions so they may come from
// per-user test data. A Realm is immutable once constructed.
type Realm struct {
	Kind     Kind
	Username session.Expression[string]
	Password session.Expression[string]
}

// NewBasic returns a basic-auth realm descriptor.
func NewBasic(username, password session.Expression[string]) *Realm {
	return &Realm{Kind: Basic, Username: username, Password: password}
}

// NewDigest returns a digest-auth realm descriptor. Resolving it
// requires a challenge previously stored in the session under
// session.DigestChallengeAttribute.
func NewDigest(username, password session.Expression[string]) *Realm {
	return &Realm{Kind: Digest, Username: username, Password: password}
}

// A Resolved realm is the product of binding a Realm to one session.
// Authorization produces the Authorization header value for a request
// with the given method and target.
type Resolved struct {
	Kind          Kind
	Authorization func(method string, u *url.URL) (string, error)
}

// binder derives a session-bound Resolved realm from a descriptor.
type binder func(s *session.Session, r *Realm) (*Resolved, error)

// binders dispatches per realm kind.
var binders = map[Kind]binder{
	Basic:  bindBasic,
	Digest: bindDigest,
}

// Resolve binds the realm to the session, dispatching on the realm
// kind.
func (r *Realm) Resolve(s *session.Session) (*Resolved, error) {
	bind, ok := binders[r.Kind]
	if !ok {
		return nil, fmt.Errorf("realm: unsupported realm kind %v", r.Kind)
	}
	return bind(s, r)
}

func (r *Realm) credentials(s *session.Session) (username, password string, err error) {
	username, err = r.Username.Apply(s)
	if err != nil {
		return "", "", err
	}
	password, err = r.Password.Apply(s)
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}

func bindBasic(s *session.Session, r *Realm) (*Resolved, error) {
	username, password, err := r.credentials(s)
	if err != nil {
		return nil, err
	}
	// See RFC 7617 section 2. The credentials are not URL encoded.
	token := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	value := "Basic " + token
	return &Resolved{
		Kind: Basic,
		Authorization: func(string, *url.URL) (string, error) {
			return value, nil
		},
	}, nil
}

func bindDigest(s *session.Session, r *Realm) (*Resolved, error) {
	username, password, err := r.credentials(s)
	if err != nil {
		return nil, err
	}
	raw, ok := s.String(session.DigestChallengeAttribute)
	if !ok {
		return nil, fmt.Errorf("realm: no digest challenge stored in session under %q", session.DigestChallengeAttribute)
	}
	ch, err := ParseChallenge(raw)
	if err != nil {
		return nil, err
	}
	gen := &digestGenerator{
		username:  username,
		password:  password,
		challenge: ch,
	}
	return &Resolved{
		Kind:          Digest,
		Authorization: gen.authorization,
	}, nil
}
