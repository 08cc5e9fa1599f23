// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package realm

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
)

// A Challenge is a parsed WWW-Authenticate digest challenge.
type Challenge struct {
	Realm     string
	Nonce     string
	Opaque    string
	Algorithm string
	Qop       string
}

// ParseChallenge parses the value of a WWW-Authenticate header
// carrying a digest challenge, with or without the leading "Digest"
// scheme token.
func ParseChallenge(header string) (*Challenge, error) {
	s := strings.TrimSpace(header)
	if rest, ok := cutScheme(s, "Digest"); ok {
		s = rest
	}
	ch := &Challenge{Algorithm: "MD5"}
	for _, part := range splitChallenge(s) {
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("realm: malformed digest challenge directive %q", part)
		}
		value = strings.Trim(strings.TrimSpace(value), `"`)
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "realm":
			ch.Realm = value
		case "nonce":
			ch.Nonce = value
		case "opaque":
			ch.Opaque = value
		case "algorithm":
			ch.Algorithm = value
		case "qop":
			// Servers may offer several; auth is the only one
			// supported here.
			ch.Qop = value
		}
	}
	if ch.Nonce == "" {
		return nil, fmt.Errorf("realm: digest challenge %q has no nonce", header)
	}
	return ch, nil
}

func cutScheme(s, scheme string) (string, bool) {
	if len(s) > len(scheme) && strings.EqualFold(s[:len(scheme)], scheme) && s[len(scheme)] == ' ' {
		return strings.TrimSpace(s[len(scheme):]), true
	}
	return s, false
}

// splitChallenge splits on commas not inside quoted strings.
func splitChallenge(s string) []string {
	var parts []string
	var b strings.Builder
	quoted := false
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			b.WriteRune(r)
		case r == ',' && !quoted:
			if p := strings.TrimSpace(b.String()); p != "" {
				parts = append(parts, p)
			}
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	if p := strings.TrimSpace(b.String()); p != "" {
		parts = append(parts, p)
	}
	return parts
}

// digestGenerator produces Authorization values bound to one session's
// stored challenge. The nonce count is per generator, matching the
// per-session lifetime of the challenge binding.
type digestGenerator struct {
	username  string
	password  string
	challenge *Challenge
	nc        atomic.Uint32
}

func (g *digestGenerator) authorization(method string, u *url.URL) (string, error) {
	ch := g.challenge
	if !strings.EqualFold(ch.Algorithm, "MD5") {
		return "", fmt.Errorf("realm: unsupported digest algorithm %q", ch.Algorithm)
	}
	if ch.Qop != "" && !hasQopAuth(ch.Qop) {
		return "", fmt.Errorf("realm: unsupported digest qop %q", ch.Qop)
	}
	uri := u.RequestURI()
	ha1 := md5Hex(g.username + ":" + ch.Realm + ":" + g.password)
	ha2 := md5Hex(method + ":" + uri)

	var response, cnonce string
	var nc uint32
	if ch.Qop == "" {
		response = md5Hex(ha1 + ":" + ch.Nonce + ":" + ha2)
	} else {
		nc = g.nc.Add(1)
		var err error
		cnonce, err = newCnonce()
		if err != nil {
			return "", err
		}
		response = md5Hex(fmt.Sprintf("%s:%s:%08x:%s:auth:%s", ha1, ch.Nonce, nc, cnonce, ha2))
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Digest username=%q, realm=%q, nonce=%q, uri=%q, response=%q`,
		g.username, ch.Realm, ch.Nonce, uri, response)
	if ch.Qop != "" {
		fmt.Fprintf(&b, `, qop=auth, nc=%08x, cnonce=%q`, nc, cnonce)
	}
	if ch.Opaque != "" {
		fmt.Fprintf(&b, `, opaque=%q`, ch.Opaque)
	}
	fmt.Fprintf(&b, `, algorithm=MD5`)
	return b.String(), nil
}

func hasQopAuth(qop string) bool {
	for _, q := range strings.Split(qop, ",") {
		if strings.TrimSpace(q) == "auth" {
			return true
		}
	}
	return false
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func newCnonce() (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("realm: generating cnonce: %w", err)
	}
	return hex.EncodeToString(buf[:]), nil
}
