// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package cookie defines the cookie store consulted during request
construction.

The store is a shared, thread-safe collaborator: many virtual users
read and write it concurrently. The session parameter lets
implementations partition cookies per user; the built-in in-memory
store keeps a single shared jar.
*/
package cookie

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/vuhttp/vuhttp/session"
)

// A Store holds cookies observed during a test. Implementations must
// be safe for concurrent use by multiple goroutines.
type Store interface {
	// Get returns the cookies to send to u, in the order they should
	// appear on the Cookie header.
	Get(s *session.Session, u *url.URL) []*http.Cookie

	// Set records cookies received from u.
	Set(s *session.Session, u *url.URL, cookies []*http.Cookie)
}

// NewInMemoryStore returns a store backed by a single shared
// net/http/cookiejar jar.
func NewInMemoryStore() Store {
	// cookiejar.New never fails with nil options.
	jar, _ := cookiejar.New(nil)
	return &memoryStore{jar: jar}
}

type memoryStore struct {
	jar http.CookieJar
}

func (m *memoryStore) Get(_ *session.Session, u *url.URL) []*http.Cookie {
	return m.jar.Cookies(u)
}

func (m *memoryStore) Set(_ *session.Session, u *url.URL, cookies []*http.Cookie) {
	m.jar.SetCookies(u, cookies)
}
