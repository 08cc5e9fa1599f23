// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package vuhttp

import (
	"hash/fnv"
	"net"
	"net/url"
	"sync/atomic"

	"github.com/vuhttp/vuhttp/session"
)

// A Logger receives best-effort diagnostics from protocol
// finalization. It is out of the box compatible with log.Log in
// github.com/apex/log.
type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
}

// A BaseURLSelector picks the base URL to resolve a relative request
// URL against, from the configured candidates. It is session-scoped
// so per-user variation is possible, and must return false when
// candidates is empty.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type BaseURLSelector func(s *session.Session, candidates []*url.URL) (*url.URL, bool)

// A LocalAddrSelector picks the local address to bind a request to,
// from the configured pool. Same contract as BaseURLSelector.
type LocalAddrSelector func(s *session.Session, candidates []net.Addr) (net.Addr, bool)

// StickyBaseURL returns a selector that picks the same base URL for
// every evaluation of a given session, spreading sessions across
// candidates by hashing the session identity.
func StickyBaseURL() BaseURLSelector {
	return func(s *session.Session, candidates []*url.URL) (*url.URL, bool) {
		if len(candidates) == 0 {
			return nil, false
		}
		return candidates[stickyIndex(s, len(candidates))], true
	}
}

// RoundRobinBaseURL returns a selector that cycles through candidates
// across all sessions.
func RoundRobinBaseURL() BaseURLSelector {
	var next atomic.Uint64
	return func(_ *session.Session, candidates []*url.URL) (*url.URL, bool) {
		if len(candidates) == 0 {
			return nil, false
		}
		n := next.Add(1) - 1
		return candidates[n%uint64(len(candidates))], true
	}
}

// StickyLocalAddr returns a selector that binds every request of a
// given session to the same local address.
func StickyLocalAddr() LocalAddrSelector {
	return func(s *session.Session, candidates []net.Addr) (net.Addr, bool) {
		if len(candidates) == 0 {
			return nil, false
		}
		return candidates[stickyIndex(s, len(candidates))], true
	}
}

func stickyIndex(s *session.Session, n int) int {
	h := fnv.New32a()
	id := s.ID()
	h.Write(id[:])
	return int(h.Sum32() % uint32(n))
}
