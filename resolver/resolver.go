// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package resolver defines the name-resolution contract used during
request construction and a few compositions of it: the process-wide
system resolver, a shared thread-safe cache, a static alias overlay,
and a resolver querying an explicit list of DNS servers over UDP.

Resolvers are composed at protocol-build time. For example, the
asynchronous DNS mode of a load test is a cache over a UDP resolver:

	r := resolver.NewCache(resolver.NewUDP([]string{"8.8.8.8:53"}))

All resolvers in this package are safe for concurrent use by many
virtual users.
*/
package resolver

import (
	"context"
	"net"
	"sync"

	"github.com/vuhttp/vuhttp/session"
)

// A Resolver maps a hostname to its addresses.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type Resolver interface {
	// LookupHost resolves host to one or more addresses.
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// A Factory builds a session-scoped resolver, supporting the
// per-virtual-user DNS mode where each user keeps its own resolution
// state.
type Factory func(s *session.Session) Resolver

// System resolves using the process-wide resolver from the net
// package.
var System Resolver = systemResolver{}

type systemResolver struct{}

func (systemResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	return net.DefaultResolver.LookupHost(ctx, host)
}

// A Cache memoizes successful lookups from an underlying resolver. It
// is shared by all virtual users for the duration of a test; the
// protocol-build warm-up pass populates it before load begins.
// Lookup failures are not cached.
type Cache struct {
	resolver Resolver
	mu       sync.RWMutex
	entries  map[string][]string
}

// NewCache returns an empty cache over the given resolver.
func NewCache(r Resolver) *Cache {
	return &Cache{
		resolver: r,
		entries:  make(map[string][]string),
	}
}

// LookupHost implements Resolver.
func (c *Cache) LookupHost(ctx context.Context, host string) ([]string, error) {
	c.mu.RLock()
	addrs, ok := c.entries[host]
	c.mu.RUnlock()
	if ok {
		return addrs, nil
	}
	addrs, err := c.resolver.LookupHost(ctx, host)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[host] = addrs
	c.mu.Unlock()
	return addrs, nil
}

// A Static resolver answers from a fixed host->addresses table and
// delegates everything else to a fallback resolver. It implements the
// static hostname aliases of the protocol DNS configuration.
type Static struct {
	aliases  map[string][]string
	fallback Resolver
}

// NewStatic returns a resolver answering from aliases and delegating
// unknown hosts to fallback.
func NewStatic(aliases map[string][]string, fallback Resolver) *Static {
	return &Static{aliases: aliases, fallback: fallback}
}

// Covers reports whether host is answered from the static table.
func (s *Static) Covers(host string) bool {
	_, ok := s.aliases[host]
	return ok
}

// LookupHost implements Resolver.
func (s *Static) LookupHost(ctx context.Context, host string) ([]string, error) {
	if addrs, ok := s.aliases[host]; ok {
		return addrs, nil
	}
	return s.fallback.LookupHost(ctx, host)
}
