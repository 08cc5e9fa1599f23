// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package vuhttp

import (
	"context"
	"crypto/tls"
	"fmt"
	"maps"
	"net"
	"net/url"
	"regexp"
	"slices"
	"time"

	"github.com/apex/log"

	"github.com/vuhttp/vuhttp/cookie"
	"github.com/vuhttp/vuhttp/realm"
	"github.com/vuhttp/vuhttp/resolver"
	"github.com/vuhttp/vuhttp/session"
	"github.com/vuhttp/vuhttp/sign"
)

// warmUpTimeout bounds one warm-up lookup during Build.
const warmUpTimeout = 5 * time.Second

// A Builder accumulates a protocol configuration. Builders have value
// semantics: every mutator returns a new Builder and never modifies
// the receiver or any previously returned Builder, so intermediate
// builders can be kept and branched freely.
//
// Mutators validate their arguments and panic with a descriptive
// message on malformed input. A configuration error is a programming
// error in the scenario and must abort scenario construction rather
// than surface per request at load time.
type Builder struct {
	p Protocol
}

// NewBuilder starts a protocol configuration with the given HTTP base
// URLs. Panics if any URL is malformed.
func NewBuilder(baseURLs ...string) Builder {
	var b Builder
	b.p.Engine.EnableSNI = true
	b.p.Engine.ALPNAvailable = true
	b.p.Engine.MaxConnsPerHost = 6
	b.p.Request.Caching = true
	b.p.Response.FollowRedirects = true
	b.p.Response.MaxRedirects = 20
	return b.BaseURLs(baseURLs...)
}

// BaseURLs appends HTTP base URLs. Panics if any URL is malformed.
func (b Builder) BaseURLs(baseURLs ...string) Builder {
	b.p.BaseURLs = append(slices.Clone(b.p.BaseURLs), mustParseURLs("base URL", baseURLs)...)
	return b
}

// Header adds a default header applied to every request unless the
// request overrides it or opts out of protocol headers. Names are
// case-insensitive-unique; setting an existing name replaces its
// value but keeps the original casing.
func (b Builder) Header(name string, value session.Expression[string]) Builder {
	b.p.Request.Headers = SetHeader(b.p.Request.Headers, name, value)
	return b
}

// StaticHeader adds a default header with a fixed value.
func (b Builder) StaticHeader(name, value string) Builder {
	return b.Header(name, session.Constant(value))
}

// AutoReferer controls automatic Referer injection from session
// state.
func (b Builder) AutoReferer(enabled bool) Builder {
	b.p.Request.AutoReferer = enabled
	return b
}

// AutoOrigin controls automatic Origin injection.
func (b Builder) AutoOrigin(enabled bool) Builder {
	b.p.Request.AutoOrigin = enabled
	return b
}

// Realm sets the default authentication realm.
func (b Builder) Realm(r session.Expression[*realm.Realm]) Builder {
	b.p.Request.Realm = r
	return b
}

// BasicAuth sets a constant basic-auth default realm.
func (b Builder) BasicAuth(username, password string) Builder {
	return b.Realm(session.Constant(realm.NewBasic(
		session.Constant(username), session.Constant(password))))
}

// Sign sets the default request signature calculator.
func (b Builder) Sign(c sign.Calculator) Builder {
	b.p.Request.Signature = c
	return b
}

// DisableURLEncoding skips URL encoding of resolved URIs by default.
func (b Builder) DisableURLEncoding(disabled bool) Builder {
	b.p.Request.DisableURLEncoding = disabled
	return b
}

// Caching controls whether response caching headers are honored.
func (b Builder) Caching(enabled bool) Builder {
	b.p.Request.Caching = enabled
	return b
}

// SilentResources marks requests whose URL matches any of the given
// predicates as silent.
func (b Builder) SilentResources(matchers ...func(u *url.URL) bool) Builder {
	b.p.Request.SilentResources = append(slices.Clone(b.p.Request.SilentResources), matchers...)
	return b
}

// ShareConnections pools connections across virtual users.
func (b Builder) ShareConnections(enabled bool) Builder {
	b.p.Engine.ShareConnections = enabled
	return b
}

// MaxConnsPerHost caps concurrent connections per remote host.
func (b Builder) MaxConnsPerHost(n int) Builder {
	b.p.Engine.MaxConnsPerHost = n
	return b
}

// LocalAddresses sets the pool of local IP addresses requests may be
// bound to. Panics if any address is not a valid IP.
func (b Builder) LocalAddresses(addrs ...string) Builder {
	pool := make([]net.Addr, 0, len(addrs))
	for _, a := range addrs {
		ip := net.ParseIP(a)
		if ip == nil {
			panic(fmt.Sprintf("vuhttp: invalid local address %q", a))
		}
		pool = append(pool, &net.TCPAddr{IP: ip})
	}
	b.p.Engine.LocalAddresses = append(slices.Clone(b.p.Engine.LocalAddresses), pool...)
	return b
}

// PerUserKeyManager supplies per-user client certificates.
func (b Builder) PerUserKeyManager(f func(s *session.Session) (*tls.Certificate, error)) Builder {
	b.p.Engine.PerUserKeyManager = f
	return b
}

// SNI controls whether TLS handshakes carry the server name.
func (b Builder) SNI(enabled bool) Builder {
	b.p.Engine.EnableSNI = enabled
	return b
}

// ALPN records whether the active TLS provider supports protocol
// negotiation.
func (b Builder) ALPN(available bool) Builder {
	b.p.Engine.ALPNAvailable = available
	return b
}

// EnableHTTP2 turns on HTTP/2. Panics unless SNI is enabled and the
// TLS provider supports ALPN: degrading silently to HTTP/1.1 would
// invalidate the test.
func (b Builder) EnableHTTP2() Builder {
	if !b.p.Engine.EnableSNI {
		panic("vuhttp: HTTP/2 requires SNI to be enabled")
	}
	if !b.p.Engine.ALPNAvailable {
		panic("vuhttp: HTTP/2 requires a TLS provider with ALPN support")
	}
	b.p.Engine.EnableHTTP2 = true
	return b
}

// HTTP2PriorKnowledge records remotes whose protocol is already
// known, keyed by "host:port" or "host" (default port 443): true for
// HTTP/2 without negotiation, false for HTTP/1.1. Panics on a
// malformed entry.
func (b Builder) HTTP2PriorKnowledge(remotes map[string]bool) Builder {
	m := maps.Clone(b.p.Engine.HTTP2PriorKnowledge)
	if m == nil {
		m = make(map[Remote]bool, len(remotes))
	}
	for s, mode := range remotes {
		r, err := ParseRemote(s)
		if err != nil {
			panic(fmt.Sprintf("vuhttp: malformed prior-knowledge remote %q: %s", s, err))
		}
		m[r] = mode
	}
	b.p.Engine.HTTP2PriorKnowledge = m
	return b
}

// FollowRedirects controls redirect following downstream.
func (b Builder) FollowRedirects(enabled bool) Builder {
	b.p.Response.FollowRedirects = enabled
	return b
}

// MaxRedirects caps the redirect chain length.
func (b Builder) MaxRedirects(n int) Builder {
	b.p.Response.MaxRedirects = n
	return b
}

// StrictRedirectPolicy preserves method and body on 301/302
// redirects.
func (b Builder) StrictRedirectPolicy(enabled bool) Builder {
	b.p.Response.StrictRedirectPolicy = enabled
	return b
}

// Check appends response checks applied to every response.
func (b Builder) Check(checks ...ResponseCheck) Builder {
	b.p.Response.Checks = append(slices.Clone(b.p.Response.Checks), checks...)
	return b
}

// TransformResponse sets the response transformer.
func (b Builder) TransformResponse(t ResponseTransformer) Builder {
	b.p.Response.Transformer = t
	return b
}

// InferHTMLResources fetches resources embedded in HTML responses,
// optionally filtered.
func (b Builder) InferHTMLResources(filter func(u *url.URL) bool) Builder {
	b.p.Response.InferHTMLResources = true
	b.p.Response.InferredResourceFilter = filter
	return b
}

// ResourceNaming names inferred resource requests in reports.
func (b Builder) ResourceNaming(naming func(u *url.URL) string) Builder {
	b.p.Response.ResourceNaming = naming
	return b
}

// Proxy routes requests through the given proxy server. Panics if the
// URL is malformed.
func (b Builder) Proxy(rawURL string) Builder {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		panic(fmt.Sprintf("vuhttp: invalid proxy URL %q", rawURL))
	}
	b.p.Proxy.URL = u
	return b
}

// ProxyExceptions lists hostnames reached directly even when a proxy
// is configured.
func (b Builder) ProxyExceptions(hosts ...string) Builder {
	m := maps.Clone(b.p.Proxy.Exceptions)
	if m == nil {
		m = make(map[string]struct{}, len(hosts))
	}
	for _, h := range hosts {
		m[h] = struct{}{}
	}
	b.p.Proxy.Exceptions = m
	return b
}

// SystemDNS resolves hostnames through the system resolver, cached
// and shared by all users. This is the default. DNS mode setters are
// alternatives; the last one called wins.
func (b Builder) SystemDNS() Builder {
	b.p.DNS.Mode = DNSSystem
	b.p.DNS.Servers = nil
	b.p.DNS.PerUser = nil
	return b
}

// AsyncDNS resolves hostnames through the given DNS servers over UDP.
// Servers are "host" or "host:port" (default port 53). Panics on a
// malformed address. Last DNS mode setter wins.
func (b Builder) AsyncDNS(servers ...string) Builder {
	parsed := make([]string, 0, len(servers))
	for _, s := range servers {
		addr, err := parseDNSServer(s)
		if err != nil {
			panic(fmt.Sprintf("vuhttp: %s", err))
		}
		parsed = append(parsed, addr)
	}
	b.p.DNS.Mode = DNSAsync
	b.p.DNS.Servers = parsed
	b.p.DNS.PerUser = nil
	return b
}

// PerUserDNS gives each virtual user its own resolver built by f.
// Last DNS mode setter wins.
func (b Builder) PerUserDNS(f resolver.Factory) Builder {
	b.p.DNS.Mode = DNSPerUser
	b.p.DNS.PerUser = f
	b.p.DNS.Servers = nil
	return b
}

// HostAlias statically maps a hostname to fixed addresses, bypassing
// resolution for that host.
func (b Builder) HostAlias(host string, addrs ...string) Builder {
	m := maps.Clone(b.p.DNS.Aliases)
	if m == nil {
		m = make(map[string][]string, 1)
	}
	m[host] = slices.Clone(addrs)
	b.p.DNS.Aliases = m
	return b
}

// WsBaseURLs appends websocket base URLs. Panics if any URL is
// malformed.
func (b Builder) WsBaseURLs(baseURLs ...string) Builder {
	b.p.Ws.BaseURLs = append(slices.Clone(b.p.Ws.BaseURLs), mustParseURLs("websocket base URL", baseURLs)...)
	return b
}

// SSEBaseURLs appends SSE base URLs. Panics if any URL is malformed.
func (b Builder) SSEBaseURLs(baseURLs ...string) Builder {
	b.p.Ws.SSEBaseURLs = append(slices.Clone(b.p.Ws.SSEBaseURLs), mustParseURLs("SSE base URL", baseURLs)...)
	return b
}

// WsMaxReconnects caps automatic websocket reconnection attempts.
func (b Builder) WsMaxReconnects(n int) Builder {
	b.p.Ws.MaxReconnects = n
	return b
}

// WsBufferSizes sets the websocket read and write buffer sizes in
// bytes.
func (b Builder) WsBufferSizes(read, write int) Builder {
	b.p.Ws.ReadBufferSize = read
	b.p.Ws.WriteBufferSize = write
	return b
}

// WsAutoReply answers inbound text messages matching pattern with
// reply. Panics if pattern is not a valid regular expression.
func (b Builder) WsAutoReply(pattern, reply string) Builder {
	re, err := regexp.Compile(pattern)
	if err != nil {
		panic(fmt.Sprintf("vuhttp: invalid auto-reply pattern %q: %s", pattern, err))
	}
	b.p.Ws.AutoReplies = append(slices.Clone(b.p.Ws.AutoReplies), AutoReply{Match: re, Reply: reply})
	return b
}

// Logger sets the logger receiving warm-up diagnostics. The default
// is log.Log from github.com/apex/log.
func (b Builder) Logger(l Logger) Builder {
	b.p.logger = l
	return b
}

// CookieStore sets the shared cookie store. The default is an
// in-memory store.
func (b Builder) CookieStore(st cookie.Store) Builder {
	b.p.cookies = st
	return b
}

// Resolver overrides the resolver underlying the shared cache. Meant
// for tests; the DNS mode setters are the normal way to configure
// resolution.
func (b Builder) Resolver(r resolver.Resolver) Builder {
	b.p.resolver = r
	return b
}

// BaseURLSelector sets the base-URL selection policy. The default is
// sticky per session.
func (b Builder) BaseURLSelector(sel BaseURLSelector) Builder {
	b.p.baseURLSel = sel
	return b
}

// WsBaseURLSelector sets the WebSocket base-URL selection policy. The
// default is sticky per session.
func (b Builder) WsBaseURLSelector(sel BaseURLSelector) Builder {
	b.p.wsBaseURLSel = sel
	return b
}

// LocalAddrSelector sets the local-address selection policy. The
// default is sticky per session.
func (b Builder) LocalAddrSelector(sel LocalAddrSelector) Builder {
	b.p.localAddrSel = sel
	return b
}

// Build finalizes the configuration and returns the frozen Protocol.
//
// Build never fails. Its one side effect is a best-effort DNS warm-up
// pass: every configured HTTP and websocket base URL host not covered
// by a static alias is resolved once, blocking, to populate the
// shared cache before load begins. Failures are logged and ignored.
// The pass is skipped entirely when a proxy is configured, since then
// the proxy resolves target hosts, not the client.
func (b Builder) Build() *Protocol {
	p := b.p
	if p.logger == nil {
		p.logger = log.Log
	}
	if p.cookies == nil {
		p.cookies = cookie.NewInMemoryStore()
	}
	if p.baseURLSel == nil {
		p.baseURLSel = StickyBaseURL()
	}
	if p.wsBaseURLSel == nil {
		p.wsBaseURLSel = StickyBaseURL()
	}
	if p.localAddrSel == nil {
		p.localAddrSel = StickyLocalAddr()
	}
	if p.resolver == nil {
		var base resolver.Resolver
		switch p.DNS.Mode {
		case DNSAsync:
			base = resolver.NewUDP(p.DNS.Servers)
		default:
			base = resolver.System
		}
		p.resolver = resolver.NewCache(base)
	}
	if len(p.DNS.Aliases) > 0 {
		p.resolver = resolver.NewStatic(p.DNS.Aliases, p.resolver)
	}
	p.warmUp()
	return &p
}

func (p *Protocol) warmUp() {
	if p.Proxy.URL != nil {
		return
	}
	seen := make(map[string]bool)
	bases := make([]*url.URL, 0, len(p.BaseURLs)+len(p.Ws.BaseURLs))
	bases = append(bases, p.BaseURLs...)
	bases = append(bases, p.Ws.BaseURLs...)
	for _, u := range bases {
		host := u.Hostname()
		if host == "" || seen[host] {
			continue
		}
		seen[host] = true
		if _, ok := p.DNS.Aliases[host]; ok {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), warmUpTimeout)
		if _, err := p.resolver.LookupHost(ctx, host); err != nil {
			p.logger.Warnf("vuhttp: DNS warm-up for %s failed: %s", host, err)
		}
		cancel()
	}
}

func mustParseURLs(kind string, raw []string) []*url.URL {
	out := make([]*url.URL, 0, len(raw))
	for _, s := range raw {
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" || u.Host == "" {
			panic(fmt.Sprintf("vuhttp: invalid %s %q", kind, s))
		}
		out = append(out, u)
	}
	return out
}

func parseDNSServer(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("invalid DNS server address %q", s)
	}
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		// No port: the whole string is the host, default port 53.
		if net.ParseIP(s) == nil && !validHostname(s) {
			return "", fmt.Errorf("invalid DNS server address %q", s)
		}
		return net.JoinHostPort(s, "53"), nil
	}
	if host == "" {
		return "", fmt.Errorf("invalid DNS server address %q", s)
	}
	if _, err := net.LookupPort("udp", port); err != nil {
		return "", fmt.Errorf("invalid DNS server port in %q", s)
	}
	return net.JoinHostPort(host, port), nil
}

func validHostname(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		ok := c == '.' || c == '-' ||
			'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
		if !ok {
			return false
		}
	}
	return len(s) > 0
}
