// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package vuhttp

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/vuhttp/vuhttp/cookie"
	"github.com/vuhttp/vuhttp/realm"
	"github.com/vuhttp/vuhttp/resolver"
	"github.com/vuhttp/vuhttp/session"
	"github.com/vuhttp/vuhttp/sign"
)

// A Header is one entry of an ordered header set. Header names are
// case-insensitive-unique within a set but keep the casing they were
// first written with.
type Header struct {
	Name  string
	Value session.Expression[string]
}

// SetHeader inserts a header into an ordered header set. If a header
// with the same name ignoring case already exists, its value is
// replaced in place, keeping the existing entry's position and
// casing; otherwise the entry is appended. The input slice is not
// modified.
func SetHeader(headers []Header, name string, value session.Expression[string]) []Header {
	for i, h := range headers {
		if equalFold(h.Name, name) {
			out := make([]Header, len(headers))
			copy(out, headers)
			out[i].Value = value
			return out
		}
	}
	out := make([]Header, len(headers), len(headers)+1)
	copy(out, headers)
	return append(out, Header{Name: name, Value: value})
}

// A Remote identifies a remote endpoint for HTTP/2 prior knowledge.
type Remote struct {
	Host string
	Port int
}

// String returns the remote in "host:port" form.
func (r Remote) String() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// ParseRemote parses "host:port" or "host" (default port 443).
func ParseRemote(s string) (Remote, error) {
	if s == "" {
		return Remote{}, fmt.Errorf("vuhttp: empty remote")
	}
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		// Only a missing port means the whole string is the host;
		// anything else (extra colons, bad brackets) is malformed.
		if !strings.Contains(err.Error(), "missing port") {
			return Remote{}, fmt.Errorf("vuhttp: malformed remote %q", s)
		}
		if !validRemoteHost(s) {
			return Remote{}, fmt.Errorf("vuhttp: invalid host in remote %q", s)
		}
		return Remote{Host: s, Port: 443}, nil
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return Remote{}, fmt.Errorf("vuhttp: invalid port in remote %q", s)
	}
	if !validRemoteHost(host) {
		return Remote{}, fmt.Errorf("vuhttp: invalid host in remote %q", s)
	}
	return Remote{Host: host, Port: n}, nil
}

func validRemoteHost(host string) bool {
	return net.ParseIP(host) != nil || validHostname(host)
}

// EngineSettings is the connection-engine part of a protocol
// configuration. Never modified after Build.
type EngineSettings struct {
	// ShareConnections pools connections across virtual users instead
	// of giving each user its own pool.
	ShareConnections bool

	// LocalAddresses is the pool of local addresses requests may be
	// bound to. Empty means the OS picks.
	LocalAddresses []net.Addr

	// MaxConnsPerHost caps concurrent connections per remote host.
	MaxConnsPerHost int

	// PerUserKeyManager supplies a per-user client certificate, for
	// tests where each virtual user authenticates with its own key.
	PerUserKeyManager func(s *session.Session) (*tls.Certificate, error)

	// EnableHTTP2 turns on HTTP/2 via ALPN negotiation.
	EnableHTTP2 bool

	// HTTP2PriorKnowledge maps remotes to the protocol they are known
	// to speak: true for HTTP/2 without negotiation, false for
	// HTTP/1.1.
	HTTP2PriorKnowledge map[Remote]bool

	// EnableSNI controls whether TLS handshakes carry the server
	// name. HTTP/2 cannot be enabled without it.
	EnableSNI bool

	// ALPNAvailable records whether the active TLS provider supports
	// protocol negotiation. HTTP/2 cannot be enabled without it.
	ALPNAvailable bool
}

// RequestSettings is the request-defaults part of a protocol
// configuration. Never modified after Build.
type RequestSettings struct {
	// Headers are the default headers merged under every request's
	// own headers.
	Headers []Header

	// AutoReferer injects a Referer header from the previous main
	// request stored in session state.
	AutoReferer bool

	// AutoOrigin injects an Origin header derived from the request
	// URL. Applied downstream by the transport layer.
	AutoOrigin bool

	// Realm is the default authentication realm.
	Realm session.Expression[*realm.Realm]

	// Signature is the default request signature calculator.
	Signature sign.Calculator

	// DisableURLEncoding skips URL encoding of resolved URIs unless a
	// request overrides it.
	DisableURLEncoding bool

	// Caching honors response caching headers.
	Caching bool

	// SilentResources marks requests whose URL matches as silent:
	// executed but excluded from reports.
	SilentResources []func(u *url.URL) bool
}

// A ResponseCheck validates a response. Checks are evaluated by the
// test-execution layer, downstream of request construction.
type ResponseCheck func(r *http.Response) error

// A ResponseTransformer rewrites a response before checks run.
type ResponseTransformer func(r *http.Response) (*http.Response, error)

// ResponseSettings is the response-handling part of a protocol
// configuration. It is carried here and consumed downstream. Never
// modified after Build.
type ResponseSettings struct {
	FollowRedirects      bool
	MaxRedirects         int
	StrictRedirectPolicy bool
	Checks               []ResponseCheck
	Transformer          ResponseTransformer

	// InferHTMLResources fetches resources embedded in HTML
	// responses.
	InferHTMLResources bool

	// InferredResourceFilter selects which inferred resources to
	// fetch.
	InferredResourceFilter func(u *url.URL) bool

	// ResourceNaming names inferred resource requests in reports.
	ResourceNaming func(u *url.URL) string
}

// ProxySettings is the proxy part of a protocol configuration. Never
// modified after Build.
type ProxySettings struct {
	// URL is the proxy server, nil for direct connections.
	URL *url.URL

	// Exceptions are hostnames reached directly even when a proxy is
	// configured.
	Exceptions map[string]struct{}
}

// Bypass reports whether host must be reached directly, ignoring the
// configured proxy.
func (ps ProxySettings) Bypass(host string) bool {
	_, ok := ps.Exceptions[host]
	return ok
}

// DNSMode selects how hostnames are resolved during the test.
type DNSMode int

const (
	// DNSSystem resolves through the system resolver, cached and
	// shared by all users. The default.
	DNSSystem DNSMode = iota
	// DNSAsync resolves through an explicit list of DNS servers over
	// UDP, cached and shared by all users.
	DNSAsync
	// DNSPerUser gives each virtual user its own resolver.
	DNSPerUser
)

// DNSSettings is the name-resolution part of a protocol
// configuration. Never modified after Build.
type DNSSettings struct {
	Mode DNSMode

	// Servers are the "host:port" DNS server addresses for DNSAsync.
	Servers []string

	// PerUser builds the session-scoped resolver for DNSPerUser.
	PerUser resolver.Factory

	// Aliases statically maps hostnames to addresses, bypassing
	// resolution (and warm-up) for those hosts.
	Aliases map[string][]string
}

// An AutoReply answers matching inbound websocket text messages
// without involving the virtual user.
type AutoReply struct {
	Match *regexp.Regexp
	Reply string
}

// WsSettings is the websocket/SSE part of a protocol configuration.
// Never modified after Build.
type WsSettings struct {
	// BaseURLs are the roots relative websocket URLs resolve against.
	BaseURLs []*url.URL

	// SSEBaseURLs are the roots relative SSE URLs resolve against.
	SSEBaseURLs []*url.URL

	// MaxReconnects caps automatic reconnection attempts per
	// connection.
	MaxReconnects int

	// ReadBufferSize and WriteBufferSize size the connection I/O
	// buffers in bytes. Zero means the dialer default.
	ReadBufferSize  int
	WriteBufferSize int

	// AutoReplies are applied to inbound text messages in order;
	// first match wins.
	AutoReplies []AutoReply
}

// A Protocol is the frozen protocol configuration shared by all
// virtual users for the lifetime of a test. Build it with a Builder;
// once built it is immutable and safe for unsynchronized concurrent
// reads.
type Protocol struct {
	// BaseURLs are the roots relative HTTP request URLs resolve
	// against.
	BaseURLs []*url.URL

	Engine   EngineSettings
	Request  RequestSettings
	Response ResponseSettings
	Proxy    ProxySettings
	DNS      DNSSettings
	Ws       WsSettings

	logger       Logger
	cookies      cookie.Store
	resolver     resolver.Resolver
	baseURLSel   BaseURLSelector
	wsBaseURLSel BaseURLSelector
	localAddrSel LocalAddrSelector
}

// Logger returns the protocol logger.
func (p *Protocol) Logger() Logger {
	return p.logger
}

// CookieStore returns the shared cookie store.
func (p *Protocol) CookieStore() cookie.Store {
	return p.cookies
}

// Resolver returns the shared resolver used by the system and async
// DNS modes, with static aliases applied.
func (p *Protocol) Resolver() resolver.Resolver {
	return p.resolver
}

// ResolverFor returns the resolver a request built for s must use.
// Under per-user DNS the choice is session-scoped; otherwise it is
// the shared resolver.
func (p *Protocol) ResolverFor(s *session.Session) resolver.Resolver {
	if p.DNS.Mode == DNSPerUser && p.DNS.PerUser != nil {
		r := p.DNS.PerUser(s)
		if len(p.DNS.Aliases) > 0 {
			return resolver.NewStatic(p.DNS.Aliases, r)
		}
		return r
	}
	return p.resolver
}

// BaseURLFor picks the HTTP base URL for s using the configured
// selection policy. The second return value is false when no base URL
// is configured.
func (p *Protocol) BaseURLFor(s *session.Session) (*url.URL, bool) {
	return p.baseURLSel(s, p.BaseURLs)
}

// WsBaseURLFor picks the websocket base URL for s.
func (p *Protocol) WsBaseURLFor(s *session.Session) (*url.URL, bool) {
	return p.wsBaseURLSel(s, p.Ws.BaseURLs)
}

// LocalAddrFor picks the local address to bind requests of s to. The
// second return value is false when no local address pool is
// configured.
func (p *Protocol) LocalAddrFor(s *session.Session) (net.Addr, bool) {
	return p.localAddrSel(s, p.Engine.LocalAddresses)
}

// UsesPriorKnowledge reports the protocol mode recorded for the
// remote, if any.
func (p *Protocol) UsesPriorKnowledge(host string, port int) (http2 bool, known bool) {
	mode, ok := p.Engine.HTTP2PriorKnowledge[Remote{Host: host, Port: port}]
	return mode, ok
}

// WsAutoReply returns the configured reply for an inbound text
// message, if any rule matches.
func (p *Protocol) WsAutoReply(message string) (string, bool) {
	for _, ar := range p.Ws.AutoReplies {
		if ar.Match.MatchString(message) {
			return ar.Reply, true
		}
	}
	return "", false
}

// equalFold is an ASCII-only case-insensitive comparison, the same
// identity rule HTTP header field names use.
func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if lower(a[i]) != lower(b[i]) {
			return false
		}
	}
	return true
}

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
