// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"net/http"
	urlpkg "net/url"
	"time"

	"github.com/vuhttp/vuhttp"
	"github.com/vuhttp/vuhttp/session"
	"github.com/vuhttp/vuhttp/sign"
)

// buildErrPrefix uniformly identifies per-evaluation failures as
// request-build failures. The original cause's message is always
// preserved.
const buildErrPrefix = "vuhttp/request: failed to build request"

// A Builder turns a request definition into an expression producing
// wire-ready requests. It precomputes at construction time everything
// that does not depend on runtime session state: the merged header
// partition, the auto-referer decision, and, for static URLs, the
// fully resolved target.
//
// Builder covers the pipeline shared by all protocols.
// Protocol-specific builders such as HTTPBuilder wrap it to
// contribute a body and a request timeout through the configure hook.
type Builder struct {
	attrs    CommonAttributes
	protocol *vuhttp.Protocol
	charset  string

	headers     *headerSet
	autoReferer bool
	resolveURI  func(s *session.Session) (*urlpkg.URL, error)

	// timeout and configure are supplied by protocol-specific
	// builders.
	timeout   time.Duration
	configure func(s *session.Session, r *Request) error
}

// NewBuilder constructs a builder from a request definition, the
// frozen protocol configuration, and the character encoding to apply.
// Panics on an invalid HTTP method, which is a configuration error.
func NewBuilder(attrs CommonAttributes, p *vuhttp.Protocol, charset string) *Builder {
	if attrs.Method == "" {
		attrs.Method = "GET"
	}
	if !validMethod(attrs.Method) {
		panic(fmt.Sprintf("vuhttp/request: invalid method %q", attrs.Method))
	}
	if attrs.Name == nil {
		attrs.Name = session.Constant("")
	}
	b := &Builder{
		attrs:    attrs,
		protocol: p,
		charset:  charset,
	}
	b.headers = partitionHeaders(mergeHeaders(p.Request.Headers, attrs.Headers, attrs.IgnoreProtocolHeaders))
	b.autoReferer = p.Request.AutoReferer && !b.headers.hasReferer
	b.resolveURI = b.makeURIResolver()
	return b
}

// Build returns the expression producing a finished request for each
// evaluation. The expression is immutable and safe to apply
// concurrently from many virtual users.
func (b *Builder) Build() session.Expression[*Request] {
	return session.Dynamic(func(s *session.Session) (*Request, error) {
		r, err := b.build(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", buildErrPrefix, err)
		}
		return r, nil
	})
}

// build runs the construction pipeline. The order is fixed: later
// steps read artifacts produced by earlier ones (the proxy decision
// and the cookie lookup both need the resolved host). Any failure
// short-circuits the remaining steps.
func (b *Builder) build(s *session.Session) (*Request, error) {
	u, err := b.resolveURI(s)
	if err != nil {
		return nil, err
	}
	name, err := b.attrs.Name.Apply(s)
	if err != nil {
		return nil, err
	}
	r := &Request{
		Name:       name,
		Method:     b.attrs.Method,
		URL:        u,
		Header:     make(http.Header),
		Charset:    b.charset,
		AutoOrigin: b.protocol.Request.AutoOrigin,
		Resolver:   b.protocol.ResolverFor(s),
		Timeout:    b.timeout,
	}
	b.applyProxy(r, u)
	for _, c := range b.protocol.CookieStore().Get(s, u) {
		r.AddCookie(c)
	}
	if addr, ok := b.protocol.LocalAddrFor(s); ok {
		r.LocalAddr = addr
	}
	r.Signature = b.signature()
	if err := b.applyHeaders(s, r); err != nil {
		return nil, err
	}
	if err := b.applyRealm(s, r, u); err != nil {
		return nil, err
	}
	if b.configure != nil {
		if err := b.configure(s, r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (b *Builder) applyProxy(r *Request, u *urlpkg.URL) {
	proxy := b.attrs.Proxy
	if proxy == nil {
		proxy = b.protocol.Proxy.URL
	}
	if proxy != nil && !b.protocol.Proxy.Bypass(u.Hostname()) {
		r.Proxy = proxy
	}
}

func (b *Builder) signature() sign.Calculator {
	if b.attrs.Signature != nil {
		return b.attrs.Signature
	}
	return b.protocol.Request.Signature
}

func (b *Builder) applyHeaders(s *session.Session, r *Request) error {
	if err := b.headers.apply(s, r.Header); err != nil {
		return err
	}
	if b.autoReferer {
		// Absent referer state is not an error: the first request
		// of a scenario has nothing to refer to.
		if ref, ok := s.String(session.RefererAttribute); ok {
			r.Header.Set("Referer", ref)
		}
	}
	return nil
}

func (b *Builder) applyRealm(s *session.Session, r *Request, u *urlpkg.URL) error {
	re := b.attrs.Realm
	if re == nil {
		re = b.protocol.Request.Realm
	}
	if re == nil {
		return nil
	}
	rl, err := re.Apply(s)
	if err != nil {
		return err
	}
	if rl == nil {
		return nil
	}
	resolved, err := rl.Resolve(s)
	if err != nil {
		return err
	}
	auth, err := resolved.Authorization(r.Method, u)
	if err != nil {
		return err
	}
	r.Header.Set("Authorization", auth)
	return nil
}

// makeURIResolver chooses, once at construction, between the three
// URL resolution strategies: a fully precomputed target, a
// precomputed target awaiting query parameters, or full per-session
// resolution.
func (b *Builder) makeURIResolver() func(s *session.Session) (*urlpkg.URL, error) {
	if b.attrs.URI != nil {
		return b.paramResolver(b.attrs.URI)
	}
	raw, static := session.StaticValue(b.attrs.URL)
	if !static || (!IsAbsoluteURI(raw) && len(b.protocol.BaseURLs) > 1) {
		// Dynamic URL, or static relative URL needing per-session
		// base selection.
		return b.dynamicResolver()
	}
	u, err := b.resolveStatic(raw)
	if err != nil {
		// Captured, not thrown: the failure surfaces per evaluation
		// as a request-build failure.
		return func(*session.Session) (*urlpkg.URL, error) {
			return nil, err
		}
	}
	return b.paramResolver(u)
}

// paramResolver returns evaluations of a precomputed target,
// appending query parameters when the definition has any.
func (b *Builder) paramResolver(u *urlpkg.URL) func(s *session.Session) (*urlpkg.URL, error) {
	if len(b.attrs.QueryParams) == 0 {
		return func(*session.Session) (*urlpkg.URL, error) {
			return u, nil
		}
	}
	return func(s *session.Session) (*urlpkg.URL, error) {
		params, err := b.resolveParams(s)
		if err != nil {
			return nil, err
		}
		return EncodeURI(u, params, b.disableURLEncoding()), nil
	}
}

func (b *Builder) dynamicResolver() func(s *session.Session) (*urlpkg.URL, error) {
	return func(s *session.Session) (*urlpkg.URL, error) {
		raw, err := b.attrs.URL.Apply(s)
		if err != nil {
			return nil, err
		}
		var u *urlpkg.URL
		if IsAbsoluteURI(raw) {
			u, err = ParseURI(raw)
			if err != nil {
				return nil, err
			}
		} else {
			base, ok := b.protocol.BaseURLFor(s)
			if !ok {
				return nil, fmt.Errorf("no base URL defined to resolve relative url %q", raw)
			}
			u, err = resolveAgainst(base, raw)
			if err != nil {
				return nil, err
			}
		}
		params, err := b.resolveParams(s)
		if err != nil {
			return nil, err
		}
		return EncodeURI(u, params, b.disableURLEncoding()), nil
	}
}

// resolveStatic resolves a compile-time constant URL exactly once, at
// construction.
func (b *Builder) resolveStatic(raw string) (*urlpkg.URL, error) {
	if IsAbsoluteURI(raw) {
		return ParseURI(raw)
	}
	if len(b.protocol.BaseURLs) == 0 {
		return nil, fmt.Errorf("no base URL defined to resolve relative url %q", raw)
	}
	return resolveAgainst(b.protocol.BaseURLs[0], raw)
}

func (b *Builder) resolveParams(s *session.Session) ([]resolvedParam, error) {
	if len(b.attrs.QueryParams) == 0 {
		return nil, nil
	}
	params := make([]resolvedParam, 0, len(b.attrs.QueryParams))
	for _, qp := range b.attrs.QueryParams {
		name, err := qp.Name.Apply(s)
		if err != nil {
			return nil, err
		}
		value, err := qp.Value.Apply(s)
		if err != nil {
			return nil, err
		}
		params = append(params, resolvedParam{name: name, value: value})
	}
	return params, nil
}

func (b *Builder) disableURLEncoding() bool {
	if b.attrs.DisableURLEncoding != nil {
		return *b.attrs.DisableURLEncoding
	}
	return b.protocol.Request.DisableURLEncoding
}
