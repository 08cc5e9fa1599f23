// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	urlpkg "net/url"
	"time"

	"github.com/vuhttp/vuhttp/resolver"
	"github.com/vuhttp/vuhttp/sign"
)

var template, _ = http.NewRequest("GET", "", nil)

// A Request is the wire-ready product of evaluating a request
// expression against one virtual user's session. It bundles the
// lower-level http.Request fields with the load-test concerns the
// transport layer needs: the resolver to dial through, the proxy to
// use, the local address to bind, and the signature calculator to run
// before the request goes on the wire.
//
// A Request is built fresh for every iteration and is owned by the
// virtual user that built it; it is not reused across iterations.
type Request struct {
	// Name identifies the request in reports. It may vary per
	// iteration when the request name is session-dependent.
	Name string

	// Method specifies the HTTP method (GET, POST, PUT, etc.).
	Method string

	// URL is the fully resolved, encoded target.
	URL *urlpkg.URL

	// Header contains the request header fields, with static
	// protocol/request headers, cookies, auto-injected headers, and
	// realm authorization already applied.
	Header http.Header

	// Body is the pre-buffered request body. Nil or empty means no
	// body is sent.
	Body []byte

	// Charset is the character encoding bodies and parameters were
	// encoded with.
	Charset string

	// AutoOrigin directs the transport to derive an Origin header
	// from URL.
	AutoOrigin bool

	// Timeout bounds the request attempt. Zero means the transport
	// default.
	Timeout time.Duration

	// Proxy is the proxy server to route the request through, nil
	// for a direct connection. Exception hosts have already been
	// filtered out.
	Proxy *urlpkg.URL

	// LocalAddr is the local address to bind to, nil if the OS
	// picks.
	LocalAddr net.Addr

	// Resolver resolves URL's host when dialing. It is the shared
	// resolver, or a per-user one under per-user DNS.
	Resolver resolver.Resolver

	// Signature, if non-nil, signs the wire request just before it
	// is sent.
	Signature sign.Calculator
}

// ToHTTPRequest converts the request to a lower-level http.Request
// with the given context. The signature calculator is not yet
// applied; use Signed when the transport should receive a signed
// request.
func (r *Request) ToHTTPRequest(ctx context.Context) *http.Request {
	hr := template.WithContext(ctx)
	hr.Method = r.Method
	hr.URL = r.URL
	hr.Header = r.Header
	if len(r.Body) > 0 {
		hr.Body = io.NopCloser(bytes.NewReader(r.Body))
		hr.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(r.Body)), nil
		}
		hr.ContentLength = int64(len(r.Body))
	}
	hr.Host = r.URL.Host
	return hr
}

// Signed converts the request to a signed http.Request, running the
// signature calculator if one is attached. A calculator failure is
// reported as a request-build failure carrying the calculator's
// message.
func (r *Request) Signed(ctx context.Context) (*http.Request, error) {
	hr := r.ToHTTPRequest(ctx)
	if r.Signature != nil {
		if err := r.Signature.Sign(hr); err != nil {
			return nil, fmt.Errorf("%s %q: signature calculator: %s", buildErrPrefix, r.Name, err)
		}
	}
	return hr, nil
}

// AddCookie adds a cookie to the request. Per RFC 6265 section 5.4,
// AddCookie does not attach more than one Cookie header field. That
// means all cookies, if any, are written into the same line,
// separated by semicolons.
func (r *Request) AddCookie(c *http.Cookie) {
	c2 := &http.Cookie{Name: c.Name, Value: c.Value}
	s := c2.String()
	if h := r.Header.Get("Cookie"); h != "" {
		r.Header.Set("Cookie", h+"; "+s)
	} else {
		r.Header.Set("Cookie", s)
	}
}
