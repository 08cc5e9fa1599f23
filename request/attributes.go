// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	urlpkg "net/url"

	"github.com/vuhttp/vuhttp"
	"github.com/vuhttp/vuhttp/realm"
	"github.com/vuhttp/vuhttp/session"
	"github.com/vuhttp/vuhttp/sign"
)

// A QueryParam is one query string parameter; name and value may both
// be session-dependent.
type QueryParam struct {
	Name  session.Expression[string]
	Value session.Expression[string]
}

// StaticParam returns a query parameter with fixed name and value.
func StaticParam(name, value string) QueryParam {
	return QueryParam{
		Name:  session.Constant(name),
		Value: session.Constant(value),
	}
}

// CommonAttributes is the per-request-definition attribute bundle
// every protocol-specific request builder shares. It is created once
// per request definition at scenario-build time and never modified
// afterwards.
type CommonAttributes struct {
	// Name identifies the request in reports; it may be
	// session-dependent for per-iteration naming.
	Name session.Expression[string]

	// Method is the HTTP method. Empty means GET.
	Method string

	// URL is the request target: absolute, or relative to a
	// configured base URL. Exactly one of URL and URI must be set.
	URL session.Expression[string]

	// URI is a pre-built target, bypassing URL resolution.
	URI *urlpkg.URL

	// QueryParams are appended to the target's query string in
	// order.
	QueryParams []QueryParam

	// Headers are the request-level headers, overlaid on the
	// protocol default headers. Names are case-insensitive-unique
	// but keep the casing they were first written with.
	Headers []vuhttp.Header

	// IgnoreProtocolHeaders drops the protocol default headers
	// instead of merging under them.
	IgnoreProtocolHeaders bool

	// Proxy overrides the protocol proxy for this request.
	Proxy *urlpkg.URL

	// Realm overrides the protocol default realm.
	Realm session.Expression[*realm.Realm]

	// Signature overrides the protocol default signature calculator.
	Signature sign.Calculator

	// DisableURLEncoding overrides the protocol URL-encoding policy
	// when non-nil.
	DisableURLEncoding *bool
}
