// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request turns a declarative request definition into an
expression producing wire-ready requests, one per virtual-user
iteration.

The entry point is a builder constructed from three things: the
CommonAttributes of the request definition, the frozen protocol
configuration, and a character encoding. The builder does all work
that does not depend on runtime session state exactly once, at
construction time: it merges protocol and request headers
(case-insensitively, request layer winning), decides whether a
Referer will be auto-injected, and, when the URL is a compile-time
constant, resolves and encodes the final target so evaluations reuse
it at zero cost.

	attrs := request.CommonAttributes{
		Name:   session.Constant("search"),
		Method: "GET",
		URL:    session.Constant("/search"),
		QueryParams: []request.QueryParam{
			{Name: session.Constant("q"), Value: session.Attribute("query")},
		},
	}
	expr := request.NewHTTPBuilder(attrs, p, "utf-8").
		RequestTimeout(10 * time.Second).
		Build()

Each evaluation of the returned expression runs a single linear
pipeline: resolve the target URL, resolve the request name and the
session's resolver, then attach proxy, cookies, local address,
signature calculator, headers, and authentication realm in a fixed
order, finishing with the protocol-specific configuration (body,
timeout). Failures anywhere in the pipeline short-circuit the rest
and come back as a request-build error naming the original cause;
they never panic, so one bad iteration never takes down a worker.

The product is a Request, a stripped-down counterpart of
http.Request extended with the load-test concerns the transport
layer needs (resolver, proxy, local address, signature). Convert it
with ToHTTPRequest or Signed when handing it to a transport.
*/
package request
