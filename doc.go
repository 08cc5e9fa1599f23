// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package vuhttp is the request-construction core of a load-testing HTTP
client: it turns a declarative, reusable request description and a
shared protocol configuration into a concrete wire-ready request once
per virtual-user iteration.

Compose a protocol configuration once during scenario setup. Every
mutator returns a new builder, so configurations can be branched and
reused safely:

	p := vuhttp.NewBuilder("https://api.example.com").
		StaticHeader("Accept", "application/json").
		AutoReferer(true).
		Proxy("http://proxy.internal:3128").
		ProxyExceptions("internal.example.com").
		Build()

Build finalizes the configuration, performing a best-effort DNS
warm-up of the configured base URL hosts, and freezes it. The returned
Protocol is immutable and shared by reference across all virtual users
for the test's duration.

For each distinct request definition, build one request expression
with package request:

	attrs := request.CommonAttributes{
		Name:   session.Constant("home"),
		Method: "GET",
		URL:    session.Constant("/"),
	}
	expr := request.NewHTTPBuilder(attrs, p, "utf-8").Build()

At run time, once per virtual-user iteration, apply the expression to
that user's session. The result is either a ready request or a
descriptive failure aborting just that attempt:

	req, err := expr.Apply(userSession)

Evaluation is pure local computation: no network I/O happens until the
built request is handed to the transport layer. Expressions close only
over the frozen protocol configuration and may be applied concurrently
from thousands of virtual users.

Configuration mistakes (malformed proxy URL, HTTP/2 without SNI, a bad
prior-knowledge entry) panic at the offending builder call, aborting
scenario construction; per-evaluation failures are always returned as
values so the execution loop can record them and continue.
*/
package vuhttp
