// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"time"

	"github.com/vuhttp/vuhttp"
	"github.com/vuhttp/vuhttp/session"
)

// DefaultRequestTimeout bounds an HTTP request attempt when no
// explicit timeout is configured.
const DefaultRequestTimeout = 60 * time.Second

// An HTTPBuilder is the HTTP-specific request builder: the shared
// pipeline plus a request body and a request timeout. Configure it
// fully before calling Build; the expressions Build returns close
// over the builder and assume it no longer changes.
type HTTPBuilder struct {
	*Builder
	body session.Expression[[]byte]
}

// NewHTTPBuilder constructs an HTTP request builder. See NewBuilder
// for the common pipeline contract.
func NewHTTPBuilder(attrs CommonAttributes, p *vuhttp.Protocol, charset string) *HTTPBuilder {
	h := &HTTPBuilder{Builder: NewBuilder(attrs, p, charset)}
	h.Builder.timeout = DefaultRequestTimeout
	h.Builder.configure = h.configureRequest
	return h
}

// Body sets the request body expression.
func (h *HTTPBuilder) Body(body session.Expression[[]byte]) *HTTPBuilder {
	h.body = body
	return h
}

// StaticBody sets a fixed request body. The body parameter accepts
// the same types as BodyBytes; a conversion failure panics, since a
// bad body type is a configuration error.
func (h *HTTPBuilder) StaticBody(body any) *HTTPBuilder {
	b, err := BodyBytes(body)
	if err != nil {
		panic(err.Error())
	}
	return h.Body(session.Constant(b))
}

// RequestTimeout sets the per-attempt timeout.
func (h *HTTPBuilder) RequestTimeout(d time.Duration) *HTTPBuilder {
	h.Builder.timeout = d
	return h
}

// configureRequest is the protocol-specific tail of the pipeline: it
// evaluates and attaches the body.
func (h *HTTPBuilder) configureRequest(s *session.Session, r *Request) error {
	if h.body == nil {
		return nil
	}
	body, err := h.body.Apply(s)
	if err != nil {
		return err
	}
	r.Body = body
	return nil
}
