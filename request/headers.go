// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"
	"slices"
	"strings"

	"github.com/vuhttp/vuhttp"
	"github.com/vuhttp/vuhttp/session"
)

// headerSet is the once-per-definition product of merging protocol
// and request headers: static entries are applied to every request
// without per-session cost, dynamic entries are evaluated per
// session in insertion order.
type headerSet struct {
	static     http.Header
	dynamic    []vuhttp.Header
	hasReferer bool
}

// mergeHeaders overlays request headers on protocol defaults.
// Identity is case-insensitive on header names: when an entry's name
// matches an existing key ignoring case, the value from the more
// specific layer wins but the key keeps the casing it was first seen
// with. With ignoreProtocol set the protocol layer contributes
// nothing.
func mergeHeaders(protocol, request []vuhttp.Header, ignoreProtocol bool) []vuhttp.Header {
	var merged []vuhttp.Header
	if !ignoreProtocol {
		merged = protocol
	}
	for _, h := range request {
		merged = vuhttp.SetHeader(merged, h.Name, h.Value)
	}
	return merged
}

// partitionHeaders splits merged headers into static and dynamic
// sets. Static values are stored with their original casing; the
// http.Header map is indexed directly, bypassing MIME
// canonicalization, to preserve it.
func partitionHeaders(merged []vuhttp.Header) *headerSet {
	hs := &headerSet{static: make(http.Header)}
	for _, h := range merged {
		if v, ok := session.StaticValue(h.Value); ok {
			hs.static[h.Name] = []string{v}
		} else {
			hs.dynamic = append(hs.dynamic, h)
		}
		if strings.EqualFold(h.Name, "Referer") {
			hs.hasReferer = true
		}
	}
	return hs
}

// apply writes the header set into h: static entries first, then
// each dynamic entry evaluated against s in insertion order,
// stopping at the first evaluation failure. Value slices are copied,
// never aliased: each built request owns its header map outright.
func (hs *headerSet) apply(s *session.Session, h http.Header) error {
	for name, values := range hs.static {
		h[name] = slices.Clone(values)
	}
	for _, d := range hs.dynamic {
		v, err := d.Value.Apply(s)
		if err != nil {
			return err
		}
		h[d.Name] = []string{v}
	}
	return nil
}
