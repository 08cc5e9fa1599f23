// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/url"
	"strings"
)

// IsAbsoluteURI reports whether raw is an absolute http or https
// URL, without parsing it.
func IsAbsoluteURI(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

// ParseURI parses raw into a URL. It is the single parse entry point
// so construction failures carry the underlying parser's message.
func ParseURI(raw string) (*url.URL, error) {
	return url.Parse(raw)
}

// resolvedParam is a query parameter with both sides evaluated.
type resolvedParam struct {
	name  string
	value string
}

// EncodeURI returns a copy of u with params appended to its query
// string. With encoding disabled the parameters are appended raw;
// otherwise they are percent-encoded. u itself is never modified.
func EncodeURI(u *url.URL, params []resolvedParam, disableEncoding bool) *url.URL {
	if len(params) == 0 {
		return u
	}
	out := *u
	var b strings.Builder
	b.WriteString(out.RawQuery)
	for _, p := range params {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		if disableEncoding {
			b.WriteString(p.name)
			b.WriteByte('=')
			b.WriteString(p.value)
		} else {
			b.WriteString(url.QueryEscape(p.name))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(p.value))
		}
	}
	out.RawQuery = b.String()
	return &out
}

// resolveAgainst concatenates a base URL and a relative path, the
// resolution rule base URLs are documented with: no path joining
// semantics, plain concatenation.
func resolveAgainst(base *url.URL, rel string) (*url.URL, error) {
	return ParseURI(base.String() + rel)
}
