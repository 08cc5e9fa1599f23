// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAbsoluteURI(t *testing.T) {
	assert.True(t, IsAbsoluteURI("http://example.com"))
	assert.True(t, IsAbsoluteURI("https://example.com/path"))
	assert.False(t, IsAbsoluteURI("/path"))
	assert.False(t, IsAbsoluteURI("ftp://example.com"))
	assert.False(t, IsAbsoluteURI("example.com"))
}

func TestEncodeURI(t *testing.T) {
	u := mustParse(t, "https://example.com/search")

	t.Run("no params returns the input untouched", func(t *testing.T) {
		assert.Same(t, u, EncodeURI(u, nil, false))
	})

	t.Run("percent-encodes by default", func(t *testing.T) {
		out := EncodeURI(u, []resolvedParam{
			{name: "q", value: "a b"},
			{name: "filter", value: "x&y"},
		}, false)
		assert.Equal(t, "q=a+b&filter=x%26y", out.RawQuery)
		assert.Empty(t, u.RawQuery, "input must not be modified")
	})

	t.Run("appends after an existing query", func(t *testing.T) {
		u := mustParse(t, "https://example.com/search?page=2")
		out := EncodeURI(u, []resolvedParam{{name: "q", value: "v"}}, false)
		assert.Equal(t, "page=2&q=v", out.RawQuery)
	})

	t.Run("raw append when encoding is disabled", func(t *testing.T) {
		out := EncodeURI(u, []resolvedParam{{name: "q", value: "a b"}}, true)
		assert.Equal(t, "q=a b", out.RawQuery)
	})
}

func TestResolveAgainst(t *testing.T) {
	t.Run("plain concatenation, no path joining", func(t *testing.T) {
		base := mustParse(t, "https://example.com/app")
		u, err := resolveAgainst(base, "/users")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/app/users", u.String())
	})

	t.Run("base with trailing slash is kept verbatim", func(t *testing.T) {
		base := mustParse(t, "https://example.com/app/")
		u, err := resolveAgainst(base, "/users")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/app//users", u.String())
	})
}
