// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package vuhttp

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuhttp/vuhttp/session"
)

func TestParseRemote(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		asserts func(*testing.T, Remote, error)
	}{
		{
			name:  "host and port",
			input: "example.com:8443",
			asserts: func(t *testing.T, r Remote, err error) {
				require.NoError(t, err)
				assert.Equal(t, Remote{Host: "example.com", Port: 8443}, r)
			},
		},
		{
			name:  "host only defaults to 443",
			input: "example.com",
			asserts: func(t *testing.T, r Remote, err error) {
				require.NoError(t, err)
				assert.Equal(t, Remote{Host: "example.com", Port: 443}, r)
			},
		},
		{
			name:  "empty",
			input: "",
			asserts: func(t *testing.T, r Remote, err error) {
				assert.Error(t, err)
			},
		},
		{
			name:  "bad port",
			input: "example.com:http",
			asserts: func(t *testing.T, r Remote, err error) {
				assert.Error(t, err)
			},
		},
		{
			name:  "port out of range",
			input: "example.com:70000",
			asserts: func(t *testing.T, r Remote, err error) {
				assert.Error(t, err)
			},
		},
		{
			name:  "empty host with port",
			input: ":443",
			asserts: func(t *testing.T, r Remote, err error) {
				assert.Error(t, err)
			},
		},
		{
			name:  "too many colons",
			input: "h2.example.com:8443:extra",
			asserts: func(t *testing.T, r Remote, err error) {
				assert.Error(t, err)
			},
		},
		{
			name:  "invalid host without port",
			input: "exa mple.com",
			asserts: func(t *testing.T, r Remote, err error) {
				assert.Error(t, err)
			},
		},
		{
			name:  "invalid host with port",
			input: "exa mple.com:443",
			asserts: func(t *testing.T, r Remote, err error) {
				assert.Error(t, err)
			},
		},
		{
			name:  "bracketed IPv6 with port",
			input: "[::1]:8080",
			asserts: func(t *testing.T, r Remote, err error) {
				require.NoError(t, err)
				assert.Equal(t, Remote{Host: "::1", Port: 8080}, r)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			r, err := ParseRemote(testCase.input)
			testCase.asserts(t, r, err)
		})
	}
}

func TestRemoteString(t *testing.T) {
	assert.Equal(t, "example.com:443", Remote{Host: "example.com", Port: 443}.String())
	assert.Equal(t, "[::1]:8080", Remote{Host: "::1", Port: 8080}.String())
}

func TestSetHeader(t *testing.T) {
	var hs []Header
	hs = SetHeader(hs, "Content-Type", session.Constant("text/plain"))
	hs = SetHeader(hs, "Accept", session.Constant("*/*"))

	t.Run("replaces case-insensitively keeping first casing", func(t *testing.T) {
		out := SetHeader(hs, "content-type", session.Constant("application/json"))
		require.Len(t, out, 2)
		assert.Equal(t, "Content-Type", out[0].Name)
		v, ok := session.StaticValue(out[0].Value)
		require.True(t, ok)
		assert.Equal(t, "application/json", v)
	})

	t.Run("does not modify the input", func(t *testing.T) {
		_ = SetHeader(hs, "ACCEPT", session.Constant("text/html"))
		v, ok := session.StaticValue(hs[1].Value)
		require.True(t, ok)
		assert.Equal(t, "*/*", v)
	})
}

func TestProxyBypass(t *testing.T) {
	ps := ProxySettings{Exceptions: map[string]struct{}{"internal.example.com": {}}}
	assert.True(t, ps.Bypass("internal.example.com"))
	assert.False(t, ps.Bypass("api.example.com"))
}

func TestStickySelectors(t *testing.T) {
	u1, _ := url.Parse("https://a.example.com")
	u2, _ := url.Parse("https://b.example.com")
	candidates := []*url.URL{u1, u2}
	sel := StickyBaseURL()

	t.Run("stable per session", func(t *testing.T) {
		s := session.New("test")
		first, ok := sel(s, candidates)
		require.True(t, ok)
		for i := 0; i < 10; i++ {
			got, ok := sel(s, candidates)
			require.True(t, ok)
			assert.Same(t, first, got)
		}
	})

	t.Run("no candidates", func(t *testing.T) {
		_, ok := sel(session.New("test"), nil)
		assert.False(t, ok)
	})
}

func TestRoundRobinBaseURL(t *testing.T) {
	u1, _ := url.Parse("https://a.example.com")
	u2, _ := url.Parse("https://b.example.com")
	sel := RoundRobinBaseURL()
	s := session.New("test")

	got1, ok := sel(s, []*url.URL{u1, u2})
	require.True(t, ok)
	got2, ok := sel(s, []*url.URL{u1, u2})
	require.True(t, ok)
	got3, ok := sel(s, []*url.URL{u1, u2})
	require.True(t, ok)
	assert.Same(t, u1, got1)
	assert.Same(t, u2, got2)
	assert.Same(t, u1, got3)
}
