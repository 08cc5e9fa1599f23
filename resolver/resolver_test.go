// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResolver answers from a table and counts lookups.
type fakeResolver struct {
	table   map[string][]string
	lookups int
}

func (f *fakeResolver) LookupHost(_ context.Context, host string) ([]string, error) {
	f.lookups++
	addrs, ok := f.table[host]
	if !ok {
		return nil, errors.New("no such host " + host)
	}
	return addrs, nil
}

func TestCache(t *testing.T) {
	fake := &fakeResolver{table: map[string][]string{
		"example.com": {"93.184.216.34"},
	}}
	c := NewCache(fake)
	ctx := context.Background()

	addrs, err := c.LookupHost(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"93.184.216.34"}, addrs)
	assert.Equal(t, 1, fake.lookups)

	t.Run("memoizes success", func(t *testing.T) {
		addrs, err := c.LookupHost(ctx, "example.com")
		require.NoError(t, err)
		assert.Equal(t, []string{"93.184.216.34"}, addrs)
		assert.Equal(t, 1, fake.lookups, "second lookup must hit the cache")
	})

	t.Run("does not cache failure", func(t *testing.T) {
		_, err := c.LookupHost(ctx, "missing.example.com")
		assert.Error(t, err)
		_, err = c.LookupHost(ctx, "missing.example.com")
		assert.Error(t, err)
		assert.Equal(t, 3, fake.lookups, "failed lookups must reach the resolver every time")
	})
}

func TestStatic(t *testing.T) {
	fake := &fakeResolver{table: map[string][]string{
		"fallback.example.com": {"10.0.0.2"},
	}}
	s := NewStatic(map[string][]string{
		"aliased.example.com": {"10.0.0.1"},
	}, fake)
	ctx := context.Background()

	assert.True(t, s.Covers("aliased.example.com"))
	assert.False(t, s.Covers("fallback.example.com"))

	addrs, err := s.LookupHost(ctx, "aliased.example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1"}, addrs)
	assert.Zero(t, fake.lookups, "aliased host must not reach the fallback")

	addrs, err = s.LookupHost(ctx, "fallback.example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.2"}, addrs)
	assert.Equal(t, 1, fake.lookups)
}

func TestUDPNoServers(t *testing.T) {
	u := NewUDP(nil)
	_, err := u.LookupHost(context.Background(), "example.com")
	assert.EqualError(t, err, "resolver: no DNS servers configured")
}
