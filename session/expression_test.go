// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstant(t *testing.T) {
	e := Constant("hello")
	v, err := e.Apply(New("test"))
	assert.NoError(t, err)
	assert.Equal(t, "hello", v)

	t.Run("is static", func(t *testing.T) {
		v, ok := StaticValue(e)
		assert.True(t, ok)
		assert.Equal(t, "hello", v)
	})
	t.Run("applies without session", func(t *testing.T) {
		v, err := e.Apply(nil)
		assert.NoError(t, err)
		assert.Equal(t, "hello", v)
	})
}

func TestDynamic(t *testing.T) {
	e := Dynamic(func(s *Session) (int, error) {
		v, ok := s.Get("n")
		if !ok {
			return 0, errors.New("no n")
		}
		return v.(int) * 2, nil
	})

	t.Run("is not static", func(t *testing.T) {
		_, ok := StaticValue(e)
		assert.False(t, ok)
	})
	t.Run("reads session state", func(t *testing.T) {
		s := New("test")
		s.Set("n", 21)
		v, err := e.Apply(s)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	})
	t.Run("returns failure as value", func(t *testing.T) {
		_, err := e.Apply(New("test"))
		assert.EqualError(t, err, "no n")
	})
}

func TestAttribute(t *testing.T) {
	e := Attribute("token")

	t.Run("present", func(t *testing.T) {
		s := New("test")
		s.Set("token", "abc123")
		v, err := e.Apply(s)
		require.NoError(t, err)
		assert.Equal(t, "abc123", v)
	})
	t.Run("absent", func(t *testing.T) {
		_, err := e.Apply(New("test"))
		assert.EqualError(t, err, `session: undefined attribute "token"`)
	})
	t.Run("wrong type", func(t *testing.T) {
		s := New("test")
		s.Set("token", 99)
		_, err := e.Apply(s)
		assert.Error(t, err)
	})
}

func TestSession(t *testing.T) {
	s := New("checkout")
	assert.Equal(t, "checkout", s.Scenario())
	assert.NotEqual(t, New("checkout").ID(), s.ID())

	s.Set("a", 1)
	s.Set("b", "two")
	assert.Equal(t, 2, s.Len())

	v, ok := s.String("b")
	assert.True(t, ok)
	assert.Equal(t, "two", v)

	_, ok = s.String("a")
	assert.False(t, ok, "non-string attribute is not a string")

	s.Unset("a")
	_, ok = s.Get("a")
	assert.False(t, ok)
}
