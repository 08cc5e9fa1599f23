// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package sign defines the request signature calculator attached during
request construction and invoked by the transport layer just before a
request goes on the wire.
*/
package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
)

// A Calculator signs a wire-ready request, typically by adding an
// Authorization or vendor signature header. It runs after all other
// request construction steps, so it sees final headers and the final
// URL.
//
// Implementations must be safe for concurrent use by multiple
// goroutines and must report failures as errors rather than
// panicking; a signing failure aborts only the request attempt it
// belongs to.
type Calculator interface {
	Sign(r *http.Request) error
}

// CalculatorFunc adapts an ordinary function to the Calculator
// interface.
type CalculatorFunc func(r *http.Request) error

// Sign implements Calculator.
func (f CalculatorFunc) Sign(r *http.Request) error {
	return f(r)
}

// HMAC returns a calculator writing the hex-encoded HMAC-SHA256 of
// "METHOD requestURI" under the given header name.
func HMAC(header string, key []byte) Calculator {
	return CalculatorFunc(func(r *http.Request) error {
		mac := hmac.New(sha256.New, key)
		mac.Write([]byte(r.Method))
		mac.Write([]byte(" "))
		mac.Write([]byte(r.URL.RequestURI()))
		r.Header.Set(header, hex.EncodeToString(mac.Sum(nil)))
		return nil
	})
}
