// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package vuhttp

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/vuhttp/vuhttp/session"
)

// NewWsDialer builds a websocket dialer from the websocket part of
// the protocol configuration: buffer sizes, proxy with exceptions,
// and resolver-aware dialing bound to the virtual user.
func (p *Protocol) NewWsDialer(s *session.Session) *websocket.Dialer {
	localAddr, _ := p.LocalAddrFor(s)
	return &websocket.Dialer{
		Proxy:            p.proxyFunc(),
		NetDialContext:   p.dialContext(p.ResolverFor(s), localAddr),
		HandshakeTimeout: 45 * time.Second,
		ReadBufferSize:   p.Ws.ReadBufferSize,
		WriteBufferSize:  p.Ws.WriteBufferSize,
	}
}
