// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package vuhttp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http2"

	"github.com/vuhttp/vuhttp/resolver"
	"github.com/vuhttp/vuhttp/session"
)

// NewTransport builds the shared transport implied by the protocol
// configuration: proxy with exceptions, resolver-aware dialing,
// per-host connection cap, and HTTP/2 via ALPN when enabled.
//
// The returned transport is used directly when connections are shared
// across virtual users; otherwise it serves as the template each
// virtual user's transport is derived from with
// NewTransportForSession.
func (p *Protocol) NewTransport() (*http.Transport, error) {
	return p.newTransport(p.resolver, nil, nil)
}

// NewTransportForSession builds a transport bound to one virtual
// user: it dials through the user's resolver (per-user DNS mode),
// binds to the user's local address, and presents the user's client
// certificate when a per-user key manager is configured.
func (p *Protocol) NewTransportForSession(s *session.Session) (*http.Transport, error) {
	var cert *tls.Certificate
	if p.Engine.PerUserKeyManager != nil {
		var err error
		cert, err = p.Engine.PerUserKeyManager(s)
		if err != nil {
			return nil, fmt.Errorf("vuhttp: per-user key manager: %w", err)
		}
	}
	var localAddr net.Addr
	if addr, ok := p.LocalAddrFor(s); ok {
		localAddr = addr
	}
	return p.newTransport(p.ResolverFor(s), localAddr, cert)
}

func (p *Protocol) newTransport(res resolver.Resolver, localAddr net.Addr, cert *tls.Certificate) (*http.Transport, error) {
	tlsCfg := &tls.Config{}
	if cert != nil {
		tlsCfg.Certificates = []tls.Certificate{*cert}
	}
	t := &http.Transport{
		Proxy:           p.proxyFunc(),
		DialContext:     p.dialContext(res, localAddr),
		MaxConnsPerHost: p.Engine.MaxConnsPerHost,
		TLSClientConfig: tlsCfg,
	}
	if p.Engine.EnableHTTP2 {
		if err := http2.ConfigureTransport(t); err != nil {
			return nil, fmt.Errorf("vuhttp: configuring HTTP/2 transport: %w", err)
		}
	}
	return t, nil
}

// NewPriorKnowledgeTransport builds the HTTP/2 transport used for
// remotes recorded as speaking HTTP/2 without negotiation. It dials
// cleartext connections, so it also serves h2c endpoints.
func (p *Protocol) NewPriorKnowledgeTransport() *http2.Transport {
	return &http2.Transport{
		AllowHTTP: true,
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			return p.dialContext(p.resolver, nil)(ctx, network, addr)
		},
	}
}

// proxyFunc returns the transport proxy callback honoring the
// exception set, or nil for direct connections.
func (p *Protocol) proxyFunc() func(r *http.Request) (*url.URL, error) {
	if p.Proxy.URL == nil {
		return nil
	}
	return func(r *http.Request) (*url.URL, error) {
		if p.Proxy.Bypass(r.URL.Hostname()) {
			return nil, nil
		}
		return p.Proxy.URL, nil
	}
}

// dialContext returns a dialer resolving through res and trying each
// resolved address in order.
func (p *Protocol) dialContext(res resolver.Resolver, localAddr net.Addr) func(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
		LocalAddr: localAddr,
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		if net.ParseIP(host) != nil {
			return dialer.DialContext(ctx, network, addr)
		}
		addrs, err := res.LookupHost(ctx, host)
		if err != nil {
			return nil, err
		}
		var lastErr error
		for _, a := range addrs {
			conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(a, port))
			if err == nil {
				return conn, nil
			}
			lastErr = err
		}
		if lastErr == nil {
			lastErr = fmt.Errorf("vuhttp: no addresses resolved for %s", host)
		}
		return nil, lastErr
	}
}
