// Copyright 2026 The vuhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/miekg/dns"
)

// dnsTimeout bounds a single UDP exchange with one server.
const dnsTimeout = 5 * time.Second

// A UDP resolver queries an explicit list of DNS servers over UDP,
// bypassing the system resolver entirely. It implements the
// asynchronous DNS mode of the protocol configuration.
//
// Servers are tried in order; the first server returning a usable
// answer wins.
type UDP struct {
	servers []string
	client  *dns.Client
}

// NewUDP returns a resolver querying the given servers. Each server
// must be an address in "host:port" form; validation happens at the
// protocol-builder layer.
func NewUDP(servers []string) *UDP {
	return &UDP{
		servers: servers,
		client: &dns.Client{
			Net:     "udp",
			Timeout: dnsTimeout,
		},
	}
}

// LookupHost implements Resolver. It issues an A query per configured
// server until one returns at least one address.
func (u *UDP) LookupHost(ctx context.Context, host string) ([]string, error) {
	query := new(dns.Msg)
	query.Id = dns.Id()
	query.RecursionDesired = true
	query.Question = []dns.Question{{
		Name:   dns.Fqdn(host),
		Qtype:  dns.TypeA,
		Qclass: dns.ClassINET,
	}}
	var lastErr error
	for _, server := range u.servers {
		reply, _, err := u.client.ExchangeContext(ctx, query, server)
		if err != nil {
			lastErr = err
			continue
		}
		if reply.Rcode != dns.RcodeSuccess {
			lastErr = fmt.Errorf("resolver: %s answered %s for %s",
				server, dns.RcodeToString[reply.Rcode], host)
			continue
		}
		var addrs []string
		for _, rr := range reply.Answer {
			if a, ok := rr.(*dns.A); ok {
				addrs = append(addrs, a.A.String())
			}
		}
		if len(addrs) > 0 {
			return addrs, nil
		}
		lastErr = fmt.Errorf("resolver: %s returned no A records for %s", server, host)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("resolver: no DNS servers configured")
	}
	return nil, lastErr
}
