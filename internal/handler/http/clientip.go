package http

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ProxyList holds the networks whose forwarding headers are believed. A nil or
// empty list trusts nobody, so the client IP is always the socket peer.
type ProxyList struct {
	nets []*net.IPNet
}

// ParseProxyList accepts plain IPs and CIDR ranges.
func ParseProxyList(entries []string) (*ProxyList, error) {
	p := &ProxyList{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", entry)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			p.nets = append(p.nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		p.nets = append(p.nets, n)
	}
	return p, nil
}

func (p *ProxyList) trusts(addr string) bool {
	if p == nil {
		return false
	}
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range p.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the socket peer unless it is a trusted proxy. Behind trusted
// proxies X-Forwarded-For is walked right to left and the first untrusted hop wins;
// X-Real-IP is used when no X-Forwarded-For is present.
func (p *ProxyList) ClientIP(r *http.Request) string {
	peer := remoteHost(r.RemoteAddr)
	if !p.trusts(peer) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if net.ParseIP(hop) == nil {
				break
			}
			if !p.trusts(hop) || i == 0 {
				return hop
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
		return ip
	}
	return peer
}

func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
