package httpx

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// TrustedProxies lists the peers whose X-Forwarded-For and X-Real-IP headers
// are believed. A nil list trusts nobody.
type TrustedProxies []netip.Prefix

// ParseTrustedProxies reads a comma separated list of CIDRs or bare
// addresses, e.g. "10.0.0.0/8, 127.0.0.1".
func ParseTrustedProxies(list string) (TrustedProxies, error) {
	var out TrustedProxies
	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		if strings.Contains(field, "/") {
			p, err := netip.ParsePrefix(field)
			if err != nil {
				return nil, fmt.Errorf("httpx: trusted proxy %q: %w", field, err)
			}
			out = append(out, p.Masked())
			continue
		}

		addr, err := netip.ParseAddr(field)
		if err != nil {
			return nil, fmt.Errorf("httpx: trusted proxy %q: %w", field, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func (t TrustedProxies) trusts(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range t {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP is a KeyExtractor. Forwarding headers are only consulted when the
// direct peer is trusted; X-Forwarded-For is then walked right to left and
// the first untrusted hop wins.
func (t TrustedProxies) ClientIP(r *http.Request) string {
	peer := IPKeyExtractor(r)
	peerAddr, err := netip.ParseAddr(peer)
	if err != nil || !t.trusts(peerAddr) {
		return peer
	}

	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		client := peer
		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			client = hop.Unmap().String()
			if !t.trusts(hop) {
				break
			}
		}
		return client
	}

	if xri, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return xri.Unmap().String()
	}
	return peer
}

// IPKeyExtractor returns the host part of RemoteAddr. Forwarding headers are
// ignored; use TrustedProxies.ClientIP behind a reverse proxy.
func IPKeyExtractor(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
