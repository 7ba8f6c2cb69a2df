// Package netutil holds the client-IP heuristics used for GeoIP fallback.
package netutil

import (
	"net/netip"
	"strings"
)

// reservedPrefixes lists address ranges that GeoIP cannot place.
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),      // "this" network
	netip.MustParsePrefix("127.0.0.0/8"),    // loopback
	netip.MustParsePrefix("10.0.0.0/8"),     // RFC1918
	netip.MustParsePrefix("172.16.0.0/12"),  // RFC1918
	netip.MustParsePrefix("192.168.0.0/16"), // RFC1918
	netip.MustParsePrefix("169.254.0.0/16"), // link-local
	netip.MustParsePrefix("100.64.0.0/10"),  // carrier-grade NAT
	netip.MustParsePrefix("::/128"),         // unspecified
	netip.MustParsePrefix("::1/128"),        // loopback
	netip.MustParsePrefix("fe80::/10"),      // link-local
	netip.MustParsePrefix("fc00::/7"),       // unique local
}

// IsLocalOrUnusableIP reports whether ip is empty, unparsable, or inside a
// reserved range, i.e. useless for GeoIP resolution.
func IsLocalOrUnusableIP(ip string) bool {
	addr, ok := parseHost(ip)
	if !ok {
		return true
	}
	addr = addr.Unmap()
	for _, p := range reservedPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// parseHost parses an address that may carry a port ("203.0.113.7:4711",
// "[2001:db8::1]:443") or IPv6 brackets.
func parseHost(s string) (netip.Addr, bool) {
	s = strings.TrimSpace(s)
	if addr, err := netip.ParseAddr(s); err == nil {
		return addr, true
	}
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr(), true
	}
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		if addr, err := netip.ParseAddr(s[1 : len(s)-1]); err == nil {
			return addr, true
		}
	}
	return netip.Addr{}, false
}

// SelectClientIP picks the address to geolocate from a forwarded-for chain.
// The first IPv4 entry wins because GeoIP databases resolve v4 more reliably;
// otherwise the first entry is returned. Ports and brackets are stripped.
func SelectClientIP(chain string) string {
	var first string
	for _, part := range strings.Split(chain, ",") {
		candidate := strings.TrimSpace(part)
		if candidate == "" {
			continue
		}
		addr, ok := parseHost(candidate)
		if ok && addr.Unmap().Is4() {
			return addr.Unmap().String()
		}
		if first == "" {
			first = candidate
			if ok {
				first = addr.String()
			}
		}
	}
	return first
}
