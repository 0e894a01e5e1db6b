// Package privacy provides utilities for keeping personally identifiable
// information and credentials out of logs and diagnostics.
package privacy

import (
	"fmt"
	"net"
	"strings"
)

// MaskEmail redacts an email address for log output, keeping the first
// character of the local part and the full domain (e.g. "alice@example.com"
// -> "a***@example.com"). The domain stays visible because it identifies the
// tenant, not the person.
//
// Returns "***" for values that do not look like an email address.
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return "***"
	}
	if len(local) == 1 {
		return "***@" + domain
	}
	return local[:1] + "***@" + domain
}

// RedactSecret redacts a credential for diagnostics, surfacing only a short
// suffix so operators can tell configured keys apart. The full value is never
// returned: secrets shorter than 8 characters redact completely.
func RedactSecret(secret string) string {
	if len(secret) < 8 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

// AnonymizeIP truncates an IP address to remove the host-identifying portion.
//
// For IPv4 addresses, the last octet is zeroed (e.g., "192.168.1.47" -> "192.168.1.0"),
// effectively masking to a /24 network. For IPv6 addresses, only the /48 prefix
// is kept (e.g., "2001:db8:85a3::8a2e:370:7334" -> "2001:0db8:85a3::").
//
// Returns "invalid" for unparseable IP addresses, and "unknown" for empty strings.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "invalid"
	}

	// IPv4, including IPv4-mapped IPv6
	if v4 := parsed.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])
	}

	// IPv6: keep only the /48 prefix (first 6 of 16 bytes)
	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::",
		parsed[0], parsed[1],
		parsed[2], parsed[3],
		parsed[4], parsed[5])
}
