package web

import (
	"net"
	"net/http"
	"strings"
)

// apiKeyHeader carries the optional caller identity.
const apiKeyHeader = "X-API-Key"

// clientIP extracts the caller's IP for rate limiting. The first entry of
// X-Forwarded-For wins when a proxy set it; otherwise the connection's
// remote address. An unparseable address buckets as "unknown" so such
// requests still share one window instead of bypassing the limiter.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := fwd
		if idx := strings.Index(fwd, ","); idx >= 0 {
			first = fwd[:idx]
		}
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
	if host == "" {
		return "unknown"
	}
	return host
}

// apiKey extracts the optional API key from the request.
func apiKey(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(apiKeyHeader))
}
