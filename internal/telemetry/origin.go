package telemetry

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// originChecker admits websocket upgrades from the same origins the CORS middleware
// allows. Patterns take at most one "*" wildcard, as in go-chi/cors. Requests without an
// Origin header (non-browser clients) and same-host requests are always admitted.
func originChecker(allowed []string) func(r *http.Request) bool {
	patterns := make([]string, len(allowed))
	for i, p := range allowed {
		patterns[i] = strings.ToLower(p)
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
			return true
		}
		if originAllowed(patterns, strings.ToLower(origin)) {
			return true
		}
		slog.Debug("Websocket origin rejected", "origin", origin)
		return false
	}
}

func originAllowed(patterns []string, origin string) bool {
	for _, p := range patterns {
		if p == "*" || p == origin {
			return true
		}
		prefix, suffix, ok := strings.Cut(p, "*")
		if ok && len(origin) >= len(prefix)+len(suffix) &&
			strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
			return true
		}
	}
	return false
}
