package inspector

import (
	"net/http"
	"net/url"
	"strings"
)

// OriginPolicy decides which browser origins may open an inspector socket.
// Requests without an Origin header (non-browser clients) are always
// allowed, as are localhost origins unless AllowLocalhost is false.
type OriginPolicy struct {
	AllowLocalhost bool
	Allowed        []string
}

func (p OriginPolicy) Check(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	origin = normalizeOrigin(origin)

	if p.AllowLocalhost && isLocalhost(origin) {
		return true
	}
	for _, allowed := range p.Allowed {
		if allowed == "*" || normalizeOrigin(allowed) == origin {
			return true
		}
	}
	return false
}

// WithOriginPolicy replaces the default policy, which accepts any origin.
func WithOriginPolicy(p OriginPolicy) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = p.Check
	}
}

func normalizeOrigin(origin string) string {
	origin = strings.ToLower(origin)
	return strings.TrimSuffix(origin, "/")
}

func isLocalhost(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
