package probe

import "net/url"

// AllowedPort is the only port the HTTP layer lets callers probe.
const AllowedPort = 443

// DefaultStaticHosts are always permitted as probe targets.
var DefaultStaticHosts = []string{"www.google.com", "redcap.univ-lehavre.fr"}

// Allowlist is the anti-SSRF gate: only hosts listed here may be probed.
// It is immutable after construction and safe for concurrent use.
type Allowlist struct {
	static      []string
	endpointURL string
}

// NewAllowlist builds an allowlist from static hosts plus the hostname of
// endpointURL. An empty static slice selects DefaultStaticHosts, so
// configuration can replace the base hosts but never leave them out.
func NewAllowlist(static []string, endpointURL string) *Allowlist {
	if len(static) == 0 {
		static = DefaultStaticHosts
	}
	cp := make([]string, len(static))
	copy(cp, static)
	return &Allowlist{static: cp, endpointURL: endpointURL}
}

// ConfiguredHostname returns the hostname of an absolute endpoint URL.
// Empty, unparsable or host-less input yields ("", false).
func ConfiguredHostname(endpointURL string) (string, bool) {
	if endpointURL == "" {
		return "", false
	}
	u, err := url.Parse(endpointURL)
	if err != nil || u.Scheme == "" {
		return "", false
	}
	h := u.Hostname()
	if h == "" {
		return "", false
	}
	return h, true
}

// Hosts returns the permitted hosts, static ones first.
func (a *Allowlist) Hosts() []string {
	out := make([]string, 0, len(a.static)+1)
	seen := make(map[string]struct{}, len(a.static)+1)
	add := func(h string) {
		if h == "" {
			return
		}
		if _, ok := seen[h]; ok {
			return
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	for _, h := range a.static {
		add(h)
	}
	if h, ok := ConfiguredHostname(a.endpointURL); ok {
		add(h)
	}
	return out
}

// Allowed reports whether host is exactly one of Hosts().
func (a *Allowlist) Allowed(host string) bool {
	if host == "" {
		return false
	}
	for _, h := range a.Hosts() {
		if h == host {
			return true
		}
	}
	return false
}

// PortAllowed reports whether port may be probed by external callers.
func PortAllowed(port int) bool {
	return port == AllowedPort
}
