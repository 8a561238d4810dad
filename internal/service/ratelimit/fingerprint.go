package ratelimit

import "fmt"

// Signals are the client environment signals the demo-mode fingerprint is
// derived from. Collisions are expected and acceptable: the fingerprint is
// a best-effort abuse deterrent, not a security boundary.
type Signals struct {
	ScreenWidth  int
	ScreenHeight int
	Timezone     string
	UserAgent    string
}

const userAgentPrefixLen = 50

// Fingerprint derives a stable identifier from a small tuple of
// environment signals using a simple 32-bit rolling hash.
func Fingerprint(s Signals) string {
	ua := s.UserAgent
	if len(ua) > userAgentPrefixLen {
		ua = ua[:userAgentPrefixLen]
	}

	raw := fmt.Sprintf("%dx%d|%s|%s", s.ScreenWidth, s.ScreenHeight, s.Timezone, ua)

	var h int32
	for _, r := range raw {
		h = h<<5 - h + int32(r)
	}
	return fmt.Sprintf("fp_%08x", uint32(h))
}
