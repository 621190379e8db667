package fetcher

import (
	"net/http"
	"strings"
)

// challengeWindowBytes is how much of the body the classifier inspects.
const challengeWindowBytes = 2000

// challengeMarkers are lower-case substrings whose presence in the body
// window marks a response as an anti-bot interstitial. The list is heuristic
// and matches observed reference behavior; it carries no correctness
// guarantee on unseen sites.
var challengeMarkers = []string{
	"cloudflare",
	"just a moment",
	"waf",
	"bot verification",
	"incapsula",
	"attention required",
	"access denied",
	"captcha",
}

// IsChallenge reports whether a response looks like an anti-bot challenge
// page: HTTP 403, or any known marker within the first 2000 bytes of the
// body (case-insensitive).
func IsChallenge(statusCode int, body []byte) bool {
	if statusCode == http.StatusForbidden {
		return true
	}

	window := body
	if len(window) > challengeWindowBytes {
		window = window[:challengeWindowBytes]
	}

	lowered := strings.ToLower(string(window))
	for _, marker := range challengeMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}

	return false
}
