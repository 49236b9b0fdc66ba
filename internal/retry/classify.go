package retry

import "strings"

// transientMarkers are the error-text signatures treated as retryable:
// rate limiting, network blips, and server overload.
var transientMarkers = []string{
	"rate limit",
	"rate_limit",
	"429",
	"econnreset",
	"timeout",
	"network",
	"502",
	"503",
	"overloaded",
}

// IsTransient reports whether the error looks likely to succeed on retry.
// Classification is by case-insensitive substring match on the error text;
// a nil error is not transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	text := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
