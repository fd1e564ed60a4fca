package github

import (
	"errors"

	"github.com/google/go-github/v57/github"
)

// IsRateLimit checks if an error is a GitHub API rate limit error.
// The webhook runtime uses this to answer 503 so the sender redelivers
// instead of treating the event as permanently failed.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}

	var rateLimitErr *github.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return true
	}

	var abuseRateLimitErr *github.AbuseRateLimitError
	return errors.As(err, &abuseRateLimitErr)
}
