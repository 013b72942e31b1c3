package httpclient

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ParseRetryAfter reads a Retry-After header given in seconds or as an HTTP date.
func ParseRetryAfter(headers http.Header) time.Duration {
	value := strings.TrimSpace(headers.Get("Retry-After"))
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

// ParseOpenAIHeaders extracts rate limit info from OpenAI-compatible API headers.
// Reset headers are durations such as "1s" or "6m0s".
func ParseOpenAIHeaders(headers http.Header) RateLimitInfo {
	info := RateLimitInfo{RetryAfter: ParseRetryAfter(headers)}

	for _, header := range []string{"x-ratelimit-reset-requests", "x-ratelimit-reset-tokens"} {
		if d, err := time.ParseDuration(headers.Get(header)); err == nil && d > 0 {
			info.ResetAfter = d
			break
		}
	}

	if n, err := strconv.Atoi(headers.Get("x-ratelimit-remaining-requests")); err == nil {
		info.RequestsRemaining = n
	}
	if n, err := strconv.Atoi(headers.Get("x-ratelimit-remaining-tokens")); err == nil {
		info.TokensRemaining = n
	}

	return info
}
