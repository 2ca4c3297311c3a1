package llm

import (
	"io"
	"net/http"
	"strconv"
	"time"
)

// parseRateHeaders reads the OpenAI-style rate limit headers
// reset values arrive as Go-parseable durations like "1s" or "6m0s"
func parseRateHeaders(h http.Header) (remaining int, resetIn time.Duration, retryAfter int) {
	remaining = atoi(h.Get("x-ratelimit-remaining-requests"))
	if rs := h.Get("x-ratelimit-reset-requests"); rs != "" {
		if d, err := time.ParseDuration(rs); err == nil && d > 0 {
			resetIn = d
		}
	}
	retryAfter = atoi(h.Get("Retry-After"))
	return
}

// computeWait decides how long to wait after a 429 based on headers
// Retry-After wins, then the reset window when the quota is exhausted
func computeWait(remaining int, resetIn time.Duration, retryAfter int) time.Duration {
	if retryAfter > 0 {
		return time.Duration(retryAfter) * time.Second
	}
	if remaining <= 0 && resetIn > 0 {
		return resetIn
	}
	return 0
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	i, _ := strconv.Atoi(s)
	return i
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}
