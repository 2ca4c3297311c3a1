// Package llm provides a resilient OpenAI-compatible chat-completions client
// used as the classification gateway
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	stderrs "errors"
	"io"
	"net/http"
	"strings"
	"time"

	perr "bothunt/internal/platform/errors"
	"bothunt/internal/platform/logger"
)

const (
	baseURLDefault   = "https://api.openai.com/v1"
	defaultTimeout   = 60 * time.Second
	defaultUA        = "bothunt"
	defaultMaxRetry  = 5
	defaultRetryBase = 500 * time.Millisecond
	defaultMaxTokens = 8
)

// Options configures the Client
type Options struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Timeout   time.Duration

	// Retry config for transient and rate limited responses
	MaxRetries int
	RetryBase  time.Duration

	// MaxTokens caps the completion size; verdicts are one token plus slack,
	// batched runs size this up per batch
	MaxTokens int
}

// Client is a minimal chat-completions client with retry and rate limit handling
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	now   func() time.Time
	sleep func(time.Duration)
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = defaultMaxTokens
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("llm"),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Classify sends one system+user exchange and returns the raw reply text
// Temperature is pinned to zero so repeated calls stay deterministic enough
// to cache. Rate limits and transient server errors are retried with
// exponential backoff; an exhausted retry budget propagates the last error
func (c *Client) Classify(ctx context.Context, system, user, model string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       model,
		Temperature: 0,
		MaxTokens:   c.opts.MaxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeJSON, "llm marshal request failed")
	}

	url := c.opts.BaseURL + "/chat/completions"
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "llm new request failed")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Content-Type", "application/json")
		if c.opts.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
		}

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if !c.shouldRetry(attempts) {
				return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "llm do failed")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("llm transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		rem, resetIn, retryAfter := parseRateHeaders(resp.Header)
		c.log.Debug().
			Str("model", model).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Int("rate_remaining", rem).
			Dur("rate_reset_in", resetIn).
			Int("retry_after_s", retryAfter).
			Msg("llm http response")

		switch {
		case resp.StatusCode == http.StatusOK:
			out, derr := decodeReply(resp.Body)
			if derr == nil {
				return out, nil
			}
			if !c.shouldRetry(attempts) {
				return "", derr
			}
			back := c.backoff(attempts)
			c.log.Warn().Err(derr).Dur("retry_in", back).Int("attempt", attempts).Msg("llm malformed reply retrying")
			c.sleep(back)
			attempts++
			continue

		case resp.StatusCode == http.StatusTooManyRequests:
			wait := computeWait(rem, resetIn, retryAfter)
			if wait <= 0 {
				wait = c.backoff(attempts)
			}
			if !c.shouldRetry(attempts) {
				_ = drainAndClose(resp.Body)
				return "", perr.TooManyRequestsf("llm rate limited")
			}
			c.log.Warn().Dur("sleep", wait).Int("attempt", attempts).Msg("llm rate limited backing off")
			_ = drainAndClose(resp.Body)
			c.sleep(wait)
			attempts++
			continue

		case resp.StatusCode >= 500:
			if !c.shouldRetry(attempts) {
				_ = drainAndClose(resp.Body)
				return "", perr.Unavailablef("llm transient server error %d", resp.StatusCode)
			}
			back := c.backoff(attempts)
			c.log.Warn().Int("status", resp.StatusCode).Dur("retry_in", back).Int("attempt", attempts).Msg("llm transient error retrying")
			_ = drainAndClose(resp.Body)
			c.sleep(back)
			attempts++
			continue

		default:
			// 4xx besides 429 do not recover on retry
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			reason := strings.TrimSpace(string(body))
			if reason == "" {
				reason = http.StatusText(resp.StatusCode)
			}
			return "", perr.FromProviderf(resp.StatusCode, stderrs.New(reason), "llm status %d", resp.StatusCode)
		}
	}
}

// decodeReply extracts choices[0].message.content from a 200 response
// Empty content counts as malformed so the caller retries rather than
// classifying on a blank verdict
func decodeReply(rc io.ReadCloser) (string, error) {
	defer func() { _ = rc.Close() }()

	var cr chatResponse
	if err := json.NewDecoder(io.LimitReader(rc, 1<<20)).Decode(&cr); err != nil {
		return "", perr.MalformedResponsef("llm decode response: %v", err)
	}
	if cr.Error != nil && cr.Error.Message != "" {
		return "", perr.MalformedResponsef("llm provider error in 200 body: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return "", perr.MalformedResponsef("llm response has no choices")
	}
	content := cr.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", perr.MalformedResponsef("llm response content is empty")
	}
	return content, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase
	// simple exponential with cap
	ms := int64(d / time.Millisecond)
	ms = ms << uint(attempt)
	max := int64(30 * time.Second / time.Millisecond)
	if ms > max {
		ms = max
	}
	return time.Duration(ms) * time.Millisecond
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}
