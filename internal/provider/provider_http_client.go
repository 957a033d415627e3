// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/devops-wiz/terraform-provider-tlsfetch/internal/fetch"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// retryJitter spreads concurrent retries against the same server.
const retryJitter = 0.2

// buildFetcher constructs the fetcher with timeouts and the optional retry/backoff policy.
func buildFetcher(rc resolvedConfig, version string) *fetch.Fetcher {
	timeout := time.Duration(rc.httpTimeoutSeconds) * time.Second
	opts := fetch.Options{
		ConnectTimeout:   timeout,
		ReadTimeout:      timeout,
		ProgressInterval: time.Duration(rc.progressIntervalMs) * time.Millisecond,
		UserAgent:        fmt.Sprintf("devops-wiz/terraform-provider-tlsfetch/%s", version),
	}
	if rc.retryOn4295xx {
		opts.WrapClient = retryWrapper(rc)
	}
	return fetch.New(opts)
}

// retryWrapper returns a fetch.Options.WrapClient that layers go-retryablehttp on
// the per-fetch client. The final response is passed through unchanged so status
// handling stays in one place.
func retryWrapper(rc resolvedConfig) func(*http.Client) *http.Client {
	return func(c *http.Client) *http.Client {
		rcClient := retryablehttp.NewClient()
		rcClient.HTTPClient = c
		rcClient.RetryMax = rc.retryMaxAttempts
		rcClient.RetryWaitMin = time.Duration(rc.retryInitialBackoffMs) * time.Millisecond
		rcClient.RetryWaitMax = time.Duration(rc.retryMaxBackoffMs) * time.Millisecond
		rcClient.CheckRetry = checkRetry
		rcClient.Backoff = retryBackoff
		rcClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
		rcClient.Logger = nil
		rcClient.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
			if attempt > 0 {
				tflog.Debug(req.Context(), "retrying download", map[string]interface{}{"attempt": attempt})
			}
		}
		return rcClient.StandardClient()
	}
}

// checkRetry adapts ShouldRetry to go-retryablehttp.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	return ShouldRetry(status, err), nil
}

// retryBackoff honors Retry-After on 429/503 and otherwise uses BackoffDuration.
func retryBackoff(lo, hi time.Duration, attemptNum int, resp *http.Response) time.Duration {
	if resp != nil && (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable) {
		if ra := ParseRetryAfter(resp.Header); ra > 0 {
			if ra > hi {
				return hi
			}
			return ra
		}
	}
	return BackoffDuration(attemptNum+1, lo, hi, retryJitter)
}
