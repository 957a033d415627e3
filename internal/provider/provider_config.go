// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"fmt"

	"github.com/devops-wiz/terraform-provider-tlsfetch/internal/credential"
	"github.com/hashicorp/terraform-plugin-framework/diag"
)

// configuration derivation (unified) to avoid duplicated parsing across sections
func deriveResolvedConfig(ctx context.Context, data TLSFetchProviderModel) (resolvedConfig, diag.Diagnostics) {
	var diags diag.Diagnostics

	// Credentials
	clientCert := readString(data.ClientCert, envClientCert)
	clientKey := readString(data.ClientKey, envClientKey)
	ca, _ := getKnownStrings(ctx, data.CA, attrCA, &diags)
	ca = readStringList(ca, !data.CA.IsNull() && !data.CA.IsUnknown(), envCA)

	// HTTP
	httpTimeoutSeconds := readInt64Default(data.HTTPTimeoutSeconds, defaultHTTPTimeoutSeconds)
	progressIntervalMs := readInt64Default(data.ProgressIntervalMs, defaultProgressIntervalMs)

	// Retry
	retryOn4295xx := readBoolDefault(data.RetryOn4295xx, defaultRetryOn4295xx)
	retryMaxAttempts := readInt64Default(data.RetryMaxAttempts, defaultRetryMaxAttempts)
	retryInitialBackoffMs := readInt64Default(data.RetryInitialBackoffMs, defaultRetryInitialBackoffMs)
	retryMaxBackoffMs := readInt64Default(data.RetryMaxBackoffMs, defaultRetryMaxBackoffMs)

	return resolvedConfig{
		clientCert:            clientCert,
		clientKey:             clientKey,
		ca:                    ca,
		httpTimeoutSeconds:    httpTimeoutSeconds,
		progressIntervalMs:    progressIntervalMs,
		retryOn4295xx:         retryOn4295xx,
		retryMaxAttempts:      retryMaxAttempts,
		retryInitialBackoffMs: retryInitialBackoffMs,
		retryMaxBackoffMs:     retryMaxBackoffMs,
	}, diags
}

// validation per-section
func validateHTTP(rc resolvedConfig) []validationErr {
	var errs []validationErr
	if rc.httpTimeoutSeconds < 1 || rc.httpTimeoutSeconds > 3600 {
		errs = append(errs, validationErr{attr: attrHTTPTimeoutSeconds, summary: "Invalid HTTP Timeout Configuration.", detail: fmt.Sprintf("http_timeout_seconds must be between 1 and 3600 seconds; got %d", rc.httpTimeoutSeconds)})
	}
	if rc.progressIntervalMs < 10 || rc.progressIntervalMs > 600000 {
		errs = append(errs, validationErr{attr: attrProgressInterval, summary: "Invalid Progress Interval Configuration.", detail: fmt.Sprintf("progress_interval_ms must be between 10 and 600000 milliseconds; got %d", rc.progressIntervalMs)})
	}
	return errs
}

func validateRetry(rc resolvedConfig) []validationErr {
	if !rc.retryOn4295xx {
		return nil
	}
	var errs []validationErr
	if rc.retryMaxAttempts < 1 || rc.retryMaxAttempts > 10 {
		errs = append(errs, validationErr{attr: attrRetryMaxAttempts, summary: "Invalid Retry Attempts Configuration.", detail: fmt.Sprintf("retry_max_attempts must be between 1 and 10; got %d", rc.retryMaxAttempts)})
	}
	if rc.retryInitialBackoffMs < 100 || rc.retryInitialBackoffMs > 600000 {
		errs = append(errs, validationErr{attr: attrRetryInitialBackoff, summary: "Invalid Retry Backoff Configuration.", detail: fmt.Sprintf("retry_initial_backoff_ms must be between 100 and 600000 milliseconds; got %d", rc.retryInitialBackoffMs)})
	}
	if rc.retryMaxBackoffMs < 100 || rc.retryMaxBackoffMs > 600000 {
		errs = append(errs, validationErr{attr: attrRetryMaxBackoff, summary: "Invalid Retry Backoff Configuration.", detail: fmt.Sprintf("retry_max_backoff_ms must be between 100 and 600000 milliseconds; got %d", rc.retryMaxBackoffMs)})
	}
	if rc.retryInitialBackoffMs > rc.retryMaxBackoffMs {
		errs = append(errs, validationErr{attr: attrRetryInitialBackoff, summary: "Invalid Retry Backoff Configuration.", detail: "retry_initial_backoff_ms must be less than or equal to retry_max_backoff_ms."})
	}
	return errs
}

// validateCredentials parses inline credential material up front. Paths are
// left alone: they are read on every fetch and may not exist until apply.
func validateCredentials(rc resolvedConfig) []validationErr {
	resolver := credential.NewResolver()
	var errs []validationErr

	if in := credential.ParseInput(rc.clientCert); in.Kind() == credential.Literal {
		if _, err := resolver.ResolveClientCertificate(in); err != nil {
			errs = append(errs, validationErr{attr: attrClientCert, summary: "Invalid Client Certificate Configuration.", detail: err.Error()})
		}
	}
	if in := credential.ParseInput(rc.clientKey); in.Kind() == credential.Literal {
		if _, err := resolver.ResolveClientKey(in, credential.Input{}); err != nil {
			errs = append(errs, validationErr{attr: attrClientKey, summary: "Invalid Client Key Configuration.", detail: err.Error()})
		}
	}
	for i, in := range credential.Inputs(rc.ca...) {
		if in.Kind() != credential.Literal {
			continue
		}
		if _, err := resolver.ResolveAuthorities([]credential.Input{in}); err != nil {
			errs = append(errs, validationErr{attr: attrCA, summary: "Invalid CA Configuration.", detail: fmt.Sprintf("ca[%d]: %v", i, err)})
		}
	}
	return errs
}

func validateResolvedConfig(rc resolvedConfig) []validationErr {
	var all []validationErr
	all = append(all, validateHTTP(rc)...)
	all = append(all, validateRetry(rc)...)
	all = append(all, validateCredentials(rc)...)

	// Before returning, sanitize any secrets from messages to prevent leakage.
	for i := range all {
		all[i] = sanitizeValidationError(all[i], rc)
	}
	return all
}
