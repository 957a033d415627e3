// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

package provider

// Centralized attribute names used in provider configuration schema and validation
const (
	attrClientCert          = "client_cert"
	attrClientKey           = "client_key"
	attrCA                  = "ca"
	attrHTTPTimeoutSeconds  = "http_timeout_seconds"
	attrRetryOn4295xx       = "retry_on_429_5xx"
	attrRetryMaxAttempts    = "retry_max_attempts"
	attrRetryInitialBackoff = "retry_initial_backoff_ms"
	attrRetryMaxBackoff     = "retry_max_backoff_ms"
	attrProgressInterval    = "progress_interval_ms"
	attrOperationTimeouts   = "operation_timeouts"
)

// Environment variables consulted when the provider block leaves a credential unset.
const (
	envClientCert = "TLSFETCH_CLIENT_CERT"
	envClientKey  = "TLSFETCH_CLIENT_KEY"
	envCA         = "TLSFETCH_CA"
)

// Centralized provider defaults
const (
	defaultHTTPTimeoutSeconds    = 300
	defaultRetryOn4295xx         = false
	defaultRetryMaxAttempts      = 4
	defaultRetryInitialBackoffMs = 500
	defaultRetryMaxBackoffMs     = 5000
	defaultProgressIntervalMs    = 1000
	defaultFilePermission        = "0644"
)
