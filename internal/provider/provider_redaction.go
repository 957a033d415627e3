// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"strings"

	"github.com/devops-wiz/terraform-provider-tlsfetch/internal/credential"
)

// redactSecretValue replaces a sensitive value with a stable token.
// If the value is empty, it returns the empty string to avoid adding tokens where not needed.
func redactSecretValue(v string) string {
	if v == "" {
		return ""
	}
	return "[REDACTED]"
}

// inlineSecret returns v when it would be used as inline key material, "" otherwise.
// Paths are not secret and stay readable in diagnostics.
func inlineSecret(v string) string {
	if credential.ParseInput(v).Kind() != credential.Literal {
		return ""
	}
	return v
}

// sanitizeValidationError returns a copy of the given validation error with secrets redacted.
func sanitizeValidationError(e validationErr, rc resolvedConfig) validationErr {
	// Build a mapping of raw -> redacted tokens
	replacements := map[string]string{}
	if key := inlineSecret(rc.clientKey); key != "" {
		replacements[key] = redactSecretValue(key)
		if t := strings.TrimSpace(key); t != key {
			replacements[t] = redactSecretValue(t)
		}
	}
	// A certificate value may be a combined bundle carrying the key.
	if cert := inlineSecret(rc.clientCert); cert != "" && strings.Contains(cert, "PRIVATE KEY") {
		replacements[cert] = redactSecretValue(cert)
	}

	summary := e.summary
	detail := e.detail
	for raw, red := range replacements {
		if summary != "" {
			summary = strings.ReplaceAll(summary, raw, red)
		}
		if detail != "" {
			detail = strings.ReplaceAll(detail, raw, red)
		}
	}

	e.summary = RedactSecrets(summary)
	e.detail = RedactSecrets(detail)
	return e
}
