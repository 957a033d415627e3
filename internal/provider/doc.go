// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

// Package provider implements the tlsfetch Terraform provider and its
// tlsfetch_remote_file resource.
//
// Highlights:
//   - Credentials: client certificate, client key, and CA list as file paths or inline PEM;
//     provider-level defaults with TLSFETCH_* environment fallbacks.
//   - Lazy resolution: credential files are read on every download, never at plan time.
//   - Timeouts & retries: connect/read timeouts and optional retry on 429/5xx with capped backoff; honors Retry-After.
//   - Drift: a destination file that disappears or changes content is downloaded again on the next apply.
//   - Redaction: inline key material never appears in diagnostics or logs.
//
// Further reading:
//   - Configuration & env vars: docs/index.md#configuration
//   - Resource reference: docs/resources/remote_file.md
package provider
