// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

// Package fetch downloads a remote file over HTTPS with per-fetch mutual TLS
// credentials.
//
// Each Fetch builds its own transport, binds the resolved credentials to that
// transport's TLS configuration right before the request is dispatched, and
// streams the body into a Sink. Nothing is shared between fetches, so
// concurrent fetches with different credentials cannot observe each other.
// The package never retries; callers that want retries wrap the client with
// Options.WrapClient.
package fetch
