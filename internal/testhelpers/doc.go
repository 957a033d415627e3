// Package testhelpers provides shared testing utilities used across unit and
// acceptance tests.
//
// Intended use:
//   - Unit tests: runtime-generated PKI (CA, client and server certificates),
//     PEM fixture files, and an mTLS httptest server.
//   - Acceptance tests: environment pre-checks and HCL configuration builders
//     for the tlsfetch provider and its resources.
//
// Conventions:
//   - Keep dependencies minimal and avoid importing production-only paths.
//   - Ensure deterministic outputs: fixture file names are stable and every
//     generated certificate is signed by the fixture CA unless stated otherwise.
//   - Never log private key material.
//
// This package is for test code and is not part of the provider's public API.
package testhelpers
