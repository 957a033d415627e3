// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

// Package credential turns loosely typed client certificate, client key and CA
// inputs into parsed X.509 certificates and private keys.
//
// Every input is either a filesystem path, literal PEM text, or absent. When a
// single free-form string is all the caller has, ParseInput classifies it with
// the same rule the configuration surface documents: a value starting with a
// path separator or a drive-letter prefix (`C:`) is a path, anything else is
// literal content. Relative paths are therefore literal, even if a file with
// that name exists.
//
// A client certificate configured without a separate key is also probed for an
// embedded private key, so combined cert+key PEM bundles work without setting
// client_key. A bundle without a key simply yields no key.
package credential
