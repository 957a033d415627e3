// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

package testhelpers

const (
	// CAFile is the fixture file name for the CA certificate.
	CAFile = "ca.crt"
	// ClientCertFile is the fixture file name for the client certificate alone.
	ClientCertFile = "client.crt"
	// ClientKeyFile is the fixture file name for the client private key alone.
	ClientKeyFile = "client.key"
	// ClientBundleFile is the fixture file name for the combined client cert+key PEM.
	ClientBundleFile = "client.pem"
	// InvalidFile is the fixture file name holding bytes that are not PEM.
	InvalidFile = "invalid.bin"

	// ServerName is the DNS name present in the fixture server certificate.
	ServerName = "localhost"

	// AccResourcePrefix prefixes resource names created by acceptance tests.
	AccResourcePrefix = "tf-acc-remote-file"
)
