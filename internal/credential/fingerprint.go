// SPDX-License-Identifier: MPL-2.0

package credential

import (
	"crypto"
	"crypto/sha256"
	"crypto/x509"
	"fmt"
	"strings"
)

// PublicKeyFingerprint returns the colon-separated SHA-256 of the PKIX encoding
// of pub, or "" when pub cannot be marshaled.
func PublicKeyFingerprint(pub crypto.PublicKey) string {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(der)
	parts := make([]string, len(sum))
	for i, b := range sum {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, ":")
}

// CertificateFingerprint fingerprints the public key of cert.
func CertificateFingerprint(cert *x509.Certificate) string {
	if cert == nil {
		return ""
	}
	return PublicKeyFingerprint(cert.PublicKey)
}

// KeyFingerprint fingerprints the public half of key.
func KeyFingerprint(key crypto.Signer) string {
	if key == nil {
		return ""
	}
	return PublicKeyFingerprint(key.Public())
}
