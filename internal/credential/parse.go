// SPDX-License-Identifier: MPL-2.0

package credential

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
)

const (
	pemTypeCertificate   = "CERTIFICATE"
	pemTypeEncryptedKey  = "ENCRYPTED PRIVATE KEY"
	pemSuffixPrivateKey  = "PRIVATE KEY"
	pemHeaderProcType    = "Proc-Type"
	pemProcTypeEncrypted = "ENCRYPTED"
)

var errEncryptedKey = errors.New("encrypted private keys are not supported")

// findPEMBlock returns the first block accepted by match. found reports whether
// material contained any PEM block at all, so callers can fall back to DER.
func findPEMBlock(material []byte, match func(*pem.Block) bool) (block *pem.Block, found bool) {
	rest := material
	for {
		var b *pem.Block
		b, rest = pem.Decode(rest)
		if b == nil {
			return nil, found
		}
		found = true
		if match(b) {
			return b, true
		}
	}
}

// parseCertificate parses the first certificate in material. Later certificates
// in a bundle are ignored.
func parseCertificate(material []byte) (*x509.Certificate, error) {
	block, anyPEM := findPEMBlock(material, func(b *pem.Block) bool { return b.Type == pemTypeCertificate })
	if block != nil {
		return x509.ParseCertificate(block.Bytes)
	}
	if anyPEM {
		return nil, ErrNoPEMBlock
	}
	return x509.ParseCertificate(material)
}

// parsePrivateKey parses the first private key in material as PKCS#1, PKCS#8 or SEC1.
func parsePrivateKey(material []byte) (crypto.Signer, error) {
	block, anyPEM := findPEMBlock(material, func(b *pem.Block) bool { return strings.HasSuffix(b.Type, pemSuffixPrivateKey) })
	if block != nil {
		if block.Type == pemTypeEncryptedKey || strings.Contains(block.Headers[pemHeaderProcType], pemProcTypeEncrypted) {
			return nil, errEncryptedKey
		}
		return parsePrivateKeyDER(block.Bytes)
	}
	if anyPEM {
		return nil, ErrNoPEMBlock
	}
	return parsePrivateKeyDER(material)
}

func parsePrivateKeyDER(der []byte) (crypto.Signer, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		signer, ok := key.(crypto.Signer)
		if !ok {
			return nil, fmt.Errorf("unsupported private key type %T", key)
		}
		return signer, nil
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}
	return nil, errors.New("not a PKCS#1, PKCS#8 or SEC1 private key")
}
