// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

package credential

import (
	"crypto"
	"crypto/x509"
	"errors"
	"os"
)

const (
	whatCertificate = "certificate"
	whatPrivateKey  = "private key"
	whatAuthority   = "CA certificate"
)

// Config holds the raw inputs for one fetch attempt.
type Config struct {
	ClientCert Input
	ClientKey  Input
	CA         []Input
}

// Credentials is the resolved material for one fetch attempt. It is not
// modified after Resolve returns.
type Credentials struct {
	// ClientCertificate is nil when no client certificate was configured.
	ClientCertificate *x509.Certificate
	// ClientPrivateKey is nil when no key was configured or embedded in the certificate.
	ClientPrivateKey crypto.Signer
	// TrustedAuthorities preserves the order of the configured CA inputs.
	TrustedAuthorities []*x509.Certificate
}

// IsEmpty reports whether no material was resolved at all.
func (c *Credentials) IsEmpty() bool {
	return c == nil || (c.ClientCertificate == nil && c.ClientPrivateKey == nil && len(c.TrustedAuthorities) == 0)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithReadFile replaces the function used to read Path inputs.
func WithReadFile(fn func(name string) ([]byte, error)) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.readFile = fn
		}
	}
}

// Resolver reads and parses credential inputs. It keeps no state between
// calls and is safe for concurrent use.
type Resolver struct {
	readFile func(name string) ([]byte, error)
}

// NewResolver returns a Resolver reading Path inputs from the local filesystem.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{readFile: os.ReadFile}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveMaterial returns the bytes behind in: the file contents for a Path,
// the string itself for a Literal, and nil for Absent.
func (r *Resolver) ResolveMaterial(in Input) ([]byte, error) {
	switch in.kind {
	case Path:
		b, err := r.readFile(in.value)
		if err != nil {
			return nil, &ReadError{Path: in.value, Err: err}
		}
		return b, nil
	case Literal:
		return []byte(in.value), nil
	default:
		return nil, nil
	}
}

// ResolveClientCertificate parses certIn as a single X.509 certificate.
// It returns nil, nil when certIn is absent.
func (r *Resolver) ResolveClientCertificate(certIn Input) (*x509.Certificate, error) {
	if certIn.IsAbsent() {
		return nil, nil
	}
	return r.certificate(certIn, whatCertificate)
}

// ResolveClientKey parses keyIn as a private key. With no keyIn, the material
// of certIn is probed for an embedded key instead; a certificate without one
// yields nil, nil. Read errors are returned in both cases.
func (r *Resolver) ResolveClientKey(keyIn, certIn Input) (crypto.Signer, error) {
	switch {
	case !keyIn.IsAbsent():
		return r.privateKey(keyIn)
	case !certIn.IsAbsent():
		key, err := r.privateKey(certIn)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				return nil, nil
			}
			return nil, err
		}
		return key, nil
	default:
		return nil, nil
	}
}

// ResolveAuthorities parses each CA input in order. Absent entries are skipped;
// a present entry that does not parse is an error.
func (r *Resolver) ResolveAuthorities(caIn []Input) ([]*x509.Certificate, error) {
	if len(caIn) == 0 {
		return nil, nil
	}
	out := make([]*x509.Certificate, 0, len(caIn))
	for _, in := range caIn {
		if in.IsAbsent() {
			continue
		}
		cert, err := r.certificate(in, whatAuthority)
		if err != nil {
			return nil, err
		}
		out = append(out, cert)
	}
	return out, nil
}

// Resolve resolves every input of cfg. The first error aborts resolution.
func (r *Resolver) Resolve(cfg Config) (*Credentials, error) {
	cert, err := r.ResolveClientCertificate(cfg.ClientCert)
	if err != nil {
		return nil, err
	}
	key, err := r.ResolveClientKey(cfg.ClientKey, cfg.ClientCert)
	if err != nil {
		return nil, err
	}
	cas, err := r.ResolveAuthorities(cfg.CA)
	if err != nil {
		return nil, err
	}
	return &Credentials{
		ClientCertificate:  cert,
		ClientPrivateKey:   key,
		TrustedAuthorities: cas,
	}, nil
}

func (r *Resolver) certificate(in Input, what string) (*x509.Certificate, error) {
	material, err := r.ResolveMaterial(in)
	if err != nil {
		return nil, err
	}
	cert, err := parseCertificate(material)
	if err != nil {
		return nil, &ParseError{What: what, Source: in.source(), Err: err}
	}
	return cert, nil
}

func (r *Resolver) privateKey(in Input) (crypto.Signer, error) {
	material, err := r.ResolveMaterial(in)
	if err != nil {
		return nil, err
	}
	key, err := parsePrivateKey(material)
	if err != nil {
		return nil, &ParseError{What: whatPrivateKey, Source: in.source(), Err: err}
	}
	return key, nil
}
