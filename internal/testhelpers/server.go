// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

package testhelpers

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Header names set by ContentHandler.
const (
	HeaderClientCN = "X-Client-Cn"
	FixtureETag    = `"tlsfetch-fixture"`
	FixtureLastMod = "Mon, 02 Jan 2006 15:04:05 GMT"
)

// ServerOption tweaks the TLS config of a test server before it starts.
type ServerOption func(*tls.Config)

// WithOptionalClientCert lets clients connect without presenting a certificate.
func WithOptionalClientCert() ServerOption {
	return func(c *tls.Config) { c.ClientAuth = tls.VerifyClientCertIfGiven }
}

// NewMTLSServer starts an HTTPS server presenting the PKI server certificate and
// requiring a client certificate signed by the PKI CA. It is closed on cleanup.
func NewMTLSServer(t testing.TB, p *PKI, h http.Handler, opts ...ServerOption) *httptest.Server {
	t.Helper()
	srv := httptest.NewUnstartedServer(h)
	srv.TLS = &tls.Config{
		Certificates: []tls.Certificate{p.ServerTLSCert},
		ClientAuth:   tls.RequireAndVerifyClientCert,
		ClientCAs:    p.ClientPool(),
		MinVersion:   tls.VersionTLS12,
	}
	for _, opt := range opts {
		opt(srv.TLS)
	}
	srv.StartTLS()
	t.Cleanup(srv.Close)
	return srv
}

// ContentHandler serves body with fixture cache headers and echoes the
// verified client certificate's common name.
func ContentHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS != nil && len(r.TLS.PeerCertificates) > 0 {
			w.Header().Set(HeaderClientCN, r.TLS.PeerCertificates[0].Subject.CommonName)
		}
		w.Header().Set("ETag", FixtureETag)
		w.Header().Set("Last-Modified", FixtureLastMod)
		w.Header().Set("Cache-Control", "max-age=60")
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(body))
	})
}
