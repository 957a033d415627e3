// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/devops-wiz/terraform-provider-tlsfetch/internal/credential"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// Defaults applied by New for zero Options fields.
const (
	DefaultConnectTimeout   = 300 * time.Second
	DefaultReadTimeout      = 300 * time.Second
	DefaultProgressInterval = time.Second
	DefaultUserAgent        = "terraform-provider-tlsfetch"

	maxErrorBodyBytes = 1024
)

// Options configures a Fetcher. It is shared by every fetch the Fetcher runs,
// so it must not carry per-fetch credentials.
type Options struct {
	// ConnectTimeout bounds dialing and the TLS handshake.
	ConnectTimeout time.Duration
	// ReadTimeout bounds the wait for response headers and every gap between body reads.
	ReadTimeout time.Duration
	// ProgressInterval is the minimum time between progress callbacks.
	ProgressInterval time.Duration
	UserAgent        string
	// NewTransport returns a fresh transport for each fetch. Defaults to go-cleanhttp.
	NewTransport func() *http.Transport
	// WrapClient may decorate the per-fetch client, e.g. with a retry layer.
	WrapClient func(*http.Client) *http.Client
}

// Request describes one fetch.
type Request struct {
	URL         string
	Header      http.Header
	Credentials *credential.Credentials
	Progress    ProgressFunc
}

// Result is the response metadata of a completed fetch.
type Result struct {
	StatusCode    int
	Status        string
	Header        http.Header
	ContentLength int64
	BytesWritten  int64
	SHA256        string
	ETag          string
	LastModified  string
	CacheControl  string
}

// Fetcher runs streaming GET requests. It is safe for concurrent use.
type Fetcher struct {
	opts Options
}

// New returns a Fetcher with defaults filled in.
func New(opts Options) *Fetcher {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.NewTransport == nil {
		opts.NewTransport = cleanhttp.DefaultTransport
	}
	return &Fetcher{opts: opts}
}

// Fetch downloads req.URL into sink. On success the sink is committed; on any
// error it is aborted. Errors from the network are *TransportError.
func (f *Fetcher) Fetch(ctx context.Context, req Request, sink Sink) (res *Result, err error) {
	defer func() {
		if err != nil {
			if aerr := sink.Abort(); aerr != nil {
				tflog.Warn(ctx, "failed to discard partial download", map[string]interface{}{"error": aerr.Error()})
			}
		}
	}()

	u, err := parseURL(req.URL)
	if err != nil {
		return nil, err
	}
	display := u.Redacted()
	ctx = tflog.SetField(ctx, "url", display)

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	client := f.client(req.Credentials)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vals := range req.Header {
		for _, v := range vals {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", f.opts.UserAgent)
	}

	tflog.Debug(ctx, "fetching remote file", credentialFields(req.Credentials))
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: OpRequest, URL: display, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Op:         OpStatus,
			URL:        display,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       readSnippet(resp.Body, maxErrorBodyBytes),
		}
	}

	body := newIdleTimeoutReader(resp.Body, f.opts.ReadTimeout, func() { cancel(ErrReadTimeout) })
	defer body.stop()
	progress := newProgressReporter(req.Progress, resp.ContentLength, f.opts.ProgressInterval)

	hash := sha256.New()
	n, err := io.Copy(io.MultiWriter(sink, hash), &countingReader{r: body, onRead: progress.add})
	progress.finish()
	if err != nil {
		if cause := context.Cause(ctx); errors.Is(cause, ErrReadTimeout) {
			err = cause
		}
		return nil, &TransportError{Op: OpReadBody, URL: display, StatusCode: resp.StatusCode, Status: resp.Status, Err: err}
	}
	if err := sink.Commit(); err != nil {
		return nil, err
	}

	res = &Result{
		StatusCode:    resp.StatusCode,
		Status:        resp.Status,
		Header:        resp.Header.Clone(),
		ContentLength: resp.ContentLength,
		BytesWritten:  n,
		SHA256:        hex.EncodeToString(hash.Sum(nil)),
		ETag:          resp.Header.Get("ETag"),
		LastModified:  resp.Header.Get("Last-Modified"),
		CacheControl:  resp.Header.Get("Cache-Control"),
	}
	tflog.Debug(ctx, "fetched remote file", map[string]interface{}{"status": res.StatusCode, "bytes": n})
	return res, nil
}

// client builds the per-fetch client: a new transport with timeouts and
// credentials applied, optionally wrapped.
func (f *Fetcher) client(creds *credential.Credentials) *http.Client {
	t := f.opts.NewTransport()
	dialer := &net.Dialer{Timeout: f.opts.ConnectTimeout, KeepAlive: 30 * time.Second}
	t.DialContext = dialer.DialContext
	t.TLSHandshakeTimeout = f.opts.ConnectTimeout
	t.ResponseHeaderTimeout = f.opts.ReadTimeout
	// Connections carry this fetch's client certificate; never keep them around.
	t.DisableKeepAlives = true
	ConfigureTransport(t, creds)

	c := &http.Client{Transport: t}
	if f.opts.WrapClient != nil {
		c = f.opts.WrapClient(c)
	}
	return c
}

func parseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid source URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("invalid source URL %q: scheme must be https or http", u.Redacted())
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid source URL %q: missing host", u.Redacted())
	}
	return u, nil
}

func readSnippet(r io.Reader, max int) string {
	b, _ := io.ReadAll(io.LimitReader(r, int64(max)+1))
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		cut := max
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}

func credentialFields(creds *credential.Credentials) map[string]interface{} {
	fields := map[string]interface{}{
		"client_cert": false,
		"client_key":  false,
		"authorities": 0,
	}
	if creds == nil {
		return fields
	}
	if creds.ClientCertificate != nil {
		fields["client_cert"] = true
		fields["client_cert_fingerprint"] = credential.CertificateFingerprint(creds.ClientCertificate)
	}
	fields["client_key"] = creds.ClientPrivateKey != nil
	fields["authorities"] = len(creds.TrustedAuthorities)
	return fields
}
