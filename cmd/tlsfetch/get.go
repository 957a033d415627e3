// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/devops-wiz/terraform-provider-tlsfetch/internal/credential"
	"github.com/devops-wiz/terraform-provider-tlsfetch/internal/fetch"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

const defaultTimeout = 300 * time.Second

type getOptions struct {
	output     string
	clientCert string
	clientKey  string
	ca         []string
	headers    []string
	timeout    time.Duration
	mode       string
	config     string
	noProgress bool
}

func newGetCommand() *cobra.Command {
	var o getOptions
	cmd := &cobra.Command{
		Use:   "get <url>",
		Short: "Download a URL to a file",
		Long: `Credential values starting with "/" or a drive letter are read as files;
anything else is used as inline PEM. Unset flags fall back to --config, then to
TLSFETCH_CLIENT_CERT, TLSFETCH_CLIENT_KEY and TLSFETCH_CA.

Examples:
  tlsfetch get https://files.internal/app.tar.gz --client-cert /etc/tls/client.pem --ca /etc/tls/ca.crt
  tlsfetch get https://files.internal/app.tar.gz -o /tmp/app.tar.gz --config ~/.tlsfetch.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, args[0], o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", "destination file (default: last URL path segment)")
	f.StringVar(&o.clientCert, "client-cert", "", "client certificate path or PEM; may also hold the key")
	f.StringVar(&o.clientKey, "client-key", "", "client private key path or PEM")
	f.StringArrayVar(&o.ca, "ca", nil, "additional trusted CA path or PEM (repeatable, in trust order)")
	f.StringArrayVarP(&o.headers, "header", "H", nil, "extra request header 'Name: value' (repeatable)")
	f.DurationVar(&o.timeout, "timeout", defaultTimeout, "connect and read timeout")
	f.StringVar(&o.mode, "mode", "0644", "destination file permission (octal)")
	f.StringVar(&o.config, "config", "", "YAML defaults file with client_cert, client_key, ca and timeout")
	f.BoolVar(&o.noProgress, "no-progress", false, "do not render a progress bar")
	return cmd
}

// credentialConfig merges flags over the config file over the environment.
func credentialConfig(cmd *cobra.Command, o getOptions, file defaults) credential.Config {
	env := envDefaults()
	pick := func(flag, flagVal, fileVal, envVal string) string {
		switch {
		case cmd.Flags().Changed(flag):
			return flagVal
		case fileVal != "":
			return fileVal
		default:
			return envVal
		}
	}
	ca := env.CA
	switch {
	case cmd.Flags().Changed("ca"):
		ca = o.ca
	case file.CA != nil:
		ca = file.CA
	}
	return credential.Config{
		ClientCert: credential.ParseInput(pick("client-cert", o.clientCert, file.ClientCert, env.ClientCert)),
		ClientKey:  credential.ParseInput(pick("client-key", o.clientKey, file.ClientKey, env.ClientKey)),
		CA:         credential.Inputs(ca...),
	}
}

func parseHeaders(raw []string) (http.Header, error) {
	h := http.Header{}
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q: expected 'Name: value'", kv)
		}
		h.Add(name, strings.TrimSpace(value))
	}
	return h, nil
}

func outputName(rawURL, output string) (string, error) {
	if output != "" {
		return output, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	base := path.Base(u.Path)
	if base == "/" || base == "." || base == ".." || base == "" {
		return "", fmt.Errorf("cannot derive a file name from %s; pass --output", u.Redacted())
	}
	return base, nil
}

func parseMode(s string) (fs.FileMode, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil || v > 0o777 {
		return 0, fmt.Errorf("invalid --mode %q: expected an octal permission like 0644", s)
	}
	return fs.FileMode(v), nil
}

func runGet(cmd *cobra.Command, rawURL string, o getOptions) error {
	file, err := loadDefaults(o.config)
	if err != nil {
		return err
	}
	timeout := o.timeout
	if !cmd.Flags().Changed("timeout") {
		if t, err := file.timeout(); err != nil {
			return err
		} else if t > 0 {
			timeout = t
		}
	}
	header, err := parseHeaders(o.headers)
	if err != nil {
		return err
	}
	mode, err := parseMode(o.mode)
	if err != nil {
		return err
	}
	dest, err := outputName(rawURL, o.output)
	if err != nil {
		return err
	}

	creds, err := credential.NewResolver().Resolve(credentialConfig(cmd, o, file))
	if err != nil {
		return err
	}
	sink, err := fetch.NewFileSink(dest, mode)
	if err != nil {
		return err
	}

	f := fetch.New(fetch.Options{
		ConnectTimeout:   timeout,
		ReadTimeout:      timeout,
		ProgressInterval: 100 * time.Millisecond,
		UserAgent:        "tlsfetch-cli/" + version,
	})
	req := fetch.Request{URL: rawURL, Header: header, Credentials: creds}
	var bar *progressBar
	if !o.noProgress {
		bar = &progressBar{w: cmd.ErrOrStderr(), desc: dest}
		req.Progress = bar.update
	}

	res, err := f.Fetch(cmd.Context(), req, sink)
	if bar != nil {
		bar.finish(res)
	}
	if err != nil {
		return err
	}
	cmd.Printf("%s  %s (%d bytes, %s)\n", res.SHA256, dest, res.BytesWritten, res.Status)
	return nil
}

// progressBar renders fetch progress. The bar is created on the first update,
// once the total is known, and ignores updates that arrive after finish.
// Updates come from the fetch progress goroutine.
type progressBar struct {
	mu   sync.Mutex
	w    io.Writer
	desc string
	bar  *progressbar.ProgressBar
	done bool
}

func (p *progressBar) update(done, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return
	}
	p.ensure(total)
	_ = p.bar.Set64(done)
}

func (p *progressBar) ensure(total int64) {
	if p.bar != nil {
		return
	}
	w := p.w
	p.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetDescription(p.desc),
		progressbar.OptionThrottle(80*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

func (p *progressBar) finish(res *fetch.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = true
	if res != nil {
		p.ensure(res.BytesWritten)
		_ = p.bar.Set64(res.BytesWritten)
		_ = p.bar.Finish()
		return
	}
	if p.bar != nil {
		_ = p.bar.Exit()
	}
}
