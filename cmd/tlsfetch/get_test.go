// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devops-wiz/terraform-provider-tlsfetch/internal/credential"
	"github.com/devops-wiz/terraform-provider-tlsfetch/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const body = "hello from the file server\n"

func clearEnv(t *testing.T) {
	t.Setenv(envClientCert, "")
	t.Setenv(envClientKey, "")
	t.Setenv(envCA, "")
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestGet_MutualTLS(t *testing.T) {
	clearEnv(t)
	p := testhelpers.SharedPKI(t)
	files := p.WriteFiles(t, "")
	srv := testhelpers.NewMTLSServer(t, p, testhelpers.ContentHandler(body))
	dest := filepath.Join(t.TempDir(), "out.txt")

	out, _, err := runCLI(t, "get", srv.URL+"/file.txt",
		"-o", dest,
		"--client-cert", files.ClientCert,
		"--client-key", files.ClientKey,
		"--ca", files.CA,
		"--mode", "0600",
		"-H", "X-Trace: abc",
		"--no-progress",
	)
	require.NoError(t, err)
	assert.Contains(t, out, testhelpers.SHA256Hex(body))

	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, string(b))
	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestGet_ConfigFileAndEnv(t *testing.T) {
	clearEnv(t)
	p := testhelpers.SharedPKI(t)
	files := p.WriteFiles(t, "")
	srv := testhelpers.NewMTLSServer(t, p, testhelpers.ContentHandler(body))
	dir := t.TempDir()

	cfg := filepath.Join(dir, "defaults.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("client_cert: "+files.ClientBundle+"\ntimeout: 20s\n"), 0o600))
	t.Setenv(envCA, files.CA)

	dest := filepath.Join(dir, "out.txt")
	_, stderr, err := runCLI(t, "get", srv.URL, "-o", dest, "--config", cfg)
	require.NoError(t, err)
	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, string(b))
	assert.NotEmpty(t, stderr, "progress is rendered on stderr")
}

func TestGet_Failures(t *testing.T) {
	clearEnv(t)
	p := testhelpers.SharedPKI(t)
	files := p.WriteFiles(t, "")
	srv := testhelpers.NewMTLSServer(t, p, testhelpers.ContentHandler(body))

	t.Run("no client certificate", func(t *testing.T) {
		dir := t.TempDir()
		_, _, err := runCLI(t, "get", srv.URL, "-o", filepath.Join(dir, "out"), "--ca", files.CA, "--no-progress")
		require.Error(t, err)
		entries, _ := os.ReadDir(dir)
		assert.Empty(t, entries, "no partial file is left behind")
	})

	t.Run("invalid certificate file", func(t *testing.T) {
		_, _, err := runCLI(t, "get", srv.URL, "-o", filepath.Join(t.TempDir(), "out"), "--client-cert", files.Invalid, "--no-progress")
		var pe *credential.ParseError
		require.ErrorAs(t, err, &pe)
	})

	t.Run("bad header", func(t *testing.T) {
		_, _, err := runCLI(t, "get", srv.URL, "-o", filepath.Join(t.TempDir(), "out"), "-H", "nocolon")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid header")
	})

	t.Run("unknown config key", func(t *testing.T) {
		cfg := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(cfg, []byte("client_certificate: /x\n"), 0o600))
		_, _, err := runCLI(t, "get", srv.URL, "-o", filepath.Join(t.TempDir(), "out"), "--config", cfg)
		require.Error(t, err)
	})
}

func TestParseHeaders(t *testing.T) {
	h, err := parseHeaders([]string{"Accept: text/plain", "X-Multi: a", "x-multi: b", "Empty:"})
	require.NoError(t, err)
	assert.Equal(t, "text/plain", h.Get("Accept"))
	assert.Equal(t, []string{"a", "b"}, h.Values("X-Multi"))
	assert.Equal(t, http.Header{"Accept": {"text/plain"}, "X-Multi": {"a", "b"}, "Empty": {""}}, h)

	_, err = parseHeaders([]string{": value"})
	assert.Error(t, err)
}

func TestOutputName(t *testing.T) {
	name, err := outputName("https://files.example.com/releases/app.tar.gz?sig=1", "")
	require.NoError(t, err)
	assert.Equal(t, "app.tar.gz", name)

	name, err = outputName("https://files.example.com/", "explicit.bin")
	require.NoError(t, err)
	assert.Equal(t, "explicit.bin", name)

	for _, raw := range []string{"https://files.example.com/", "https://files.example.com", "https://files.example.com/releases/.."} {
		_, err = outputName(raw, "")
		assert.Error(t, err, raw)
	}
}

func TestCredentialPrecedence(t *testing.T) {
	t.Setenv(envClientCert, "/env/client.pem")
	t.Setenv(envClientKey, "/env/client.key")
	t.Setenv(envCA, strings.Join([]string{"/env/a.crt", "/env/b.crt"}, string(os.PathListSeparator)))

	cmd := newGetCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--client-key", "/flag/client.key"}))
	cfg := credentialConfig(cmd, getOptions{clientKey: "/flag/client.key"}, defaults{ClientCert: "/file/client.pem"})

	assert.Equal(t, "/file/client.pem", cfg.ClientCert.Value())
	assert.Equal(t, "/flag/client.key", cfg.ClientKey.Value())
	require.Len(t, cfg.CA, 2)
	assert.Equal(t, "/env/b.crt", cfg.CA[1].Value())
}
