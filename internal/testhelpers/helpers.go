// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

package testhelpers

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"text/template"
)

// MustCopy copies from r to a temp file and returns its path.
func MustCopy(t *testing.T, name string, r io.Reader) string {
	t.Helper()
	tmp := t.TempDir()
	dst := filepath.Join(tmp, name)
	f, err := os.Create(dst)
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	err = f.Close()
	if err != nil {
		t.Fatalf("close temp file: %v", err)
	}
	return dst
}

// BuildLargeBody returns a ~2MB error body full of secret-looking JSON.
func BuildLargeBody() string {
	var b strings.Builder
	// approx 2MB total
	chunks := 2 << 20 / 64
	for i := 0; i < chunks; i++ {
		b.WriteString(`{"authorization":"Bearer TOPSECRET`)
		b.WriteString(strconv.Itoa(i))
		b.WriteString(`","access_token":"AAA`)
		b.WriteString(strconv.Itoa(i))
		b.WriteString(`","password":"PWD`)
		b.WriteString(strconv.Itoa(i))
		b.WriteString(`"}`)
	}
	return b.String()
}

// SHA256Hex returns the lowercase hex SHA-256 of s.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// RemoteFileConfig describes one tlsfetch_remote_file block plus its provider block.
type RemoteFileConfig struct {
	Name string
	Path string
	URL  string

	ClientCert string
	ClientKey  string
	CA         []string
	Headers    map[string]string
	// FilePermission is omitted from the config when empty.
	FilePermission string

	ProviderClientCert string
	ProviderClientKey  string
	ProviderCA         []string
}

var remoteFileTmpl = template.Must(template.New("remote_file").Funcs(template.FuncMap{
	"hcl": hclString,
}).Parse(`
provider "tlsfetch" {
{{- with .ProviderClientCert }}
  client_cert = {{ hcl . }}
{{- end }}
{{- with .ProviderClientKey }}
  client_key = {{ hcl . }}
{{- end }}
{{- if .ProviderCA }}
  ca = [{{ range $i, $c := .ProviderCA }}{{ if $i }}, {{ end }}{{ hcl $c }}{{ end }}]
{{- end }}
}

resource "tlsfetch_remote_file" "{{ .Name }}" {
  path   = {{ hcl .Path }}
  source = {{ hcl .URL }}
{{- with .ClientCert }}
  client_cert = {{ hcl . }}
{{- end }}
{{- with .ClientKey }}
  client_key = {{ hcl . }}
{{- end }}
{{- if .CA }}
  ca = [{{ range $i, $c := .CA }}{{ if $i }}, {{ end }}{{ hcl $c }}{{ end }}]
{{- end }}
{{- with .FilePermission }}
  file_permission = {{ hcl . }}
{{- end }}
{{- if .Headers }}
  headers = {
{{- range $k, $v := .Headers }}
    {{ hcl $k }} = {{ hcl $v }}
{{- end }}
  }
{{- end }}
}
`))

// GetRemoteFileCfg renders cfg as HCL or fails the test.
func GetRemoteFileCfg(t *testing.T, cfg RemoteFileConfig) string {
	t.Helper()
	var buf bytes.Buffer
	if err := remoteFileTmpl.Execute(&buf, cfg); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

// hclString quotes s as an HCL string literal, escaping template sequences.
func hclString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`, "${", "$${", "%{", "%%{")
	return `"` + r.Replace(s) + `"`
}
