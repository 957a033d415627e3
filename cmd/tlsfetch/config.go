// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables shared with the provider block.
const (
	envClientCert = "TLSFETCH_CLIENT_CERT"
	envClientKey  = "TLSFETCH_CLIENT_KEY"
	envCA         = "TLSFETCH_CA"
)

// defaults is the optional YAML defaults file. Credential values follow the
// provider rules: absolute paths are read from disk, anything else is inline PEM.
type defaults struct {
	ClientCert string   `yaml:"client_cert"`
	ClientKey  string   `yaml:"client_key"`
	CA         []string `yaml:"ca"`
	Timeout    string   `yaml:"timeout"`
}

func loadDefaults(name string) (defaults, error) {
	var d defaults
	if name == "" {
		return d, nil
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return d, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return d, fmt.Errorf("parse config %s: %w", name, err)
	}
	return d, nil
}

func (d defaults) timeout() (time.Duration, error) {
	if d.Timeout == "" {
		return 0, nil
	}
	t, err := time.ParseDuration(d.Timeout)
	if err != nil || t <= 0 {
		return 0, fmt.Errorf("config timeout %q must be a positive duration like \"30s\"", d.Timeout)
	}
	return t, nil
}

// envDefaults reads the credential env vars; TLSFETCH_CA is a path list.
func envDefaults() defaults {
	d := defaults{
		ClientCert: os.Getenv(envClientCert),
		ClientKey:  os.Getenv(envClientKey),
	}
	for _, p := range filepath.SplitList(os.Getenv(envCA)) {
		if strings.TrimSpace(p) != "" {
			d.CA = append(d.CA, p)
		}
	}
	return d
}
