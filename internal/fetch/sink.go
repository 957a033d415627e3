// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

package fetch

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Sink receives a response body. Fetch calls exactly one of Commit or Abort.
type Sink interface {
	io.Writer
	// Commit makes the written content visible as complete.
	Commit() error
	// Abort discards everything written so far. It is safe to call more than once.
	Abort() error
}

// FileSink writes into a hidden temp file beside the destination and renames
// it into place on Commit, so readers never see a partial file at the destination.
type FileSink struct {
	path   string
	mode   fs.FileMode
	tmp    *os.File
	closed bool
}

var _ Sink = (*FileSink)(nil)

// NewFileSink creates the temp file for path. The parent directory must exist.
func NewFileSink(path string, mode fs.FileMode) (*FileSink, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	if base == "" {
		return nil, fmt.Errorf("destination %q is a directory", path)
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tlsfetch-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file for %s: %w", path, err)
	}
	return &FileSink{path: path, mode: mode, tmp: tmp}, nil
}

// Path returns the final destination.
func (s *FileSink) Path() string { return s.path }

// TempPath returns the in-progress file name.
func (s *FileSink) TempPath() string { return s.tmp.Name() }

func (s *FileSink) Write(p []byte) (int, error) {
	if s.closed {
		return 0, fs.ErrClosed
	}
	return s.tmp.Write(p)
}

// Commit flushes, closes and renames the temp file to the destination with the configured mode.
func (s *FileSink) Commit() error {
	if s.closed {
		return fs.ErrClosed
	}
	s.closed = true
	name := s.tmp.Name()
	err := s.tmp.Sync()
	if cerr := s.tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(name, s.mode)
	}
	if err == nil {
		err = os.Rename(name, s.path)
	}
	if err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("commit %s: %w", s.path, err)
	}
	return nil
}

// Abort closes and removes the temp file.
func (s *FileSink) Abort() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.tmp.Close()
	if rerr := os.Remove(s.tmp.Name()); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
		err = errors.Join(err, rerr)
	}
	return err
}
