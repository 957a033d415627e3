// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

package credential

import (
	"errors"
	"fmt"
)

// ErrNoPEMBlock is wrapped by ParseError when material holds no block of the wanted type.
var ErrNoPEMBlock = errors.New("no matching PEM block found")

// ReadError reports that a configured credential path could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read credential file %q: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ParseError reports material that does not parse as the expected object.
// What is "certificate" or "private key"; Source is the file path or "inline value".
type ParseError struct {
	What   string
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s from %s: %v", e.What, e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsReadError reports whether err is or wraps a *ReadError.
func IsReadError(err error) bool {
	var re *ReadError
	return errors.As(err, &re)
}

// IsParseError reports whether err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
