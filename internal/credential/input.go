// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

package credential

import (
	"regexp"
	"strings"
)

// Kind tags how an Input's value is interpreted.
type Kind int

const (
	// Absent means no value was supplied.
	Absent Kind = iota
	// Path means the value names a local file holding the material.
	Path
	// Literal means the value is the PEM (or DER) material itself.
	Literal
)

func (k Kind) String() string {
	switch k {
	case Path:
		return "path"
	case Literal:
		return "literal"
	default:
		return "absent"
	}
}

// absolutePathPattern matches a leading separator or a drive-letter-style prefix.
// `\w` is intentional: "1:" and "_:" also count as paths.
var absolutePathPattern = regexp.MustCompile(`\A(/|\w:)`)

// Input is a single credential input.
type Input struct {
	kind  Kind
	value string
}

// PathInput returns an Input that reads its material from the named file.
func PathInput(name string) Input { return Input{kind: Path, value: name} }

// LiteralInput returns an Input whose material is content itself.
func LiteralInput(content string) Input { return Input{kind: Literal, value: content} }

// ParseInput classifies a free-form configuration string. Blank strings are
// Absent, absolute-path-shaped strings are Path, everything else is Literal.
func ParseInput(s string) Input {
	if strings.TrimSpace(s) == "" {
		return Input{}
	}
	if absolutePathPattern.MatchString(s) {
		return PathInput(s)
	}
	return LiteralInput(s)
}

// Inputs normalizes zero, one, or many CA values into an ordered slice.
// Blank values are kept as Absent entries so positions line up with the caller's list.
func Inputs(values ...string) []Input {
	if len(values) == 0 {
		return nil
	}
	out := make([]Input, len(values))
	for i, v := range values {
		out[i] = ParseInput(v)
	}
	return out
}

// Kind reports how the input is interpreted.
func (in Input) Kind() Kind { return in.kind }

// IsAbsent reports whether no value was supplied.
func (in Input) IsAbsent() bool { return in.kind == Absent }

// Value returns the raw value (a path or literal content).
func (in Input) Value() string { return in.value }

// source describes the input for error messages without echoing literal material.
func (in Input) source() string {
	switch in.kind {
	case Path:
		return in.value
	case Literal:
		return "inline value"
	default:
		return "absent value"
	}
}
