// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

package testhelpers

// FakeNetErr for testing ShouldRetry timeout path
type FakeNetErr struct{ timeout bool }

func (e FakeNetErr) Error() string   { return "fake timeout" }
func (e FakeNetErr) Timeout() bool   { return e.timeout }
func (e FakeNetErr) Temporary() bool { return true }

// NewFakeNetErr constructs a FakeNetErr with the provided timeout flag.
func NewFakeNetErr(timeout bool) FakeNetErr { return FakeNetErr{timeout: timeout} }
