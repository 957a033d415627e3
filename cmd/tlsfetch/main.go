// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

// Command tlsfetch downloads a single file with the same credential handling as
// the tlsfetch Terraform provider. It is meant for checking client certificates
// and CA bundles outside of a Terraform run.
package main

import (
	"context"
	"os"
	"os/signal"
)

// version is set by goreleaser.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
