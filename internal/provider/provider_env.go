// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/terraform-plugin-framework/types"
)

// generic readers (HCL over env, then default behavior per caller)
func readString(s types.String, env string) string {
	if !s.IsNull() && !s.IsUnknown() {
		return s.ValueString()
	}
	if env == "" {
		return ""
	}
	return os.Getenv(env)
}

func readInt64Default(v types.Int64, def int) int {
	if !v.IsNull() && !v.IsUnknown() {
		return int(v.ValueInt64())
	}
	return def
}

func readBoolDefault(v types.Bool, def bool) bool {
	if !v.IsNull() && !v.IsUnknown() {
		return v.ValueBool()
	}
	return def
}

// readStringList prefers the HCL values and otherwise splits env on the OS path-list
// separator, dropping blank entries.
func readStringList(vals []string, set bool, env string) []string {
	if set {
		return vals
	}
	raw := os.Getenv(env)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, p := range filepath.SplitList(raw) {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
