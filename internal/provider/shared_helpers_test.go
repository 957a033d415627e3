// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/terraform-plugin-framework/attr"
	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/types"
)

func TestWithTimeout_NoDeadlineWhenZero(t *testing.T) {
	ctx := context.Background()
	ctx2, cancel := withTimeout(ctx, 0)
	defer cancel()
	if dl, ok := ctx2.Deadline(); ok {
		t.Fatalf("expected no deadline, got %v", dl)
	}
}

func TestWithTimeout_HasDeadlineWhenPositive(t *testing.T) {
	d := 100 * time.Millisecond
	before := time.Now()
	ctx2, cancel := withTimeout(context.Background(), d)
	defer cancel()
	dl, ok := ctx2.Deadline()
	if !ok {
		t.Fatalf("expected a deadline")
	}
	// Allow small scheduling slack (<= +50ms)
	if dl.Before(before.Add(d-10*time.Millisecond)) || dl.After(before.Add(d+50*time.Millisecond)) {
		t.Fatalf("deadline out of expected range; before=%v d=%v got=%v", before, d, dl)
	}
}

func TestGetKnownStrings(t *testing.T) {
	ctx := context.Background()
	var diags diag.Diagnostics

	vals, deferEval := getKnownStrings(ctx, types.ListNull(types.StringType), attrCA, &diags)
	if vals != nil || deferEval {
		t.Fatalf("expected nil, false for null list; got %v, %v", vals, deferEval)
	}

	l := types.ListValueMust(types.StringType, []attr.Value{types.StringValue("a"), types.StringNull(), types.StringValue("b")})
	vals, deferEval = getKnownStrings(ctx, l, attrCA, &diags)
	if deferEval || diags.HasError() {
		t.Fatalf("unexpected defer/diags: %v %v", deferEval, diags)
	}
	if strings.Join(vals, ",") != "a,,b" {
		t.Fatalf("expected null elements to become empty strings in place, got %q", vals)
	}

	l = types.ListValueMust(types.StringType, []attr.Value{types.StringValue("a"), types.StringUnknown()})
	if _, deferEval = getKnownStrings(ctx, l, attrCA, &diags); !deferEval {
		t.Fatal("expected deferEval for unknown element")
	}
	if _, deferEval = getKnownStrings(ctx, types.ListUnknown(types.StringType), attrCA, &diags); !deferEval {
		t.Fatal("expected deferEval for unknown list")
	}
}

func TestGetKnownStringMap(t *testing.T) {
	ctx := context.Background()
	var diags diag.Diagnostics

	m := types.MapValueMust(types.StringType, map[string]attr.Value{"Accept": types.StringValue("text/plain")})
	vals, deferEval := getKnownStringMap(ctx, m, "headers", &diags)
	if deferEval || diags.HasError() || vals["Accept"] != "text/plain" {
		t.Fatalf("unexpected result: %v %v %v", vals, deferEval, diags)
	}

	m = types.MapValueMust(types.StringType, map[string]attr.Value{"Accept": types.StringUnknown()})
	if _, deferEval = getKnownStringMap(ctx, m, "headers", &diags); !deferEval {
		t.Fatal("expected deferEval for unknown value")
	}
}

func TestFileModeRoundTrip(t *testing.T) {
	for _, s := range []string{"0644", "0600", "0755", "0000"} {
		m, err := parseFileMode(s)
		if err != nil {
			t.Fatalf("parseFileMode(%q): %v", s, err)
		}
		if got := formatFileMode(m); got != s {
			t.Fatalf("round trip %q -> %q", s, got)
		}
	}
	if m, err := parseFileMode(""); err != nil || m != 0o644 {
		t.Fatalf("expected default mode for empty input, got %v %v", m, err)
	}
	for _, bad := range []string{"0999", "1777", "rw-r--r--"} {
		if _, err := parseFileMode(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestOrNullHelpers(t *testing.T) {
	if !stringOrNull("").IsNull() || stringOrNull("x").ValueString() != "x" {
		t.Fatal("stringOrNull mismatch")
	}
	if !int64OrNull(-1).IsNull() || int64OrNull(0).ValueInt64() != 0 {
		t.Fatal("int64OrNull mismatch")
	}
}
