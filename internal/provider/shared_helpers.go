// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// Tiny mapping helpers to reduce verbosity in map-to-state code.
func stringOrNull(s string) types.String {
	if s != "" {
		return types.StringValue(s)
	}
	return types.StringNull()
}

func int64OrNull(v int64) types.Int64 {
	if v >= 0 {
		return types.Int64Value(v)
	}
	return types.Int64Null()
}

// ensureWith wraps EnsureSuccessOrDiagWithOptions binding the diagnostics pointer.
// Use in Resource CRUD methods to avoid repeating the closure at each callsite.
func ensureWith(diags *diag.Diagnostics) ensureFunc {
	return func(ctx context.Context, action string, rs *ResponseInfo, err error, opts *EnsureSuccessOrDiagOptions) bool {
		return EnsureSuccessOrDiagWithOptions(ctx, action, rs, err, diags, opts)
	}
}

// withTimeout wraps ctx with a timeout when d > 0. If d <= 0, it returns the
// original context and a no-op cancel, allowing callers to `defer cancel()` unconditionally.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	ctx2, cancel := context.WithTimeout(ctx, d)
	tflog.Debug(ctx2, "context deadline set for operation", map[string]interface{}{"timeout": d.String()})
	return ctx2, cancel
}

// listHasUnknown reports if the list itself or any of its elements are unknown.
func listHasUnknown(l types.List) bool {
	if l.IsUnknown() {
		return true
	}
	elems := l.Elements()
	for i := range elems {
		if elems[i].IsUnknown() {
			return true
		}
	}
	return false
}

// getKnownStrings parses a Terraform list of strings into a Go slice.
// Returns (nil, true) if the list or any of its elements are unknown at plan time, so the caller can defer evaluation.
// Null elements become empty strings, which the credential layer treats as absent.
// On conversion failures with known values, records an attribute-scoped error and returns (nil, false).
func getKnownStrings(ctx context.Context, l types.List, attr string, diags *diag.Diagnostics) (vals []string, deferEval bool) {
	if l.IsNull() {
		return nil, false
	}
	if listHasUnknown(l) {
		return nil, true
	}
	elems := make([]types.String, 0, len(l.Elements()))
	if d := l.ElementsAs(ctx, &elems, false); d.HasError() {
		diags.AddAttributeError(
			path.Root(attr),
			fmt.Sprintf("Invalid %s list", attr),
			fmt.Sprintf("Failed to read '%s' as a list of strings. Ensure all elements are known and of type string.", attr),
		)
		diags.Append(d...)
		return nil, false
	}
	vals = make([]string, len(elems))
	for i, e := range elems {
		vals[i] = e.ValueString()
	}
	return vals, false
}

// getKnownStringMap is the map counterpart of getKnownStrings.
func getKnownStringMap(ctx context.Context, m types.Map, attr string, diags *diag.Diagnostics) (vals map[string]string, deferEval bool) {
	if m.IsNull() {
		return nil, false
	}
	if m.IsUnknown() {
		return nil, true
	}
	for _, v := range m.Elements() {
		if v.IsUnknown() {
			return nil, true
		}
	}
	vals = make(map[string]string, len(m.Elements()))
	if d := m.ElementsAs(ctx, &vals, false); d.HasError() {
		diags.AddAttributeError(
			path.Root(attr),
			fmt.Sprintf("Invalid %s map", attr),
			fmt.Sprintf("Failed to read '%s' as a map of strings.", attr),
		)
		diags.Append(d...)
		return nil, false
	}
	return vals, false
}
