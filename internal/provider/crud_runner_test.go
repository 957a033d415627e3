// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/types"
)

type remoteFileHooks = CRUDHooks[remoteFileResourceModel, *remoteFileRequest, *remoteFileObservation]

// baseHooks returns hooks that succeed on every operation.
func baseHooks() remoteFileHooks {
	return remoteFileHooks{
		BuildPayload: func(ctx context.Context, st *remoteFileResourceModel) (*remoteFileRequest, diag.Diagnostics) {
			return &remoteFileRequest{Path: st.Path.ValueString()}, nil
		},
		APICreate: func(ctx context.Context, p *remoteFileRequest) (*remoteFileObservation, *ResponseInfo, error) {
			return &remoteFileObservation{Path: p.Path, Mode: 0o644, SHA256: "created", Size: 7}, mkRS(200, nil, ""), nil
		},
		APIRead: func(ctx context.Context, id string, st *remoteFileResourceModel) (*remoteFileObservation, *ResponseInfo, error) {
			return &remoteFileObservation{Path: id, Mode: 0o644, SHA256: "read"}, mkRS(200, nil, ""), nil
		},
		APIUpdate: func(ctx context.Context, id string, p *remoteFileRequest) (*remoteFileObservation, *ResponseInfo, error) {
			return &remoteFileObservation{Path: id, Mode: 0o600, SHA256: "updated"}, mkRS(200, nil, ""), nil
		},
		APIDelete: func(ctx context.Context, id string) (*ResponseInfo, error) {
			return mkRS(204, nil, ""), nil
		},
		ExtractID:               func(st *remoteFileResourceModel) string { return st.Path.ValueString() },
		MapToState:              mapRemoteFileObservationToModel,
		TreatDelete404AsSuccess: true,
	}
}

func withPath(p string) func(ctx context.Context, dst *remoteFileResourceModel) diag.Diagnostics {
	return func(ctx context.Context, dst *remoteFileResourceModel) diag.Diagnostics {
		dst.Path = types.StringValue(p)
		return nil
	}
}

func captureState(out *remoteFileResourceModel, calls *int) func(ctx context.Context, src *remoteFileResourceModel) diag.Diagnostics {
	return func(ctx context.Context, src *remoteFileResourceModel) diag.Diagnostics {
		*calls++
		*out = *src
		return nil
	}
}

func TestCRUDRunner_Create_Update_Delete_Read_HappyPaths(t *testing.T) {
	ctx := context.Background()
	var diags diag.Diagnostics
	var got remoteFileResourceModel
	var setCalls int
	r := NewCRUDRunner(baseHooks())

	d := r.DoCreate(ctx, withPath("/tmp/out"), captureState(&got, &setCalls), ensureWith(&diags))
	if d.HasError() || diags.HasError() {
		t.Fatalf("unexpected diagnostics on create: %v %v", d, diags)
	}
	if got.ID.ValueString() != "/tmp/out" || got.ContentSHA256.ValueString() != "created" || got.FilePermission.ValueString() != "0644" {
		t.Fatalf("unexpected state after create: %+v", got)
	}

	d = r.DoRead(ctx, withPath("/tmp/out"), captureState(&got, &setCalls), func(ctx context.Context) { t.Fatal("unexpected remove") }, ensureWith(&diags), HTTPStatus)
	if d.HasError() || diags.HasError() {
		t.Fatalf("unexpected diagnostics on read: %v %v", d, diags)
	}
	if got.ContentSHA256.ValueString() != "read" {
		t.Fatalf("expected read observation in state, got %q", got.ContentSHA256.ValueString())
	}

	d = r.DoUpdate(ctx, withPath("/tmp/out"), captureState(&got, &setCalls), ensureWith(&diags))
	if d.HasError() || diags.HasError() {
		t.Fatalf("unexpected diagnostics on update: %v %v", d, diags)
	}
	if got.FilePermission.ValueString() != "0600" {
		t.Fatalf("expected updated permission, got %q", got.FilePermission.ValueString())
	}

	d = r.DoDelete(ctx, withPath("/tmp/out"), ensureWith(&diags))
	if d.HasError() || diags.HasError() {
		t.Fatalf("unexpected diagnostics on delete: %v %v", d, diags)
	}
	if setCalls != 3 {
		t.Fatalf("expected 3 state writes, got %d", setCalls)
	}
}

func TestCRUDRunner_Delete_404_TreatedAsSuccess(t *testing.T) {
	var diags diag.Diagnostics
	h := baseHooks()
	h.APIDelete = func(ctx context.Context, id string) (*ResponseInfo, error) {
		return mkRS(404, nil, ""), nil
	}
	NewCRUDRunner(h).DoDelete(context.Background(), withPath("/tmp/gone"), ensureWith(&diags))
	if diags.HasError() {
		t.Fatalf("expected 404 on delete to be success, got %v", diags)
	}

	h.TreatDelete404AsSuccess = false
	NewCRUDRunner(h).DoDelete(context.Background(), withPath("/tmp/gone"), ensureWith(&diags))
	if !diags.HasError() {
		t.Fatal("expected 404 on delete to fail without TreatDelete404AsSuccess")
	}
}

func TestCRUDRunner_Read_Gone_RemovesState_NoError(t *testing.T) {
	for _, code := range []int{404, 410} {
		var diags diag.Diagnostics
		h := baseHooks()
		h.APIRead = func(ctx context.Context, id string, st *remoteFileResourceModel) (*remoteFileObservation, *ResponseInfo, error) {
			return nil, mkRS(code, nil, ""), nil
		}
		h.MapToState = func(ctx context.Context, api *remoteFileObservation, st *remoteFileResourceModel) diag.Diagnostics {
			t.Fatalf("MapToState must not run for %d", code)
			return nil
		}
		removed := false
		d := NewCRUDRunner(h).DoRead(context.Background(), withPath("/tmp/out"),
			func(ctx context.Context, src *remoteFileResourceModel) diag.Diagnostics {
				t.Fatalf("setState must not run for %d", code)
				return nil
			},
			func(ctx context.Context) { removed = true },
			ensureWith(&diags), HTTPStatus)
		if !removed {
			t.Fatalf("expected remove for %d", code)
		}
		if d.HasError() || diags.HasError() {
			t.Fatalf("unexpected diagnostics for %d: %v %v", code, d, diags)
		}
	}
}

func TestCRUDRunner_Read_403_NoRemove(t *testing.T) {
	var diags diag.Diagnostics
	h := baseHooks()
	h.APIRead = func(ctx context.Context, id string, st *remoteFileResourceModel) (*remoteFileObservation, *ResponseInfo, error) {
		return nil, mkRS(403, nil, "permission denied"), nil
	}
	NewCRUDRunner(h).DoRead(context.Background(), withPath("/tmp/out"),
		func(ctx context.Context, src *remoteFileResourceModel) diag.Diagnostics { return nil },
		func(ctx context.Context) { t.Fatal("unexpected remove") },
		ensureWith(&diags), HTTPStatus)
	if !diags.HasError() {
		t.Fatal("expected an error diagnostic for 403")
	}
}

func TestCRUDRunner_Read_ErrorWith404_NotRemoved(t *testing.T) {
	var diags diag.Diagnostics
	h := baseHooks()
	h.APIRead = func(ctx context.Context, id string, st *remoteFileResourceModel) (*remoteFileObservation, *ResponseInfo, error) {
		return nil, mkRS(404, nil, ""), errors.New("stat failed")
	}
	NewCRUDRunner(h).DoRead(context.Background(), withPath("/tmp/out"),
		func(ctx context.Context, src *remoteFileResourceModel) diag.Diagnostics { return nil },
		func(ctx context.Context) { t.Fatal("unexpected remove") },
		ensureWith(&diags), HTTPStatus)
	if !diags.HasError() {
		t.Fatal("expected error diagnostic")
	}
}

func TestCRUDRunner_Read_PassesPriorState(t *testing.T) {
	var diags diag.Diagnostics
	h := baseHooks()
	var seen string
	h.APIRead = func(ctx context.Context, id string, st *remoteFileResourceModel) (*remoteFileObservation, *ResponseInfo, error) {
		seen = st.ContentSHA256.ValueString()
		return &remoteFileObservation{Path: id}, mkRS(200, nil, ""), nil
	}
	NewCRUDRunner(h).DoRead(context.Background(),
		func(ctx context.Context, dst *remoteFileResourceModel) diag.Diagnostics {
			dst.Path = types.StringValue("/tmp/out")
			dst.ContentSHA256 = types.StringValue("abc")
			return nil
		},
		func(ctx context.Context, src *remoteFileResourceModel) diag.Diagnostics { return nil },
		func(ctx context.Context) {},
		ensureWith(&diags), HTTPStatus)
	if seen != "abc" {
		t.Fatalf("expected prior state sha to reach APIRead, got %q", seen)
	}
}

func TestCRUDRunner_PostCreate_CalledAndMapped(t *testing.T) {
	var diags diag.Diagnostics
	var got remoteFileResourceModel
	var setCalls int
	h := baseHooks()
	h.PostCreate = func(ctx context.Context, api *remoteFileObservation, st *remoteFileResourceModel) (*remoteFileObservation, *ResponseInfo, error) {
		api.SHA256 = "verified"
		return api, mkRS(200, nil, ""), nil
	}
	NewCRUDRunner(h).DoCreate(context.Background(), withPath("/tmp/out"), captureState(&got, &setCalls), ensureWith(&diags))
	if diags.HasError() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if got.ContentSHA256.ValueString() != "verified" {
		t.Fatalf("expected post-create observation to be mapped, got %q", got.ContentSHA256.ValueString())
	}
}

func TestCRUDRunner_PostCreate_Error_NoMapSet(t *testing.T) {
	var diags diag.Diagnostics
	h := baseHooks()
	h.PostCreate = func(ctx context.Context, api *remoteFileObservation, st *remoteFileResourceModel) (*remoteFileObservation, *ResponseInfo, error) {
		return nil, nil, errors.New("destination changed")
	}
	h.MapToState = func(ctx context.Context, api *remoteFileObservation, st *remoteFileResourceModel) diag.Diagnostics {
		t.Fatal("MapToState must not run after a failed post hook")
		return nil
	}
	NewCRUDRunner(h).DoCreate(context.Background(), withPath("/tmp/out"),
		func(ctx context.Context, src *remoteFileResourceModel) diag.Diagnostics {
			t.Fatal("setState must not run after a failed post hook")
			return nil
		},
		ensureWith(&diags))
	if !diags.HasError() {
		t.Fatal("expected error diagnostics")
	}
	if !strings.Contains(diags[0].Summary(), "post-create hook failed") {
		t.Fatalf("unexpected summary: %q", diags[0].Summary())
	}
}

func TestCRUDRunner_BuildPayloadError_Propagates_NoAPICall(t *testing.T) {
	var diags diag.Diagnostics
	h := baseHooks()
	h.BuildPayload = func(ctx context.Context, st *remoteFileResourceModel) (*remoteFileRequest, diag.Diagnostics) {
		var d diag.Diagnostics
		d.AddError("bad", "payload")
		return nil, d
	}
	h.APICreate = func(ctx context.Context, p *remoteFileRequest) (*remoteFileObservation, *ResponseInfo, error) {
		t.Fatal("APICreate must not run")
		return nil, nil, nil
	}
	h.APIUpdate = func(ctx context.Context, id string, p *remoteFileRequest) (*remoteFileObservation, *ResponseInfo, error) {
		t.Fatal("APIUpdate must not run")
		return nil, nil, nil
	}
	r := NewCRUDRunner(h)
	noSet := func(ctx context.Context, src *remoteFileResourceModel) diag.Diagnostics { return nil }
	if d := r.DoCreate(context.Background(), withPath("/tmp/out"), noSet, ensureWith(&diags)); !d.HasError() {
		t.Fatal("expected build error on create")
	}
	if d := r.DoUpdate(context.Background(), withPath("/tmp/out"), noSet, ensureWith(&diags)); !d.HasError() {
		t.Fatal("expected build error on update")
	}
}

func TestCRUDRunner_BuildPayloadWarnings_Proceed(t *testing.T) {
	var diags diag.Diagnostics
	var got remoteFileResourceModel
	var setCalls int
	h := baseHooks()
	h.BuildPayload = func(ctx context.Context, st *remoteFileResourceModel) (*remoteFileRequest, diag.Diagnostics) {
		var d diag.Diagnostics
		d.AddWarning("heads up", "header ignored")
		return &remoteFileRequest{Path: st.Path.ValueString()}, d
	}
	d := NewCRUDRunner(h).DoCreate(context.Background(), withPath("/tmp/out"), captureState(&got, &setCalls), ensureWith(&diags))
	if d.HasError() || setCalls != 1 {
		t.Fatalf("expected create to proceed with warnings, diags=%v setCalls=%d", d, setCalls)
	}
	if d.WarningsCount() != 1 {
		t.Fatalf("expected warning to be returned, got %v", d)
	}
}

func TestCRUDRunner_StatusOverrides(t *testing.T) {
	var diags diag.Diagnostics
	h := baseHooks()
	h.APIDelete = func(ctx context.Context, id string) (*ResponseInfo, error) {
		return mkRS(302, nil, ""), nil
	}
	r := NewCRUDRunner(h)
	r.DoDelete(context.Background(), withPath("/tmp/out"), ensureWith(&diags))
	if !diags.HasError() {
		t.Fatal("expected 302 to fail without override")
	}

	diags = nil
	h.AcceptableDeleteStatuses = []int{302}
	NewCRUDRunner(h).DoDelete(context.Background(), withPath("/tmp/out"), ensureWith(&diags))
	if diags.HasError() {
		t.Fatalf("expected 302 accepted with override, got %v", diags)
	}
}

func TestCRUDRunner_MapToStateError_Propagates(t *testing.T) {
	var diags diag.Diagnostics
	h := baseHooks()
	h.APICreate = func(ctx context.Context, p *remoteFileRequest) (*remoteFileObservation, *ResponseInfo, error) {
		return nil, mkRS(200, nil, ""), nil
	}
	d := NewCRUDRunner(h).DoCreate(context.Background(), withPath("/tmp/out"),
		func(ctx context.Context, src *remoteFileResourceModel) diag.Diagnostics {
			t.Fatal("setState must not run after a mapping error")
			return nil
		},
		ensureWith(&diags))
	if !d.HasError() {
		t.Fatal("expected mapping error for a nil observation")
	}
}

func TestCRUDRunner_GetStateError_ShortCircuits(t *testing.T) {
	var diags diag.Diagnostics
	h := baseHooks()
	h.APIRead = func(ctx context.Context, id string, st *remoteFileResourceModel) (*remoteFileObservation, *ResponseInfo, error) {
		t.Fatal("APIRead must not run")
		return nil, nil, nil
	}
	h.APIDelete = func(ctx context.Context, id string) (*ResponseInfo, error) {
		t.Fatal("APIDelete must not run")
		return nil, nil
	}
	failGet := func(ctx context.Context, dst *remoteFileResourceModel) diag.Diagnostics {
		var d diag.Diagnostics
		d.AddError("state", "unreadable")
		return d
	}
	r := NewCRUDRunner(h)
	if d := r.DoRead(context.Background(), failGet, nil, func(ctx context.Context) {}, ensureWith(&diags), HTTPStatus); !d.HasError() {
		t.Fatal("expected read to return getState error")
	}
	if d := r.DoDelete(context.Background(), failGet, ensureWith(&diags)); !d.HasError() {
		t.Fatal("expected delete to return getState error")
	}
	if d := r.DoUpdate(context.Background(), failGet, nil, ensureWith(&diags)); !d.HasError() {
		t.Fatal("expected update to return getPlan error")
	}
}

func TestCRUDRunner_EnsureActionStrings_AreCorrect(t *testing.T) {
	var actions []string
	ensure := func(ctx context.Context, action string, rs *ResponseInfo, err error, opts *EnsureSuccessOrDiagOptions) bool {
		actions = append(actions, action)
		return true
	}
	h := baseHooks()
	h.PostCreate = func(ctx context.Context, api *remoteFileObservation, st *remoteFileResourceModel) (*remoteFileObservation, *ResponseInfo, error) {
		return api, mkRS(200, nil, ""), nil
	}
	r := NewCRUDRunner(h)
	noSet := func(ctx context.Context, src *remoteFileResourceModel) diag.Diagnostics { return nil }
	r.DoCreate(context.Background(), withPath("/tmp/out"), noSet, ensure)
	r.DoRead(context.Background(), withPath("/tmp/out"), noSet, func(ctx context.Context) {}, ensure, HTTPStatus)
	r.DoUpdate(context.Background(), withPath("/tmp/out"), noSet, ensure)
	r.DoDelete(context.Background(), withPath("/tmp/out"), ensure)

	want := []string{"create resource", "post-create hook", "read resource", "update resource", "delete resource"}
	if strings.Join(actions, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected ensure actions: got %v want %v", actions, want)
	}
}
