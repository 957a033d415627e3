// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"net/http"

	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// Function type aliases used by CRUDHooks for clarity and reuse.
//
// Usage pattern
// - Resources implement these functions via small closures (for get/set state) and concrete fetch/file methods.
// - For mapping, prefer reusing a shared MapToState function per resource (e.g., map*ToModel).

// PayloadBuilderFunc builds the request (TPayload) from the planned Terraform state (TState).
// Return diagnostics for validation or value derivation errors encountered during build.
type PayloadBuilderFunc[TState StateConstraint, TPayload PayloadConstraint] func(ctx context.Context, st *TState) (TPayload, diag.Diagnostics)

// CreateFunc performs the create side effect and returns what it observed (TAPI).
// The ResponseInfo is threaded for Ensure* handling (status/body diagnostics).
type CreateFunc[TPayload PayloadConstraint, TAPI APIConstraint] func(ctx context.Context, p TPayload) (api TAPI, rs *ResponseInfo, err error)

// ReadFunc observes the current object for id. The prior state is passed so the
// observation can report drift as 410 Gone.
type ReadFunc[TState StateConstraint, TAPI APIConstraint] func(ctx context.Context, id string, st *TState) (api TAPI, rs *ResponseInfo, err error)

// UpdateFunc applies in-place changes and returns the refreshed TAPI.
type UpdateFunc[TPayload PayloadConstraint, TAPI APIConstraint] func(ctx context.Context, id string, p TPayload) (api TAPI, rs *ResponseInfo, err error)

// DeleteFunc removes the object; Ensure* handles status evaluation and 404 semantics.
type DeleteFunc func(ctx context.Context, id string) (rs *ResponseInfo, err error)

// ExtractIDFunc returns the stable identifier from the current state.
type ExtractIDFunc[TState StateConstraint] func(st *TState) string

// MapToStateFunc maps the observation (TAPI) into the Terraform state model (TState).
type MapToStateFunc[TState StateConstraint, TAPI APIConstraint] func(ctx context.Context, api TAPI, st *TState) diag.Diagnostics

// PostAPIHook is an optional extra step after Create/Read/Update, e.g. verifying
// what was written before it is recorded.
type PostAPIHook[TState StateConstraint, TAPI APIConstraint] func(ctx context.Context, api TAPI, st *TState) (apiOut TAPI, rs *ResponseInfo, err error)

// Generic type constraints restricted to available provider types.
//
// How to extend
// - Add your new types to the relevant union below.
// - Implement hooks() in the new resource that uses those types.

// StateConstraint enumerates the Terraform state models supported by the CRUD runner.
type StateConstraint interface {
	remoteFileResourceModel
}

// PayloadConstraint enumerates the request types used in Create/Update.
type PayloadConstraint interface {
	*remoteFileRequest
}

// APIConstraint enumerates the observation types returned by the hooks.
type APIConstraint interface {
	*remoteFileObservation
}

// CRUDHooks defines per‑resource behavior consumed by the generic runner.
//
// Required
// - BuildPayload: Construct the request from planned state (Create/Update).
// - APICreate/APIRead/APIUpdate/APIDelete: Perform the side effects.
// - ExtractID: Return the stable identifier from state (used for Read/Update/Delete).
// - MapToState: Map the observation to Terraform state.
//
// Optional
// - PostCreate/PostRead/PostUpdate: Follow-up checks on the observation.
// - Acceptable*Statuses: Override statuses that should be treated as success per operation.
// - TreatDelete404AsSuccess: Make Delete idempotent by treating 404 as success.
type CRUDHooks[TState StateConstraint, TPayload PayloadConstraint, TAPI APIConstraint] struct {
	// Required
	BuildPayload PayloadBuilderFunc[TState, TPayload]

	// Side effects
	APICreate CreateFunc[TPayload, TAPI]
	APIRead   ReadFunc[TState, TAPI]
	APIUpdate UpdateFunc[TPayload, TAPI]
	APIDelete DeleteFunc

	// State helpers
	ExtractID  ExtractIDFunc[TState]
	MapToState MapToStateFunc[TState, TAPI]

	PostCreate PostAPIHook[TState, TAPI]
	PostRead   PostAPIHook[TState, TAPI]
	PostUpdate PostAPIHook[TState, TAPI]

	// Per-operation status options
	AcceptableCreateStatuses []int
	AcceptableUpdateStatuses []int
	AcceptableDeleteStatuses []int
	TreatDelete404AsSuccess  bool
}

// ensureFunc is the diagnostics-bound Ensure helper passed to every Do* call (see ensureWith).
type ensureFunc func(ctx context.Context, action string, rs *ResponseInfo, err error, opts *EnsureSuccessOrDiagOptions) bool

// orDefaultStatuses returns the provided statuses when non‑empty,
// otherwise falls back to the supplied defaults. Used by Ensure* evaluation.
func orDefaultStatuses(got []int, def ...int) []int {
	if len(got) > 0 {
		return got
	}
	return def
}

// CRUDRunner coordinates the CRUD lifecycle using the per‑resource CRUDHooks.
type CRUDRunner[TState StateConstraint, TPayload PayloadConstraint, TAPI APIConstraint] struct {
	hooks CRUDHooks[TState, TPayload, TAPI]
}

// NewCRUDRunner constructs a CRUDRunner bound to the provided hooks.
// Typical usage: runner := NewCRUDRunner(r.hooks())
func NewCRUDRunner[TState StateConstraint, TPayload PayloadConstraint, TAPI APIConstraint](hooks CRUDHooks[TState, TPayload, TAPI]) CRUDRunner[TState, TPayload, TAPI] {
	return CRUDRunner[TState, TPayload, TAPI]{hooks: hooks}
}

// runPostHook runs an optional post hook (create/read/update) with shared ensure handling.
func (r CRUDRunner[TState, TPayload, TAPI]) runPostHook(
	ctx context.Context,
	label string,
	hook PostAPIHook[TState, TAPI],
	api TAPI,
	st *TState,
	ensure ensureFunc,
) (TAPI, bool) {
	if hook == nil {
		return api, true
	}
	api2, rs, err := hook(ctx, api, st)
	if !ensure(ctx, label, rs, err, &EnsureSuccessOrDiagOptions{IncludeBodySnippet: true}) {
		var zero TAPI
		return zero, false
	}
	return api2, true
}

// mapAndSetState performs the MapToState + setState sequence and returns accumulated diagnostics.
func (r CRUDRunner[TState, TPayload, TAPI]) mapAndSetState(
	ctx context.Context,
	api TAPI,
	st *TState,
	setState func(ctx context.Context, src *TState) diag.Diagnostics,
) diag.Diagnostics {
	var diags diag.Diagnostics
	diags.Append(r.hooks.MapToState(ctx, api, st)...)
	if diags.HasError() {
		return diags
	}
	diags.Append(setState(ctx, st)...)
	return diags
}

func (r CRUDRunner[TState, TPayload, TAPI]) ensureCreateOK(ctx context.Context, ensure ensureFunc, rs *ResponseInfo, err error) bool {
	return ensure(ctx, "create resource", rs, err, &EnsureSuccessOrDiagOptions{
		AcceptableStatuses: orDefaultStatuses(r.hooks.AcceptableCreateStatuses, http.StatusOK, http.StatusCreated),
		IncludeBodySnippet: true,
	})
}

func (r CRUDRunner[TState, TPayload, TAPI]) ensureReadOK(ctx context.Context, ensure ensureFunc, rs *ResponseInfo, err error) bool {
	return ensure(ctx, "read resource", rs, err, &EnsureSuccessOrDiagOptions{IncludeBodySnippet: true})
}

func (r CRUDRunner[TState, TPayload, TAPI]) ensureUpdateOK(ctx context.Context, ensure ensureFunc, rs *ResponseInfo, err error) bool {
	return ensure(ctx, "update resource", rs, err, &EnsureSuccessOrDiagOptions{
		AcceptableStatuses: orDefaultStatuses(r.hooks.AcceptableUpdateStatuses, http.StatusOK, http.StatusNoContent),
		IncludeBodySnippet: true,
	})
}

// ensureDeleteOK evaluates success for delete operations using AcceptableDeleteStatuses and 404 idempotency.
func (r CRUDRunner[TState, TPayload, TAPI]) ensureDeleteOK(ctx context.Context, ensure ensureFunc, rs *ResponseInfo, err error) bool {
	return ensure(ctx, "delete resource", rs, err, &EnsureSuccessOrDiagOptions{
		AcceptableStatuses:      orDefaultStatuses(r.hooks.AcceptableDeleteStatuses, http.StatusOK, http.StatusNoContent),
		TreatDelete404AsSuccess: r.hooks.TreatDelete404AsSuccess,
		IncludeBodySnippet:      true,
	})
}

// handleReadGone triggers remove() when the object is missing (404) or no longer
// matches state (410). Returns true if the caller should stop further processing.
func (r CRUDRunner[TState, TPayload, TAPI]) handleReadGone(
	ctx context.Context,
	rs *ResponseInfo,
	httpStatus func(*ResponseInfo) int,
	remove func(ctx context.Context),
) bool {
	switch httpStatus(rs) {
	case http.StatusNotFound, http.StatusGone:
		tflog.Info(ctx, "removing resource from state", map[string]interface{}{"reason": rs.Status})
		remove(ctx)
		return true
	}
	return false
}

// DoCreate orchestrates the Create lifecycle:
//
// Steps
// 1) getPlan: Read the Terraform planned state into TState.
// 2) BuildPayload: Build the request (TPayload) from TState.
// 3) APICreate: Perform the side effect.
// 4) PostCreate (optional): Verify the result.
// 5) MapToState: Map the observation (TAPI) back into TState.
// 6) setState: Persist the final state back to Terraform.
func (r CRUDRunner[TState, TPayload, TAPI]) DoCreate(
	ctx context.Context,
	getPlan func(ctx context.Context, dst *TState) diag.Diagnostics,
	setState func(ctx context.Context, src *TState) diag.Diagnostics,
	ensure ensureFunc,
) diag.Diagnostics {
	var diags diag.Diagnostics
	var st TState

	if d := getPlan(ctx, &st); d.HasError() {
		return d
	}

	payload, d2 := r.hooks.BuildPayload(ctx, &st)
	diags.Append(d2...)
	if diags.HasError() {
		return diags
	}

	api, rs, err := r.hooks.APICreate(ctx, payload)
	if !r.ensureCreateOK(ctx, ensure, rs, err) {
		return diags
	}

	api, ok := r.runPostHook(ctx, "post-create hook", r.hooks.PostCreate, api, &st, ensure)
	if !ok {
		return diags
	}

	diags.Append(r.mapAndSetState(ctx, api, &st, setState)...)
	return diags
}

// DoRead refreshes state from the observed object.
//
// Behavior
// - Reads current state (for ID) via getState.
// - Invokes APIRead; if httpStatus(response) is 404 or 410, remove() drops the resource from state.
// - Otherwise maps the observation into state and writes it using setState.
func (r CRUDRunner[TState, TPayload, TAPI]) DoRead(
	ctx context.Context,
	getState func(ctx context.Context, dst *TState) diag.Diagnostics,
	setState func(ctx context.Context, src *TState) diag.Diagnostics,
	remove func(ctx context.Context),
	ensure ensureFunc,
	httpStatus func(*ResponseInfo) int,
) diag.Diagnostics {
	var diags diag.Diagnostics
	var st TState

	if d := getState(ctx, &st); d.HasError() {
		return d
	}
	id := r.hooks.ExtractID(&st)

	api, rs, err := r.hooks.APIRead(ctx, id, &st)
	if err == nil && r.handleReadGone(ctx, rs, httpStatus, remove) {
		return diags
	}
	if !r.ensureReadOK(ctx, ensure, rs, err) {
		return diags
	}

	api, ok := r.runPostHook(ctx, "post-read hook", r.hooks.PostRead, api, &st, ensure)
	if !ok {
		return diags
	}

	diags.Append(r.mapAndSetState(ctx, api, &st, setState)...)
	return diags
}

// DoUpdate applies in-place changes and updates state.
//
// Steps
// - getPlan → BuildPayload → APIUpdate
// - MapToState → setState
func (r CRUDRunner[TState, TPayload, TAPI]) DoUpdate(
	ctx context.Context,
	getPlan func(ctx context.Context, dst *TState) diag.Diagnostics,
	setState func(ctx context.Context, src *TState) diag.Diagnostics,
	ensure ensureFunc,
) diag.Diagnostics {
	var diags diag.Diagnostics
	var st TState

	if d := getPlan(ctx, &st); d.HasError() {
		return d
	}
	id := r.hooks.ExtractID(&st)

	payload, d2 := r.hooks.BuildPayload(ctx, &st)
	diags.Append(d2...)
	if diags.HasError() {
		return diags
	}

	api, rs, err := r.hooks.APIUpdate(ctx, id, payload)
	if !r.ensureUpdateOK(ctx, ensure, rs, err) {
		return diags
	}

	api, ok := r.runPostHook(ctx, "post-update hook", r.hooks.PostUpdate, api, &st, ensure)
	if !ok {
		return diags
	}

	diags.Append(r.mapAndSetState(ctx, api, &st, setState)...)
	return diags
}

// DoDelete removes the object.
//
// Steps
//   - getState to obtain the ID
//   - APIDelete call
//   - ensure handles success codes; if TreatDelete404AsSuccess is set on hooks,
//     a 404 is treated as success for idempotent destroys.
func (r CRUDRunner[TState, TPayload, TAPI]) DoDelete(
	ctx context.Context,
	getState func(ctx context.Context, dst *TState) diag.Diagnostics,
	ensure ensureFunc,
) diag.Diagnostics {
	var diags diag.Diagnostics
	var st TState

	if d := getState(ctx, &st); d.HasError() {
		return d
	}
	id := r.hooks.ExtractID(&st)

	rs, err := r.hooks.APIDelete(ctx, id)
	r.ensureDeleteOK(ctx, ensure, rs, err)
	return diags
}
