// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/devops-wiz/terraform-provider-tlsfetch/internal/credential"
	"github.com/devops-wiz/terraform-provider-tlsfetch/internal/fetch"
	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/types"
)

// remoteFileResourceModel models the Terraform schema/state for tlsfetch_remote_file.
type remoteFileResourceModel struct {
	ID             types.String `tfsdk:"id"`
	Path           types.String `tfsdk:"path"`
	Source         types.String `tfsdk:"source"`
	ClientCert     types.String `tfsdk:"client_cert"`
	ClientKey      types.String `tfsdk:"client_key"`
	CA             types.List   `tfsdk:"ca"`
	Headers        types.Map    `tfsdk:"headers"`
	FilePermission types.String `tfsdk:"file_permission"`

	StatusCode    types.Int64  `tfsdk:"status_code"`
	ETag          types.String `tfsdk:"etag"`
	LastModified  types.String `tfsdk:"last_modified"`
	CacheControl  types.String `tfsdk:"cache_control"`
	ContentSHA256 types.String `tfsdk:"content_sha256"`
	ContentLength types.Int64  `tfsdk:"content_length"`
}

// remoteFileRequest is one planned download. Credentials stay unresolved until
// the fetch itself so every attempt re-reads the configured files.
type remoteFileRequest struct {
	Path        string
	Source      string
	Header      http.Header
	Mode        fs.FileMode
	Credentials credential.Config
}

// remoteFileObservation describes the destination after a download or a local check.
// Result is set only when the observation comes from a download.
type remoteFileObservation struct {
	Path   string
	Mode   fs.FileMode
	SHA256 string
	Size   int64
	Result *fetch.Result
}

func parseFileMode(s string) (fs.FileMode, error) {
	if s == "" {
		s = defaultFilePermission
	}
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil || v > 0o777 {
		return 0, fmt.Errorf("file_permission %q is not an octal permission like \"0644\"", s)
	}
	return fs.FileMode(v), nil
}

func formatFileMode(m fs.FileMode) string {
	return fmt.Sprintf("%04o", m.Perm())
}

// mapRemoteFileObservationToModel records the observation in st. Response
// metadata is only replaced when the observation carries a download result.
func mapRemoteFileObservationToModel(_ context.Context, obs *remoteFileObservation, st *remoteFileResourceModel) diag.Diagnostics {
	var diags diag.Diagnostics
	if obs == nil {
		diags.AddError("Missing remote file observation", "No observation was produced for the destination file. Please report this issue to the provider developers.")
		return diags
	}
	st.ID = types.StringValue(obs.Path)
	st.FilePermission = types.StringValue(formatFileMode(obs.Mode))
	st.ContentSHA256 = types.StringValue(obs.SHA256)
	st.ContentLength = int64OrNull(obs.Size)

	if res := obs.Result; res != nil {
		st.StatusCode = types.Int64Value(int64(res.StatusCode))
		st.ETag = stringOrNull(res.ETag)
		st.LastModified = stringOrNull(res.LastModified)
		st.CacheControl = stringOrNull(res.CacheControl)
	}
	return diags
}
