// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"regexp"

	"github.com/devops-wiz/terraform-provider-tlsfetch/internal/credential"
	"github.com/devops-wiz/terraform-provider-tlsfetch/internal/fetch"
	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/int64planmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/listplanmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/mapplanmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/planmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/stringdefault"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/stringplanmodifier"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

var _ resource.Resource = (*remoteFileResource)(nil)
var _ resource.ResourceWithConfigure = (*remoteFileResource)(nil)
var _ resource.ResourceWithValidateConfig = (*remoteFileResource)(nil)

// privateKeyPEM matches inline key material so it never reaches the log sink.
var privateKeyPEM = regexp.MustCompile(`(?s)-----BEGIN [A-Z0-9 ]*PRIVATE KEY-----.*?-----END [A-Z0-9 ]*PRIVATE KEY-----`)

// NewRemoteFileResource returns the Terraform resource implementation for tlsfetch_remote_file.
func NewRemoteFileResource() resource.Resource { return &remoteFileResource{} }

type remoteFileResource struct {
	ServiceClient
}

func (r *remoteFileResource) Metadata(_ context.Context, req resource.MetadataRequest, resp *resource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_remote_file"
}

func (r *remoteFileResource) Configure(_ context.Context, req resource.ConfigureRequest, resp *resource.ConfigureResponse) {
	if req.ProviderData == nil {
		return
	}

	provider, ok := req.ProviderData.(*TLSFetchProvider)
	if !ok {
		resp.Diagnostics.AddError(
			"Unexpected Resource Configure Type",
			fmt.Sprintf("Expected TLSFetchProvider, got: %T. Please report this issue to the provider developers.", req.ProviderData),
		)
		return
	}

	r.ServiceClient = provider.ServiceClient
}

func (r *remoteFileResource) Schema(_ context.Context, _ resource.SchemaRequest, resp *resource.SchemaResponse) {
	credentialNote := " A value starting with `/` or a drive letter (e.g. `C:`) is read as a file path; anything else is used as inline PEM content. Falls back to the provider setting when unset."
	resp.Schema = schema.Schema{
		MarkdownDescription: "Downloads a file over HTTPS, optionally authenticating with a client certificate (mutual TLS) and trusting additional CAs. " +
			"The file is removed from state when it disappears or its content changes, so the next apply downloads it again.",
		Attributes: map[string]schema.Attribute{
			"id": schema.StringAttribute{
				Computed: true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
				MarkdownDescription: "The destination path.",
			},
			"path": schema.StringAttribute{
				Required:            true,
				MarkdownDescription: "Destination file path. The parent directory must exist.",
				PlanModifiers:       []planmodifier.String{stringplanmodifier.RequiresReplace()},
				Validators:          []validator.String{stringvalidator.LengthAtLeast(1)},
			},
			"source": schema.StringAttribute{
				Required:            true,
				MarkdownDescription: "URL to download, `https://` (or `http://` without TLS).",
				PlanModifiers:       []planmodifier.String{stringplanmodifier.RequiresReplace()},
				Validators: []validator.String{
					stringvalidator.RegexMatches(regexp.MustCompile(`^(?i)https?://`), "source must be an http or https URL."),
				},
			},
			attrClientCert: schema.StringAttribute{
				Optional:            true,
				MarkdownDescription: "Client certificate. When `client_key` is unset, a private key embedded in the same material is used." + credentialNote,
				PlanModifiers:       []planmodifier.String{stringplanmodifier.RequiresReplace()},
			},
			attrClientKey: schema.StringAttribute{
				Optional:            true,
				Sensitive:           true,
				MarkdownDescription: "Client private key." + credentialNote,
				PlanModifiers:       []planmodifier.String{stringplanmodifier.RequiresReplace()},
			},
			attrCA: schema.ListAttribute{
				Optional:            true,
				ElementType:         types.StringType,
				MarkdownDescription: "Additional trusted CA certificates, in trust order. They supplement the system roots." + credentialNote,
				PlanModifiers:       []planmodifier.List{listplanmodifier.RequiresReplace()},
			},
			"headers": schema.MapAttribute{
				Optional:            true,
				ElementType:         types.StringType,
				MarkdownDescription: "Extra request headers.",
				PlanModifiers:       []planmodifier.Map{mapplanmodifier.RequiresReplace()},
			},
			"file_permission": schema.StringAttribute{
				Optional:            true,
				Computed:            true,
				Default:             stringdefault.StaticString(defaultFilePermission),
				MarkdownDescription: "Permissions of the destination file as a four-digit octal string. Defaults to `0644`. Changing it does not download again.",
				Validators: []validator.String{
					stringvalidator.RegexMatches(regexp.MustCompile(`^0[0-7]{3}$`), "file_permission must be a four-digit octal string such as \"0644\"."),
				},
			},
			"status_code": schema.Int64Attribute{
				Computed:            true,
				MarkdownDescription: "HTTP status of the download.",
				PlanModifiers:       []planmodifier.Int64{int64planmodifier.UseStateForUnknown()},
			},
			"etag": schema.StringAttribute{
				Computed:            true,
				MarkdownDescription: "`ETag` response header of the download.",
				PlanModifiers:       []planmodifier.String{stringplanmodifier.UseStateForUnknown()},
			},
			"last_modified": schema.StringAttribute{
				Computed:            true,
				MarkdownDescription: "`Last-Modified` response header of the download.",
				PlanModifiers:       []planmodifier.String{stringplanmodifier.UseStateForUnknown()},
			},
			"cache_control": schema.StringAttribute{
				Computed:            true,
				MarkdownDescription: "`Cache-Control` response header of the download.",
				PlanModifiers:       []planmodifier.String{stringplanmodifier.UseStateForUnknown()},
			},
			"content_sha256": schema.StringAttribute{
				Computed:            true,
				MarkdownDescription: "Hex SHA-256 of the downloaded content.",
				PlanModifiers:       []planmodifier.String{stringplanmodifier.UseStateForUnknown()},
			},
			"content_length": schema.Int64Attribute{
				Computed:            true,
				MarkdownDescription: "Size of the downloaded content in bytes.",
				PlanModifiers:       []planmodifier.Int64{int64planmodifier.UseStateForUnknown()},
			},
		},
	}
}

func (r *remoteFileResource) ValidateConfig(ctx context.Context, req resource.ValidateConfigRequest, resp *resource.ValidateConfigResponse) {
	var data remoteFileResourceModel
	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	if !data.Source.IsNull() && !data.Source.IsUnknown() {
		if u, err := url.Parse(data.Source.ValueString()); err != nil || u.Host == "" {
			resp.Diagnostics.AddAttributeError(path.Root("source"), "Invalid source URL", RedactSecrets(fmt.Sprintf("source %q must be an absolute http or https URL with a host.", data.Source.ValueString())))
		}
	}

	// Inline credentials can be checked now; paths are read at apply time.
	if data.ClientCert.IsUnknown() || data.ClientKey.IsUnknown() {
		return
	}
	ca, deferEval := getKnownStrings(ctx, data.CA, attrCA, &resp.Diagnostics)
	if deferEval {
		return
	}
	rc := resolvedConfig{clientCert: data.ClientCert.ValueString(), clientKey: data.ClientKey.ValueString(), ca: ca}
	for _, e := range validateCredentials(rc) {
		addValidationErr(&resp.Diagnostics, sanitizeValidationError(e, rc))
	}
}

// credentialInput picks the resource value when set, else the provider default.
func credentialInput(v types.String, def string) credential.Input {
	if !v.IsNull() && !v.IsUnknown() {
		return credential.ParseInput(v.ValueString())
	}
	return credential.ParseInput(def)
}

// resolveCredentials resolves cfg with errors tied to the attribute that caused them.
func (r *remoteFileResource) resolveCredentials(cfg credential.Config) (*credential.Credentials, error) {
	resolver := r.resolver
	if resolver == nil {
		resolver = credential.NewResolver()
	}
	cert, err := resolver.ResolveClientCertificate(cfg.ClientCert)
	if err != nil {
		return nil, &attributeError{attr: attrClientCert, err: err}
	}
	key, err := resolver.ResolveClientKey(cfg.ClientKey, cfg.ClientCert)
	if err != nil {
		attr := attrClientKey
		if cfg.ClientKey.IsAbsent() {
			attr = attrClientCert
		}
		return nil, &attributeError{attr: attr, err: err}
	}
	cas, err := resolver.ResolveAuthorities(cfg.CA)
	if err != nil {
		return nil, &attributeError{attr: attrCA, err: err}
	}
	return &credential.Credentials{ClientCertificate: cert, ClientPrivateKey: key, TrustedAuthorities: cas}, nil
}

// observeFile hashes the file at name.
func observeFile(name string) (*remoteFileObservation, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", name)
	}
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return &remoteFileObservation{Path: name, Mode: info.Mode().Perm(), SHA256: hex.EncodeToString(h.Sum(nil)), Size: n}, nil
}

func progressLogger(ctx context.Context) fetch.ProgressFunc {
	return func(done, total int64) {
		fields := map[string]interface{}{"bytes": done}
		if total >= 0 {
			fields["total_bytes"] = total
		}
		tflog.Debug(ctx, "download progress", fields)
	}
}

func (r *remoteFileResource) download(ctx context.Context, p *remoteFileRequest) (*remoteFileObservation, *ResponseInfo, error) {
	if r.fetcher == nil {
		return nil, nil, errors.New("provider is not configured")
	}
	creds, err := r.resolveCredentials(p.Credentials)
	if err != nil {
		return nil, nil, err
	}
	sink, err := fetch.NewFileSink(p.Path, p.Mode)
	if err != nil {
		return nil, nil, &attributeError{attr: "path", err: err}
	}

	ctx = tflog.SetField(ctx, "path", p.Path)
	tflog.Info(ctx, "downloading remote file", map[string]interface{}{
		"source":      RedactSecrets(p.Source),
		"client_cert": p.Credentials.ClientCert.Kind().String(),
		"client_key":  p.Credentials.ClientKey.Kind().String(),
		"ca_count":    len(creds.TrustedAuthorities),
	})
	res, err := r.fetcher.Fetch(ctx, fetch.Request{
		URL:         p.Source,
		Header:      p.Header,
		Credentials: creds,
		Progress:    progressLogger(ctx),
	}, sink)
	if err != nil {
		return nil, responseFromFetch(nil, err), err
	}
	return &remoteFileObservation{
		Path:   p.Path,
		Mode:   p.Mode,
		SHA256: res.SHA256,
		Size:   res.BytesWritten,
		Result: res,
	}, responseFromFetch(res, nil), nil
}

// verifyDownload re-reads the committed destination and checks it against the download.
func (r *remoteFileResource) verifyDownload(_ context.Context, obs *remoteFileObservation, _ *remoteFileResourceModel) (*remoteFileObservation, *ResponseInfo, error) {
	local, err := observeFile(obs.Path)
	if err != nil {
		return nil, nil, err
	}
	if local.SHA256 != obs.SHA256 {
		return nil, nil, fmt.Errorf("destination %s changed while being written: expected sha256 %s, found %s", obs.Path, obs.SHA256, local.SHA256)
	}
	obs.Mode = local.Mode
	return obs, &ResponseInfo{StatusCode: http.StatusOK, Status: "200 OK"}, nil
}

func (r *remoteFileResource) inspect(_ context.Context, id string, st *remoteFileResourceModel) (*remoteFileObservation, *ResponseInfo, error) {
	obs, err := observeFile(id)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &ResponseInfo{StatusCode: http.StatusNotFound, Status: "404 Not Found: destination file is missing"}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if want := st.ContentSHA256.ValueString(); want != "" && want != obs.SHA256 {
		return nil, &ResponseInfo{StatusCode: http.StatusGone, Status: "410 Gone: destination content changed"}, nil
	}
	return obs, &ResponseInfo{StatusCode: http.StatusOK, Status: "200 OK"}, nil
}

func (r *remoteFileResource) chmod(_ context.Context, id string, p *remoteFileRequest) (*remoteFileObservation, *ResponseInfo, error) {
	if err := os.Chmod(id, p.Mode); err != nil {
		return nil, nil, &attributeError{attr: "file_permission", err: err}
	}
	obs, err := observeFile(id)
	if err != nil {
		return nil, nil, err
	}
	return obs, &ResponseInfo{StatusCode: http.StatusOK, Status: "200 OK"}, nil
}

func (r *remoteFileResource) remove(_ context.Context, id string) (*ResponseInfo, error) {
	err := os.Remove(id)
	if errors.Is(err, fs.ErrNotExist) {
		return &ResponseInfo{StatusCode: http.StatusNotFound, Status: "404 Not Found: destination file is missing"}, nil
	}
	if err != nil {
		return nil, err
	}
	return &ResponseInfo{StatusCode: http.StatusNoContent, Status: "204 No Content"}, nil
}

func (r *remoteFileResource) Create(ctx context.Context, req resource.CreateRequest, resp *resource.CreateResponse) {
	ctx, cancel := withTimeout(ctx, r.providerTimeouts.Create)
	defer cancel()
	ctx = tflog.MaskFieldValuesWithFieldKeys(ctx, attrClientKey)
	ctx = tflog.MaskAllFieldValuesRegexes(ctx, privateKeyPEM)

	runner := NewCRUDRunner(r.hooks())
	diags := runner.DoCreate(
		ctx,
		func(ctx context.Context, dst *remoteFileResourceModel) diag.Diagnostics {
			var d diag.Diagnostics
			d.Append(req.Plan.Get(ctx, dst)...)
			return d
		},
		func(ctx context.Context, src *remoteFileResourceModel) diag.Diagnostics {
			var d diag.Diagnostics
			d.Append(resp.State.Set(ctx, src)...)
			return d
		},
		ensureWith(&resp.Diagnostics),
	)
	resp.Diagnostics.Append(diags...)
}

func (r *remoteFileResource) Read(ctx context.Context, req resource.ReadRequest, resp *resource.ReadResponse) {
	ctx, cancel := withTimeout(ctx, r.providerTimeouts.Read)
	defer cancel()

	runner := NewCRUDRunner(r.hooks())
	diags := runner.DoRead(
		ctx,
		func(ctx context.Context, dst *remoteFileResourceModel) diag.Diagnostics {
			var d diag.Diagnostics
			d.Append(req.State.Get(ctx, dst)...)
			return d
		},
		func(ctx context.Context, src *remoteFileResourceModel) diag.Diagnostics {
			var d diag.Diagnostics
			d.Append(resp.State.Set(ctx, src)...)
			return d
		},
		func(ctx context.Context) { resp.State.RemoveResource(ctx) },
		ensureWith(&resp.Diagnostics),
		HTTPStatus,
	)
	resp.Diagnostics.Append(diags...)
}

func (r *remoteFileResource) Update(ctx context.Context, req resource.UpdateRequest, resp *resource.UpdateResponse) {
	ctx, cancel := withTimeout(ctx, r.providerTimeouts.Update)
	defer cancel()

	runner := NewCRUDRunner(r.hooks())
	diags := runner.DoUpdate(
		ctx,
		func(ctx context.Context, dst *remoteFileResourceModel) diag.Diagnostics {
			var d diag.Diagnostics
			d.Append(req.Plan.Get(ctx, dst)...)
			return d
		},
		func(ctx context.Context, src *remoteFileResourceModel) diag.Diagnostics {
			var d diag.Diagnostics
			d.Append(resp.State.Set(ctx, src)...)
			return d
		},
		ensureWith(&resp.Diagnostics),
	)
	resp.Diagnostics.Append(diags...)
}

func (r *remoteFileResource) Delete(ctx context.Context, req resource.DeleteRequest, resp *resource.DeleteResponse) {
	ctx, cancel := withTimeout(ctx, r.providerTimeouts.Delete)
	defer cancel()

	runner := NewCRUDRunner(r.hooks())
	diags := runner.DoDelete(
		ctx,
		func(ctx context.Context, dst *remoteFileResourceModel) diag.Diagnostics {
			var d diag.Diagnostics
			d.Append(req.State.Get(ctx, dst)...)
			return d
		},
		ensureWith(&resp.Diagnostics),
	)
	resp.Diagnostics.Append(diags...)
}

// buildRequest derives the download request from planned state and provider defaults.
func (r *remoteFileResource) buildRequest(ctx context.Context, st *remoteFileResourceModel) (*remoteFileRequest, diag.Diagnostics) {
	var diags diag.Diagnostics

	mode, err := parseFileMode(st.FilePermission.ValueString())
	if err != nil {
		diags.AddAttributeError(path.Root("file_permission"), "Invalid file permission", err.Error())
	}

	headers, _ := getKnownStringMap(ctx, st.Headers, "headers", &diags)
	var h http.Header
	if len(headers) > 0 {
		h = make(http.Header, len(headers))
		for k, v := range headers {
			h.Set(k, v)
		}
	}

	ca := r.defaults.ca
	if !st.CA.IsNull() {
		ca, _ = getKnownStrings(ctx, st.CA, attrCA, &diags)
	}
	if diags.HasError() {
		return nil, diags
	}

	return &remoteFileRequest{
		Path:   st.Path.ValueString(),
		Source: st.Source.ValueString(),
		Header: h,
		Mode:   mode,
		Credentials: credential.Config{
			ClientCert: credentialInput(st.ClientCert, r.defaults.clientCert),
			ClientKey:  credentialInput(st.ClientKey, r.defaults.clientKey),
			CA:         credential.Inputs(ca...),
		},
	}, diags
}

// hooks returns the CRUD hooks for the generic runner.
func (r *remoteFileResource) hooks() CRUDHooks[remoteFileResourceModel, *remoteFileRequest, *remoteFileObservation] {
	return CRUDHooks[remoteFileResourceModel, *remoteFileRequest, *remoteFileObservation]{
		BuildPayload:            r.buildRequest,
		APICreate:               r.download,
		APIRead:                 r.inspect,
		APIUpdate:               r.chmod,
		APIDelete:               r.remove,
		ExtractID:               func(st *remoteFileResourceModel) string { return st.Path.ValueString() },
		MapToState:              mapRemoteFileObservationToModel,
		PostCreate:              r.verifyDownload,
		TreatDelete404AsSuccess: true,
	}
}
