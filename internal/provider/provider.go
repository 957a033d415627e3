// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"

	"github.com/devops-wiz/terraform-provider-tlsfetch/internal/credential"
	"github.com/hashicorp/terraform-plugin-framework-validators/int64validator"
	"github.com/hashicorp/terraform-plugin-framework-validators/listvalidator"
	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/provider"
	"github.com/hashicorp/terraform-plugin-framework/provider/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// Ensure TLSFetchProvider satisfies various provider interfaces.
var _ provider.Provider = &TLSFetchProvider{}
var _ provider.ProviderWithValidateConfig = &TLSFetchProvider{}

// TLSFetchProvider defines the provider implementation.
type TLSFetchProvider struct {
	// version is set to the provider version on release, "dev" when the
	// provider is built and ran locally, and "test" when running acceptance
	// testing.
	version string

	ServiceClient
}

func (p *TLSFetchProvider) Metadata(_ context.Context, _ provider.MetadataRequest, resp *provider.MetadataResponse) {
	resp.TypeName = "tlsfetch"
	resp.Version = p.version
}

func (p *TLSFetchProvider) Schema(_ context.Context, _ provider.SchemaRequest, resp *provider.SchemaResponse) {
	credentialNote := " A value starting with `/` or a drive letter (e.g. `C:`) is read as a file path; anything else is used as inline PEM content."
	resp.Schema = schema.Schema{
		MarkdownDescription: "Downloads files over HTTPS with optional mutual TLS. Credentials set here are the defaults for every `tlsfetch_remote_file`.",
		Attributes: map[string]schema.Attribute{
			// Default credentials
			attrClientCert: schema.StringAttribute{
				MarkdownDescription: "Default client certificate. May also carry the private key as a combined PEM bundle. Falls back to `" + envClientCert + "`." + credentialNote,
				Optional:            true,
			},
			attrClientKey: schema.StringAttribute{
				MarkdownDescription: "Default client private key. Falls back to `" + envClientKey + "`." + credentialNote,
				Optional:            true,
				Sensitive:           true,
			},
			attrCA: schema.ListAttribute{
				MarkdownDescription: "Default additional trusted CA certificates, in trust order. They supplement the system roots. Falls back to `" + envCA + "` (entries separated by the OS path-list separator)." + credentialNote,
				ElementType:         types.StringType,
				Optional:            true,
				Validators: []validator.List{
					listvalidator.SizeAtLeast(1),
				},
			},

			// HTTP
			attrHTTPTimeoutSeconds: schema.Int64Attribute{
				MarkdownDescription: "Timeout in seconds for connecting (including the TLS handshake) and for each read. Defaults to 300.",
				Optional:            true,
				Validators: []validator.Int64{
					int64validator.Between(1, 3600),
				},
			},
			attrProgressInterval: schema.Int64Attribute{
				MarkdownDescription: "Minimum interval in milliseconds between download progress log lines. Defaults to 1000.",
				Optional:            true,
				Validators: []validator.Int64{
					int64validator.Between(10, 600000),
				},
			},

			// Retry
			attrRetryOn4295xx: schema.BoolAttribute{
				MarkdownDescription: "Retry downloads that fail with HTTP 429, 5xx, or a transient network error. Defaults to false.",
				Optional:            true,
			},
			attrRetryMaxAttempts: schema.Int64Attribute{
				MarkdownDescription: "Maximum number of retries when `retry_on_429_5xx` is true. Defaults to 4.",
				Optional:            true,
				Validators: []validator.Int64{
					int64validator.Between(1, 10),
				},
			},
			attrRetryInitialBackoff: schema.Int64Attribute{
				MarkdownDescription: "Initial retry backoff in milliseconds. Defaults to 500.",
				Optional:            true,
				Validators: []validator.Int64{
					int64validator.Between(100, 600000),
				},
			},
			attrRetryMaxBackoff: schema.Int64Attribute{
				MarkdownDescription: "Maximum retry backoff in milliseconds. Defaults to 5000.",
				Optional:            true,
				Validators: []validator.Int64{
					int64validator.Between(100, 600000),
				},
			},

			attrOperationTimeouts: schema.SingleNestedAttribute{
				MarkdownDescription: "Per-operation timeouts applied to resource CRUD, as Go durations (e.g. `30s`, `10m`).",
				Optional:            true,
				Attributes: map[string]schema.Attribute{
					"create": schema.StringAttribute{Optional: true, MarkdownDescription: "Timeout for create (download)."},
					"read":   schema.StringAttribute{Optional: true, MarkdownDescription: "Timeout for read (destination check)."},
					"update": schema.StringAttribute{Optional: true, MarkdownDescription: "Timeout for update."},
					"delete": schema.StringAttribute{Optional: true, MarkdownDescription: "Timeout for delete."},
				},
			},
		},
	}
}

func (p *TLSFetchProvider) ValidateConfig(ctx context.Context, req provider.ValidateConfigRequest, resp *provider.ValidateConfigResponse) {
	var data TLSFetchProviderModel
	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	if _, errs := parseOperationTimeouts(data.OperationTimeouts); len(errs) > 0 {
		for _, e := range errs {
			resp.Diagnostics.AddAttributeError(path.Root(attrOperationTimeouts).AtName(e.attr), e.summary, e.detail)
		}
	}

	// Unknown values are validated again in Configure once they are known.
	if data.ClientCert.IsUnknown() || data.ClientKey.IsUnknown() || listHasUnknown(data.CA) {
		return
	}
	rc, diags := deriveResolvedConfig(ctx, data)
	resp.Diagnostics.Append(diags...)
	for _, e := range validateResolvedConfig(rc) {
		addValidationErr(&resp.Diagnostics, e)
	}
}

func (p *TLSFetchProvider) Configure(ctx context.Context, req provider.ConfigureRequest, resp *provider.ConfigureResponse) {
	var data TLSFetchProviderModel
	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	rc, diags := deriveResolvedConfig(ctx, data)
	resp.Diagnostics.Append(diags...)
	for _, e := range validateResolvedConfig(rc) {
		addValidationErr(&resp.Diagnostics, e)
	}
	timeouts, terrs := parseOperationTimeouts(data.OperationTimeouts)
	for _, e := range terrs {
		resp.Diagnostics.AddAttributeError(path.Root(attrOperationTimeouts).AtName(e.attr), e.summary, e.detail)
	}
	if resp.Diagnostics.HasError() {
		return
	}

	p.fetcher = buildFetcher(rc, p.version)
	p.resolver = credential.NewResolver()
	p.defaults = credentialDefaults{clientCert: rc.clientCert, clientKey: rc.clientKey, ca: rc.ca}
	p.providerTimeouts = timeouts

	tflog.Debug(ctx, "configured tlsfetch provider", map[string]interface{}{
		"default_client_cert": credential.ParseInput(rc.clientCert).Kind().String(),
		"default_client_key":  credential.ParseInput(rc.clientKey).Kind().String(),
		"default_ca_count":    len(rc.ca),
		"http_timeout":        rc.httpTimeoutSeconds,
		"retry":               rc.retryOn4295xx,
	})

	resp.ResourceData = p
	resp.DataSourceData = p
}

func (p *TLSFetchProvider) Resources(_ context.Context) []func() resource.Resource {
	return []func() resource.Resource{
		NewRemoteFileResource,
	}
}

func (p *TLSFetchProvider) DataSources(_ context.Context) []func() datasource.DataSource {
	return []func() datasource.DataSource{}
}

// addValidationErr appends e as an attribute-scoped error when it names an attribute.
func addValidationErr(diags *diag.Diagnostics, e validationErr) {
	if e.attr == "" {
		diags.AddError(e.summary, e.detail)
		return
	}
	diags.AddAttributeError(path.Root(e.attr), e.summary, e.detail)
}

func New(version string) func() provider.Provider {
	return func() provider.Provider {
		return &TLSFetchProvider{
			version: version,
		}
	}
}
