// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"time"

	"github.com/hashicorp/terraform-plugin-framework/types"
)

// TLSFetchProviderModel describes the provider data model.
type TLSFetchProviderModel struct {
	// Default credentials, used by resources that leave their own unset.
	ClientCert types.String `tfsdk:"client_cert"`
	ClientKey  types.String `tfsdk:"client_key"`
	CA         types.List   `tfsdk:"ca"`

	// HTTP
	HTTPTimeoutSeconds types.Int64 `tfsdk:"http_timeout_seconds"`
	ProgressIntervalMs types.Int64 `tfsdk:"progress_interval_ms"`

	// Retry
	RetryOn4295xx         types.Bool  `tfsdk:"retry_on_429_5xx"`
	RetryMaxAttempts      types.Int64 `tfsdk:"retry_max_attempts"`
	RetryInitialBackoffMs types.Int64 `tfsdk:"retry_initial_backoff_ms"`
	RetryMaxBackoffMs     types.Int64 `tfsdk:"retry_max_backoff_ms"`

	OperationTimeouts *OperationTimeoutsModel `tfsdk:"operation_timeouts"`
}

type OperationTimeoutsModel struct {
	Create types.String `tfsdk:"create"`
	Read   types.String `tfsdk:"read"`
	Update types.String `tfsdk:"update"`
	Delete types.String `tfsdk:"delete"`
}

type opTimeouts struct {
	Create time.Duration
	Read   time.Duration
	Update time.Duration
	Delete time.Duration
}
