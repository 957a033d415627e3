// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"github.com/devops-wiz/terraform-provider-tlsfetch/internal/credential"
	"github.com/devops-wiz/terraform-provider-tlsfetch/internal/fetch"
)

// ServiceClient is the provider-level state every resource receives in Configure.
type ServiceClient struct {
	fetcher          *fetch.Fetcher
	resolver         *credential.Resolver
	defaults         credentialDefaults
	providerTimeouts opTimeouts
}

// credentialDefaults are the provider-level credentials used by resources that leave their own unset.
type credentialDefaults struct {
	clientCert string
	clientKey  string
	ca         []string
}
