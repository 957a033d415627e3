// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"os"
	"testing"

	"github.com/hashicorp/terraform-plugin-framework/providerserver"
	"github.com/hashicorp/terraform-plugin-go/tfprotov6"
)

// testAccPreCheck keeps ambient provider credentials out of acceptance tests;
// every test serves its own PKI.
func testAccPreCheck(t *testing.T) {
	for _, env := range []string{envClientCert, envClientKey, envCA} {
		if v := os.Getenv(env); v != "" {
			t.Fatalf("%s must be unset for acceptance tests", env)
		}
	}
}

// Provider factory for acceptance tests
var testAccProtoV6ProviderFactories = map[string]func() (tfprotov6.ProviderServer, error){
	"tlsfetch": providerserver.NewProtocol6WithError(New("test")()),
}
