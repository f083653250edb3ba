// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/hashicorp/terraform-plugin-framework/providerserver"
	"github.com/spf13/cobra"

	"github.com/baitcode/starknet-deploy/internal/provider"
)

const providerAddress = "registry.terraform.io/baitcode/starknet"

var providerDebug bool

// providerCmd represents the provider command
var providerCmd = &cobra.Command{
	Use:   "provider",
	Short: "Serve the starknet Terraform provider",
	Long: `Serve the starknet Terraform provider over the plugin protocol.

Terraform starts this command itself. Use --debug to run it standalone and
attach Terraform through TF_REATTACH_PROVIDERS.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return providerserver.Serve(cmd.Context(), provider.New(Version), providerserver.ServeOpts{
			Address: providerAddress,
			Debug:   providerDebug,
		})
	},
}

func init() {
	providerCmd.Flags().BoolVar(&providerDebug, "debug", false, "run the provider with support for debuggers like delve")
	rootCmd.AddCommand(providerCmd)
}
