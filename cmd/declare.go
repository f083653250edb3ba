// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

// declareCmd represents the declare command
var declareCmd = &cobra.Command{
	Use:   "declare [contract_name]",
	Short: "Declare a compiled contract class and record its class hash",
	Long: `Declare the compiled class of a contract and record its class hash in the ledger.

The class is read from <artifacts-dir>/<namespace>_<contract_name>.contract_class.json
and its compiled form from the matching .compiled_contract_class.json file.
Declaring the same class again is harmless and records the same class hash.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := newWorkflow(cmd).Declare(cmd.Context(), contractName(args))
		return err
	},
}

func init() {
	rootCmd.AddCommand(declareCmd)
}
