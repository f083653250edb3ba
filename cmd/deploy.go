// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/utils"
	"github.com/spf13/cobra"

	"github.com/baitcode/starknet-deploy/internal/workflow"
)

var (
	deploySalt   string
	deployUnique bool
)

// deployCmd represents the deploy command
var deployCmd = &cobra.Command{
	Use:   "deploy [contract_name]",
	Short: "Deploy a declared contract and record its address",
	Long: `Deploy an instance of a previously declared contract through the Universal
Deployer Contract, passing the account address as the owner constructor argument.

The class hash is taken from the ledger, so the contract must have been declared
first. Running deploy again creates a new instance and replaces the recorded address.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := workflow.DeployOptions{Unique: deployUnique}
		if deploySalt != "" {
			salt, err := parseSalt(deploySalt)
			if err != nil {
				return err
			}
			opts.Salt = salt
		}

		_, err := newWorkflow(cmd).Deploy(cmd.Context(), contractName(args), opts)
		return err
	},
}

func parseSalt(s string) (*felt.Felt, error) {
	salt, err := utils.HexToFelt(s)
	if err != nil {
		return nil, fmt.Errorf("invalid salt %q: %w", s, err)
	}
	return salt, nil
}

func init() {
	deployCmd.Flags().StringVar(&deploySalt, "salt", "", "hex salt for the contract address, random when empty")
	deployCmd.Flags().BoolVar(&deployUnique, "unique", true, "mix the account address into the salt")
	rootCmd.AddCommand(deployCmd)
}
