// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/baitcode/starknet-deploy/internal/ledger"
)

// ledgerCmd represents the ledger command
var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "List the contracts recorded in the ledger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deployments, err := ledger.NewStore(cfg.LedgerPath).Load()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CONTRACT\tPHASE\tCLASS HASH\tADDRESS")
		for _, name := range deployments.Names() {
			rec, _ := deployments.Get(name)
			address := rec.Address
			if address == "" {
				address = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, rec.Phase(), rec.ClassHash, address)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
}
