// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/baitcode/starknet-deploy/internal/log"
	"github.com/baitcode/starknet-deploy/internal/merkle"
)

var (
	proofsMetadata string
	proofsOut      string
)

// proofsCmd represents the proofs command
var proofsCmd = &cobra.Command{
	Use:   "proofs",
	Short: "Build the token metadata Merkle tree and write a proof per token",
	Long: `Read token metadata rows (token_id,name,birthplace,ethnicity,occupation,special_trait)
with a header line, build the Merkle tree whose root the NFT contract is deployed
with, and write every row again with its encoded traits, the root and its proof.

Text values are encoded as short strings of at most 31 bytes. An empty
special_trait is recorded as "None".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.LoggerFromContext(cmd.Context())

		in, err := os.Open(proofsMetadata)
		if err != nil {
			return fmt.Errorf("open metadata: %w", err)
		}
		defer in.Close()

		tokens, err := merkle.ReadMetadata(in)
		if err != nil {
			return fmt.Errorf("%s: %w", proofsMetadata, err)
		}
		logger.Debug("metadata read", "path", proofsMetadata, "tokens", len(tokens))

		tree, err := merkle.New(tokens)
		if err != nil {
			return err
		}

		out, err := os.Create(proofsOut)
		if err != nil {
			return fmt.Errorf("create proofs file: %w", err)
		}
		if err := merkle.WriteProofs(out, tokens, tree); err != nil {
			out.Close()
			return fmt.Errorf("write %s: %w", proofsOut, err)
		}
		if err := out.Close(); err != nil {
			return err
		}
		logger.Info("proofs written", "path", proofsOut)

		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Merkle root: %s\n", tree.Root())
		return nil
	},
}

func init() {
	proofsCmd.Flags().StringVar(&proofsMetadata, "metadata", "src/metadata_updated.csv", "token metadata CSV")
	proofsCmd.Flags().StringVar(&proofsOut, "out", "src/metadata_with_proofs.csv", "where to write the metadata with proofs")
	rootCmd.AddCommand(proofsCmd)
}
