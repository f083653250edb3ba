// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/baitcode/starknet-deploy/internal/account"
	"github.com/baitcode/starknet-deploy/internal/artifact"
	"github.com/baitcode/starknet-deploy/internal/config"
	"github.com/baitcode/starknet-deploy/internal/ledger"
	"github.com/baitcode/starknet-deploy/internal/log"
	"github.com/baitcode/starknet-deploy/internal/starknet"
	"github.com/baitcode/starknet-deploy/internal/workflow"
)

const defaultContract = "NFTMint"

var (
	envFile   string
	logLevel  string
	noSpinner bool

	cfg    *config.Config
	logger hclog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "starknet-deploy",
	Short: "Declare and deploy Starknet contracts",
	Long: `starknet-deploy declares compiled Cairo contracts and deploys them to a
Starknet network, keeping class hashes and contract addresses in a JSON ledger.

Credentials are read from ACCOUNT_ADDRESS and PRIVATE_KEY, either in the
environment or in a .env file.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute adds all child commands to the root command and runs it. It exits
// with status 1 on any error.
func Execute() {
	// Terraform starts plugins without arguments.
	if len(os.Args) == 1 && os.Getenv("TF_PLUGIN_MAGIC_COOKIE") != "" {
		rootCmd.SetArgs([]string{"provider"})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the root command and reports a failure on stderr once.
func run(ctx context.Context, stderr io.Writer) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, color.RedString("Error: %s", err))
		return 1
	}
	return 0
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&envFile, "env-file", config.DefaultEnvFile, "env file with ACCOUNT_ADDRESS and PRIVATE_KEY")
	flags.String("ledger", config.DefaultLedgerPath, "JSON ledger of declared and deployed contracts")
	flags.String("artifacts-dir", config.DefaultArtifactsDir, "directory holding the compiled contract classes")
	flags.String("namespace", config.DefaultNamespace, "package prefix of the compiled contract file names")
	flags.StringVar(&logLevel, "log-level", "info", "log level: trace, debug, info, warn or error")
	flags.BoolVar(&noSpinner, "no-spinner", false, "do not animate while waiting for transactions")
}

// initConfig reads in the env file and ENV variables.
func initConfig(cmd *cobra.Command, _ []string) error {
	logger = log.New(logLevel, cmd.ErrOrStderr())

	v := viper.New()
	flags := cmd.Flags()
	for key, flag := range map[string]string{
		config.KeyLedger:       "ledger",
		config.KeyArtifactsDir: "artifacts-dir",
		config.KeyNamespace:    "namespace",
	} {
		if f := flags.Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	var err error
	cfg, err = config.Load(v, envFile)
	if err != nil {
		return err
	}
	if cfg.EnvFile != "" {
		logger.Debug("using env file", "path", cfg.EnvFile)
	}

	cmd.SetContext(log.WithLogger(cmd.Context(), logger))
	return nil
}

// connect dials the configured endpoint and resolves the signing account.
func connect(ctx context.Context) (workflow.Chain, error) {
	provider, err := rpc.NewProvider(cfg.RPCEndpoint)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.RPCEndpoint, err)
	}
	log.LoggerFromContext(ctx).Debug("connected", "endpoint", cfg.RPCEndpoint)

	a, err := account.Resolve(ctx, provider, cfg.Credentials, cfg.CairoVersion)
	if err != nil {
		return nil, err
	}
	return starknet.NewClient(a, provider, cfg.PollInterval), nil
}

func newWorkflow(cmd *cobra.Command) *workflow.Workflow {
	return workflow.New(
		ledger.NewStore(cfg.LedgerPath),
		artifact.NewLoader(cfg.ArtifactsDir, cfg.Namespace),
		connectFunc,
		cmd.OutOrStdout(),
	).WithProgress(log.NewSpinner(os.Stderr, !noSpinner))
}

// connectFunc is swapped out in tests.
var connectFunc workflow.Connector = connect

func contractName(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultContract
}
