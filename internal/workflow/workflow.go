package workflow

import (
	"context"
	"fmt"
	"io"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/utils"
	"github.com/fatih/color"

	"github.com/baitcode/starknet-deploy/internal/artifact"
	"github.com/baitcode/starknet-deploy/internal/ledger"
	"github.com/baitcode/starknet-deploy/internal/log"
	"github.com/baitcode/starknet-deploy/internal/starknet"
)

// Chain is the part of starknet.Client the workflow drives.
type Chain interface {
	AccountAddress() *felt.Felt
	Declare(ctx context.Context, pair *artifact.Pair) (*starknet.DeclareResult, error)
	Deploy(ctx context.Context, req starknet.DeployRequest) (*starknet.DeployResult, error)
	WaitForTransaction(ctx context.Context, txHash *felt.Felt) error
}

// Connector resolves the signing account and returns a chain bound to it.
type Connector func(ctx context.Context) (Chain, error)

// Progress is shown while a transaction is awaited, e.g. a terminal spinner.
type Progress interface {
	Start(msg string)
	Stop()
}

type noProgress struct{}

func (noProgress) Start(string) {}
func (noProgress) Stop()        {}

// Workflow runs one declare or deploy phase and records it in the ledger.
// The ledger is only rewritten once the transaction is confirmed.
type Workflow struct {
	ledger    *ledger.Store
	artifacts *artifact.Loader
	connect   Connector
	progress  Progress
	out       io.Writer
}

// New returns a workflow over the ledger store and artifacts that writes
// user-facing lines to out. connect is called at most once per phase, after
// the ledger and artifacts are known to be usable.
func New(store *ledger.Store, artifacts *artifact.Loader, connect Connector, out io.Writer) *Workflow {
	return &Workflow{
		ledger:    store,
		artifacts: artifacts,
		connect:   connect,
		progress:  noProgress{},
		out:       out,
	}
}

// WithProgress sets the indicator shown while waiting. nil keeps the current one.
func (w *Workflow) WithProgress(p Progress) *Workflow {
	if p != nil {
		w.progress = p
	}
	return w
}

func (w *Workflow) printf(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

func (w *Workflow) connectChain(ctx context.Context) (Chain, error) {
	chain, err := w.connect(ctx)
	if err != nil {
		return nil, err
	}
	w.printf("account imported: %s\n", chain.AccountAddress())
	return chain, nil
}

func (w *Workflow) wait(ctx context.Context, chain Chain, txHash *felt.Felt) error {
	w.progress.Start(fmt.Sprintf("waiting for transaction %s", txHash))
	defer w.progress.Stop()
	return chain.WaitForTransaction(ctx, txHash)
}

// Declare registers the compiled artifacts of name and records the class hash.
func (w *Workflow) Declare(ctx context.Context, name string) (*ledger.Record, error) {
	logger := log.LoggerFromContext(ctx).With("contract", name)

	deployments, err := w.ledger.Load()
	if err != nil {
		return nil, err
	}

	pair, err := w.artifacts.Load(name)
	if err != nil {
		return nil, err
	}

	chain, err := w.connectChain(ctx)
	if err != nil {
		return nil, err
	}

	w.printf("declaring %s\n", name)
	result, err := chain.Declare(ctx, pair)
	if err != nil {
		return nil, fmt.Errorf("declare %s: %w", name, err)
	}

	if result.AlreadyDeclared() {
		logger.Info("class already on chain, nothing to wait for")
	} else {
		logger.Info("declare sent", "transaction_hash", result.TransactionHash.String())
		if err := w.wait(ctx, chain, result.TransactionHash); err != nil {
			return nil, fmt.Errorf("declare %s: %w", name, err)
		}
	}

	classHash := result.ClassHash.String()
	color.New(color.FgGreen).Fprintf(w.out, "%s declared with class hash = %s\n", name, classHash)

	deployments.Declared(name, classHash)
	if err := w.ledger.Save(deployments); err != nil {
		return nil, err
	}
	logger.Debug("ledger updated", "path", w.ledger.Path())

	rec, _ := deployments.Get(name)
	return &rec, nil
}

// DeployOptions tune the Universal Deployer call made by Deploy.
type DeployOptions struct {
	// Salt is drawn at random when nil.
	Salt   *felt.Felt
	Unique bool
}

// Deploy instantiates the class recorded for name with the account address
// as the single constructor argument and records the contract address.
func (w *Workflow) Deploy(ctx context.Context, name string, opts DeployOptions) (*ledger.Record, error) {
	logger := log.LoggerFromContext(ctx).With("contract", name)

	deployments, err := w.ledger.Load()
	if err != nil {
		return nil, err
	}

	recorded, err := deployments.ClassHash(name)
	if err != nil {
		return nil, err
	}
	classHash, err := utils.HexToFelt(recorded)
	if err != nil {
		return nil, fmt.Errorf("%w: class_hash %q of %s: %w", ledger.ErrLedger, recorded, name, err)
	}

	// Redeploying is allowed; the new address replaces the recorded one.
	if prev, _ := deployments.Get(name); prev.Address != "" {
		logger.Warn("contract already deployed, deploying a new instance", "address", prev.Address)
	}

	chain, err := w.connectChain(ctx)
	if err != nil {
		return nil, err
	}

	w.printf("deploying %s\n", name)
	result, err := chain.Deploy(ctx, starknet.DeployRequest{
		ClassHash: classHash,
		Salt:      opts.Salt,
		Unique:    opts.Unique,
		Calldata:  []*felt.Felt{chain.AccountAddress()},
	})
	if err != nil {
		return nil, fmt.Errorf("deploy %s: %w", name, err)
	}
	logger.Info("deploy sent", "transaction_hash", result.TransactionHash.String())

	if err := w.wait(ctx, chain, result.TransactionHash); err != nil {
		return nil, fmt.Errorf("deploy %s: %w", name, err)
	}

	address := result.Address.String()
	color.New(color.FgGreen).Fprintf(w.out, "%s deployed at: %s\n", name, address)

	if err := deployments.Deployed(name, address); err != nil {
		return nil, err
	}
	if err := w.ledger.Save(deployments); err != nil {
		return nil, err
	}
	logger.Debug("ledger updated", "path", w.ledger.Path())

	rec, _ := deployments.Get(name)
	return &rec, nil
}
