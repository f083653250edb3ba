package starknet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/account"
	"github.com/NethermindEth/starknet.go/rpc"

	"github.com/baitcode/starknet-deploy/internal/artifact"
	"github.com/baitcode/starknet-deploy/internal/log"
)

var ErrReverted = errors.New("transaction reverted")

type DeclareResult struct {
	// TransactionHash is nil when the class was already declared.
	TransactionHash *felt.Felt
	ClassHash       *felt.Felt
}

func (r *DeclareResult) AlreadyDeclared() bool {
	return r.TransactionHash == nil
}

type DeployResult struct {
	TransactionHash *felt.Felt
	Address         *felt.Felt
	// Salt is the one sent, drawn at random when the request had none.
	Salt *felt.Felt
}

// Client sends declare and deploy transactions on behalf of one account.
type Client struct {
	account      *account.Account
	provider     rpc.RpcProvider
	pollInterval time.Duration
}

func NewClient(a *account.Account, provider rpc.RpcProvider, pollInterval time.Duration) *Client {
	return &Client{
		account:      a,
		provider:     provider,
		pollInterval: pollInterval,
	}
}

func (c *Client) AccountAddress() *felt.Felt {
	return c.account.AccountAddress
}

// Declare registers pair on chain. A class the node already knows is not an
// error: its class hash is returned without a transaction.
func (c *Client) Declare(ctx context.Context, pair *artifact.Pair) (*DeclareResult, error) {
	classHash := pair.ClassHash()
	compiledClassHash := pair.CompiledClassHash()

	logger := log.LoggerFromContext(ctx)
	logger.Debug("declaring class", "class_hash", classHash.String(), "compiled_class_hash", compiledClassHash.String())

	broadcastTx, err := SignAndEstimateDeclareTransaction(ctx, c.account, pair.Class, classHash, compiledClassHash)
	if err != nil {
		if isAlreadyDeclared(err) {
			logger.Info("class already declared", "class_hash", classHash.String())
			return &DeclareResult{ClassHash: classHash}, nil
		}
		return nil, fmt.Errorf("sign and estimate declare transaction: %w", err)
	}

	response, err := c.account.SendTransaction(ctx, *broadcastTx)
	if err != nil {
		if isAlreadyDeclared(err) {
			logger.Info("class already declared", "class_hash", classHash.String())
			return &DeclareResult{ClassHash: classHash}, nil
		}
		return nil, fmt.Errorf("send declare transaction: %w", err)
	}

	return &DeclareResult{
		TransactionHash: response.TransactionHash,
		ClassHash:       classHash,
	}, nil
}

// Deploy instantiates a declared class through the Universal Deployer.
func (c *Client) Deploy(ctx context.Context, req DeployRequest) (*DeployResult, error) {
	if req.Salt == nil {
		salt, err := RandomSalt()
		if err != nil {
			return nil, err
		}
		req.Salt = salt
	}

	calldata, err := c.account.FmtCalldata([]rpc.FunctionCall{req.call()})
	if err != nil {
		return nil, fmt.Errorf("format deploy calldata: %w", err)
	}

	broadcastTx, err := SignAndEstimateInvokeTransaction(ctx, c.account, calldata)
	if err != nil {
		return nil, fmt.Errorf("sign and estimate deploy transaction: %w", err)
	}

	response, err := c.account.SendTransaction(ctx, *broadcastTx)
	if err != nil {
		return nil, fmt.Errorf("send deploy transaction: %w", err)
	}

	address := req.Address(c.account.AccountAddress)
	log.LoggerFromContext(ctx).Debug("deploy sent",
		"transaction_hash", response.TransactionHash.String(),
		"salt", req.Salt.String(),
		"address", address.String(),
	)

	return &DeployResult{
		TransactionHash: response.TransactionHash,
		Address:         address,
		Salt:            req.Salt,
	}, nil
}

// WaitForTransaction blocks until txHash is accepted on L2 or reverted.
func (c *Client) WaitForTransaction(ctx context.Context, txHash *felt.Felt) error {
	logger := log.LoggerFromContext(ctx)
	for {
		receipt, err := c.account.WaitForTransactionReceipt(ctx, txHash, c.pollInterval)
		if err != nil {
			// The receipt poller reports cancellation as an internal RPC error.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("wait for transaction %s: %w", txHash, ctxErr)
			}
			return fmt.Errorf("wait for transaction %s: %w", txHash, err)
		}

		if receipt.ExecutionStatus == rpc.TxnExecutionStatusREVERTED {
			return fmt.Errorf("%w: %s: %s", ErrReverted, txHash, receipt.RevertReason)
		}

		switch receipt.FinalityStatus {
		case rpc.TxnFinalityStatusAcceptedOnL2, rpc.TxnFinalityStatusAcceptedOnL1:
			logger.Debug("transaction accepted", "transaction_hash", txHash.String(), "finality", receipt.FinalityStatus)
			return nil
		}

		logger.Trace("transaction pending", "transaction_hash", txHash.String(), "finality", receipt.FinalityStatus)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

// ClassHashAt returns the class of the contract deployed at address.
func (c *Client) ClassHashAt(ctx context.Context, address *felt.Felt) (*felt.Felt, error) {
	return c.provider.ClassHashAt(ctx, latestBlock, address)
}
