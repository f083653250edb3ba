package starknet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/account"
	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/NethermindEth/starknet.go/utils"
)

// Estimated fees are scaled by feeMarginNum/feeMarginDen before signing.
const (
	feeMarginNum = 3
	feeMarginDen = 2
)

var latestBlock = rpc.WithBlockTag("latest")

func estimateFee(ctx context.Context, a *account.Account, tx rpc.BroadcastTxn) (*felt.Felt, error) {
	estimation, err := a.EstimateFee(
		ctx,
		[]rpc.BroadcastTxn{tx},
		[]rpc.SimulationFlag{},
		latestBlock,
	)
	if err != nil {
		return nil, err
	}
	if len(estimation) == 0 || estimation[0].OverallFee == nil {
		return nil, errors.New("node returned no fee estimation")
	}

	fee := utils.FeltToBigInt(estimation[0].OverallFee)
	fee.Mul(fee, big.NewInt(feeMarginNum))
	fee.Div(fee, big.NewInt(feeMarginDen))
	return utils.BigIntToFelt(fee), nil
}

func broadcastDeclare(tx *rpc.DeclareTxnV2, class *rpc.ContractClass) *rpc.BroadcastDeclareTxnV2 {
	return &rpc.BroadcastDeclareTxnV2{
		Nonce:             tx.Nonce,
		MaxFee:            tx.MaxFee,
		Type:              tx.Type,
		Version:           tx.Version,
		Signature:         tx.Signature,
		SenderAddress:     tx.SenderAddress,
		CompiledClassHash: tx.CompiledClassHash,
		ContractClass:     *class,
	}
}

// SignAndEstimateDeclareTransaction signs a zero fee DeclareV2 to estimate
// its cost, then signs it again with the estimated max fee.
func SignAndEstimateDeclareTransaction(
	ctx context.Context,
	a *account.Account,
	class *rpc.ContractClass,
	classHash *felt.Felt,
	compiledClassHash *felt.Felt,
) (*rpc.BroadcastDeclareTxnV2, error) {
	nonce, err := a.Nonce(ctx, latestBlock, a.AccountAddress)
	if err != nil {
		return nil, err
	}

	tx := rpc.DeclareTxnV2{
		SenderAddress:     a.AccountAddress,
		Type:              rpc.TransactionType_Declare,
		Version:           rpc.TransactionV2,
		ClassHash:         classHash,
		CompiledClassHash: compiledClassHash,
		Nonce:             nonce,
		MaxFee:            new(felt.Felt),
	}

	if err := a.SignDeclareTransaction(ctx, &tx); err != nil {
		return nil, err
	}

	fee, err := estimateFee(ctx, a, *broadcastDeclare(&tx, class))
	if err != nil {
		return nil, err
	}

	tx.MaxFee = fee
	if err := a.SignDeclareTransaction(ctx, &tx); err != nil {
		return nil, err
	}

	return broadcastDeclare(&tx, class), nil
}

// SignAndEstimateInvokeTransaction does the same for an InvokeV1 carrying calldata.
func SignAndEstimateInvokeTransaction(
	ctx context.Context,
	a *account.Account,
	calldata []*felt.Felt,
) (*rpc.BroadcastInvokev1Txn, error) {
	nonce, err := a.Nonce(ctx, latestBlock, a.AccountAddress)
	if err != nil {
		return nil, err
	}

	tx := rpc.InvokeTxnV1{
		MaxFee:        new(felt.Felt),
		Version:       rpc.TransactionV1,
		Nonce:         nonce,
		Type:          rpc.TransactionType_Invoke,
		SenderAddress: a.AccountAddress,
		Calldata:      calldata,
	}

	if err := a.SignInvokeTransaction(ctx, &tx); err != nil {
		return nil, err
	}

	fee, err := estimateFee(ctx, a, rpc.BroadcastInvokev1Txn{InvokeTxnV1: tx})
	if err != nil {
		return nil, err
	}

	tx.MaxFee = fee
	if err := a.SignInvokeTransaction(ctx, &tx); err != nil {
		return nil, err
	}

	return &rpc.BroadcastInvokev1Txn{InvokeTxnV1: tx}, nil
}

// Starknet error codes for a class that is already on chain.
const (
	codeTransactionExecutionError = 41
	codeClassAlreadyDeclared      = 51
)

func isAlreadyDeclared(err error) bool {
	var rpcErr *rpc.RPCError
	if !errors.As(err, &rpcErr) {
		return false
	}

	switch rpcErr.Code {
	case codeClassAlreadyDeclared:
		return true
	case codeTransactionExecutionError:
		return strings.Contains(executionError(rpcErr.Data), "is already declared")
	case rpc.InternalError:
		// starknet_estimateFee folds codes it does not expect into an
		// internal error, keeping only the node's data.
		return strings.Contains(strings.ToLower(executionError(rpcErr.Data)), "already declared")
	default:
		return false
	}
}

func executionError(data interface{}) string {
	switch d := data.(type) {
	case map[string]interface{}:
		if msg, ok := d["execution_error"].(string); ok {
			return msg
		}
		return fmt.Sprint(d)
	case string:
		return d
	case nil:
		return ""
	default:
		return fmt.Sprint(d)
	}
}
