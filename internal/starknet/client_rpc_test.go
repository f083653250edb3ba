package starknet

import (
	"context"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/account"
	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baitcode/starknet-deploy/internal/artifact"
	"github.com/baitcode/starknet-deploy/internal/rpctest"
)

const (
	testClass = `{
  "sierra_program": ["0x1", "0x2", "0x3"],
  "contract_class_version": "0.1.0",
  "entry_points_by_type": {"CONSTRUCTOR": [], "EXTERNAL": [], "L1_HANDLER": []},
  "abi": "[]"
}`
	testCasm = `{
  "prime": "0x800000000000011000000000000000000000000000000000000000000000001",
  "compiler_version": "2.6.3",
  "bytecode": ["0xa", "0xb"],
  "hints": [],
  "entry_points_by_type": {"EXTERNAL": [], "L1_HANDLER": [], "CONSTRUCTOR": []}
}`
)

// Deployment of sepolia transaction 0x3789fe..., reused for the unique variant.
var (
	vectorCaller    = mustFelt("0x022f3e55b61d86c2ac5239fa3b3b8761f26b9a5c0b5f61ddbd5d756ced498b46")
	vectorSalt      = mustFelt("0x0702e82f1ec15656ad4502268dad530197141f3b59f5529835af9318ef399da5")
	vectorClassHash = mustFelt("0x064728e0c0713811c751930f8d3292d683c23f107c89b0a101425d9e80adb1c0")
)

func newTestClient(t *testing.T, results map[string]interface{}) (*Client, *rpctest.Server) {
	t.Helper()
	results["starknet_chainId"] = rpctest.SepoliaChainID
	server := rpctest.Start(t, results)

	provider, err := rpc.NewProvider(rpctest.Endpoint)
	require.NoError(t, err)

	ks := account.NewMemKeystore()
	ks.Put("0x1", big.NewInt(1))
	a, err := account.NewAccount(provider, vectorCaller, "0x1", ks, 2)
	require.NoError(t, err)

	return NewClient(a, provider, time.Millisecond), server
}

func testPair(t *testing.T) *artifact.Pair {
	t.Helper()
	dir := t.TempDir()
	classPath := filepath.Join(dir, "NFTMint.contract_class.json")
	casmPath := filepath.Join(dir, "NFTMint.compiled_contract_class.json")
	require.NoError(t, os.WriteFile(classPath, []byte(testClass), 0o644))
	require.NoError(t, os.WriteFile(casmPath, []byte(testCasm), 0o644))

	pair, err := artifact.LoadFiles(classPath, casmPath)
	require.NoError(t, err)
	return pair
}

// firstParam decodes the single transaction object sent to method.
func firstParam(t *testing.T, server *rpctest.Server, method string) map[string]interface{} {
	t.Helper()
	sent := server.Params(method)
	require.Len(t, sent, 1, method)

	var params []map[string]interface{}
	require.NoError(t, json.Unmarshal(sent[0], &params))
	require.NotEmpty(t, params)
	return params[0]
}

func TestDeclare(t *testing.T) {
	pair := testPair(t)
	client, server := newTestClient(t, map[string]interface{}{
		"starknet_getNonce":    "0x0",
		"starknet_estimateFee": rpctest.FeeEstimate("0x64"),
		"starknet_addDeclareTransaction": map[string]interface{}{
			"transaction_hash": "0xdec1",
			"class_hash":       pair.ClassHash().String(),
		},
		"starknet_getTransactionReceipt": rpctest.Receipt("0xdec1", "ACCEPTED_ON_L2", "SUCCEEDED", ""),
	})
	ctx := context.Background()

	result, err := client.Declare(ctx, pair)
	require.NoError(t, err)
	assert.False(t, result.AlreadyDeclared())
	assert.Equal(t, "0xdec1", result.TransactionHash.String())
	assert.True(t, result.ClassHash.Equal(pair.ClassHash()))

	tx := firstParam(t, server, "starknet_addDeclareTransaction")
	assert.Equal(t, "0x96", tx["max_fee"], "estimate plus half")
	assert.Equal(t, pair.CompiledClassHash().String(), tx["compiled_class_hash"])
	assert.Equal(t, vectorCaller.String(), tx["sender_address"])
	assert.NotEmpty(t, tx["signature"])

	require.NoError(t, client.WaitForTransaction(ctx, result.TransactionHash))
	assert.Equal(t, []string{
		"starknet_chainId",
		"starknet_getNonce",
		"starknet_estimateFee",
		"starknet_addDeclareTransaction",
		"starknet_getTransactionReceipt",
	}, server.Calls())
}

func TestDeclareAlreadyDeclared(t *testing.T) {
	cases := []struct {
		name    string
		results map[string]interface{}
		sent    bool
	}{
		{
			name: "estimate reports execution error",
			results: map[string]interface{}{
				"starknet_estimateFee": rpctest.Error{Code: 41, Message: "Transaction execution error", Data: map[string]interface{}{
					"transaction_index": 0,
					"execution_error":   "Class with hash 0x1234 is already declared.",
				}},
			},
		},
		{
			name: "estimate reports class already declared",
			results: map[string]interface{}{
				"starknet_estimateFee": rpctest.Error{Code: 51, Message: "Class already declared", Data: "Class already declared"},
			},
		},
		{
			name: "add declare reports class already declared",
			results: map[string]interface{}{
				"starknet_estimateFee":           rpctest.FeeEstimate("0x64"),
				"starknet_addDeclareTransaction": rpctest.Error{Code: 51, Message: "Class already declared"},
			},
			sent: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pair := testPair(t)
			tc.results["starknet_getNonce"] = "0x0"
			client, server := newTestClient(t, tc.results)

			result, err := client.Declare(context.Background(), pair)
			require.NoError(t, err)
			assert.True(t, result.AlreadyDeclared())
			assert.True(t, result.ClassHash.Equal(pair.ClassHash()))
			assert.Equal(t, tc.sent, len(server.Params("starknet_addDeclareTransaction")) == 1)
			assert.NotContains(t, server.Calls(), "starknet_getTransactionReceipt")
		})
	}
}

func TestDeclareExecutionError(t *testing.T) {
	client, server := newTestClient(t, map[string]interface{}{
		"starknet_getNonce": "0x0",
		"starknet_estimateFee": rpctest.Error{Code: 41, Message: "Transaction execution error", Data: map[string]interface{}{
			"transaction_index": 0,
			"execution_error":   "Out of gas",
		}},
	})

	_, err := client.Declare(context.Background(), testPair(t))
	require.Error(t, err)

	var rpcErr *rpc.RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, 41, rpcErr.Code)
	assert.NotContains(t, server.Calls(), "starknet_addDeclareTransaction")
}

func TestDeploy(t *testing.T) {
	client, server := newTestClient(t, map[string]interface{}{
		"starknet_getNonce":    "0x7",
		"starknet_estimateFee": rpctest.FeeEstimate("0x64"),
		"starknet_addInvokeTransaction": map[string]interface{}{
			"transaction_hash": "0xbeef",
		},
	})

	result, err := client.Deploy(context.Background(), DeployRequest{
		ClassHash: vectorClassHash,
		Salt:      vectorSalt,
		Calldata:  []*felt.Felt{client.AccountAddress()},
	})
	require.NoError(t, err)
	assert.Equal(t, "0xbeef", result.TransactionHash.String())
	assert.Equal(t, "0x31463b5263a6631be4d1fe92d64d13e3a8498c440bf789e69ccb951eb8ad5da", result.Address.String())
	assert.True(t, result.Salt.Equal(vectorSalt))

	tx := firstParam(t, server, "starknet_addInvokeTransaction")
	assert.Equal(t, "0x96", tx["max_fee"])
	assert.Equal(t, "0x7", tx["nonce"])
	assert.Equal(t, []interface{}{
		"0x1",
		UDCAddress.String(),
		deployContractSelector.String(),
		"0x5",
		vectorClassHash.String(),
		vectorSalt.String(),
		"0x0",
		"0x1",
		vectorCaller.String(),
	}, tx["calldata"])
}

func TestDeployDrawsSalt(t *testing.T) {
	client, _ := newTestClient(t, map[string]interface{}{
		"starknet_getNonce":             "0x0",
		"starknet_estimateFee":          rpctest.FeeEstimate("0x64"),
		"starknet_addInvokeTransaction": map[string]interface{}{"transaction_hash": "0xbeef"},
	})

	req := DeployRequest{ClassHash: vectorClassHash, Unique: true}
	result, err := client.Deploy(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result.Salt)

	req.Salt = result.Salt
	assert.True(t, result.Address.Equal(req.Address(client.AccountAddress())))
}

func TestAddressKnownAnswer(t *testing.T) {
	req := DeployRequest{
		ClassHash: vectorClassHash,
		Salt:      vectorSalt,
		Calldata:  []*felt.Felt{vectorCaller},
	}
	assert.Equal(t, "0x31463b5263a6631be4d1fe92d64d13e3a8498c440bf789e69ccb951eb8ad5da", req.Address(vectorCaller).String())

	req.Unique = true
	assert.Equal(t, "0x41a3f950658b086d526430f2a210db0c15535d48ea58d05b3876e2b96477f2d", req.Address(vectorCaller).String())
}

func TestWaitForTransactionReverted(t *testing.T) {
	client, _ := newTestClient(t, map[string]interface{}{
		"starknet_getTransactionReceipt": rpctest.Receipt("0xbeef", "ACCEPTED_ON_L2", "REVERTED", "boom"),
	})

	err := client.WaitForTransaction(context.Background(), feltFromUint(0xbeef))
	assert.ErrorIs(t, err, ErrReverted)
	assert.ErrorContains(t, err, "boom")
}

func TestWaitForTransactionAcceptedOnL1(t *testing.T) {
	client, _ := newTestClient(t, map[string]interface{}{
		"starknet_getTransactionReceipt": rpctest.Receipt("0xbeef", "ACCEPTED_ON_L1", "SUCCEEDED", ""),
	})

	assert.NoError(t, client.WaitForTransaction(context.Background(), feltFromUint(0xbeef)))
}

func TestWaitForTransactionCancelled(t *testing.T) {
	client, server := newTestClient(t, map[string]interface{}{
		"starknet_getTransactionReceipt": rpctest.HashNotFound,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := client.WaitForTransaction(ctx, feltFromUint(0xbeef))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, server.Calls(), "starknet_getTransactionReceipt", "an unknown hash keeps polling")
}

func TestWaitForTransactionNodeError(t *testing.T) {
	client, _ := newTestClient(t, map[string]interface{}{
		"starknet_getTransactionReceipt": rpctest.Error{Code: -32603, Message: "Internal error"},
	})

	err := client.WaitForTransaction(context.Background(), feltFromUint(0xbeef))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrReverted)
}
