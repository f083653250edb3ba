package starknet

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/NethermindEth/juno/core/crypto"
	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/contracts"
	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/NethermindEth/starknet.go/utils"
)

// UDCAddress is the Universal Deployer Contract on mainnet and sepolia.
var UDCAddress = mustFelt("0x041a78e741e5af2fec34b695679bc6891742439f7afb8484ecd7766661ad02bf")

var deployContractSelector = utils.GetSelectorFromNameFelt("deployContract")

// MaxSalt bounds random salts to 252 bits.
var MaxSalt = new(big.Int).Lsh(big.NewInt(1), 252)

func mustFelt(s string) *felt.Felt {
	f, err := new(felt.Felt).SetString(s)
	if err != nil {
		panic(err)
	}
	return f
}

// RandomSalt draws a salt uniformly below 2^252.
func RandomSalt() (*felt.Felt, error) {
	n, err := rand.Int(rand.Reader, MaxSalt)
	if err != nil {
		return nil, fmt.Errorf("generate random salt: %w", err)
	}
	return utils.BigIntToFelt(n), nil
}

// DeployRequest describes one UDC deployment.
type DeployRequest struct {
	ClassHash *felt.Felt
	Salt      *felt.Felt
	// Unique mixes the deployer address into the salt.
	Unique   bool
	Calldata []*felt.Felt
}

func (r DeployRequest) call() rpc.FunctionCall {
	unique := new(felt.Felt)
	if r.Unique {
		unique.SetUint64(1)
	}

	calldata := make([]*felt.Felt, 0, 4+len(r.Calldata))
	calldata = append(calldata,
		r.ClassHash,
		r.Salt,
		unique,
		new(felt.Felt).SetUint64(uint64(len(r.Calldata))),
	)
	calldata = append(calldata, r.Calldata...)

	return rpc.FunctionCall{
		ContractAddress:    UDCAddress,
		EntryPointSelector: deployContractSelector,
		Calldata:           calldata,
	}
}

// Address is the contract address the UDC assigns when caller sends r.
func (r DeployRequest) Address(caller *felt.Felt) *felt.Felt {
	deployer := new(felt.Felt)
	salt := r.Salt
	if r.Unique {
		deployer = UDCAddress
		salt = crypto.Pedersen(caller, r.Salt)
	}

	calldata := r.Calldata
	if calldata == nil {
		calldata = []*felt.Felt{}
	}
	return contracts.PrecomputeAddress(deployer, salt, r.ClassHash, calldata)
}
