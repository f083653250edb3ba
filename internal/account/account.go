package account

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/account"
	"github.com/NethermindEth/starknet.go/curve"
	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/NethermindEth/starknet.go/utils"

	"github.com/baitcode/starknet-deploy/internal/config"
	"github.com/baitcode/starknet-deploy/internal/log"
)

// Resolve builds a signing account for creds on top of provider. The
// credentials are only parsed, the node is the one rejecting bad ones.
func Resolve(ctx context.Context, provider rpc.RpcProvider, creds config.Credentials, cairoVersion int) (*account.Account, error) {
	address, err := utils.HexToFelt(creds.AccountAddress)
	if err != nil {
		return nil, fmt.Errorf("account address %q: %w", creds.AccountAddress, err)
	}

	ks, publicKey, err := newKeystore(creds)
	if err != nil {
		return nil, err
	}

	a, err := account.NewAccount(provider, address, publicKey, ks, cairoVersion)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	log.LoggerFromContext(ctx).Info("account imported", "address", a.AccountAddress.String())
	return a, nil
}

func newKeystore(creds config.Credentials) (*account.MemKeystore, string, error) {
	privateKey, err := parsePrivateKey(creds.PrivateKey)
	if err != nil {
		return nil, "", err
	}

	publicKey := creds.PublicKey
	if publicKey == "" {
		publicKey, err = PublicKey(privateKey)
		if err != nil {
			return nil, "", err
		}
	}

	ks := account.NewMemKeystore()
	ks.Put(publicKey, privateKey)
	return ks, publicKey, nil
}

// PublicKey derives the Stark public key for privateKey.
func PublicKey(privateKey *big.Int) (string, error) {
	x, _, err := curve.Curve.PrivateToPoint(privateKey)
	if err != nil {
		return "", fmt.Errorf("derive public key: %w", err)
	}
	return new(felt.Felt).SetBytes(x.Bytes()).String(), nil
}

func parsePrivateKey(s string) (*big.Int, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	key, ok := new(big.Int).SetString(digits, 16)
	if !ok || digits == "" {
		return nil, fmt.Errorf("private key is not a hex number")
	}
	return key, nil
}
