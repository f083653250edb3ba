package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	DefaultRPCEndpoint  = "https://free-rpc.nethermind.io/sepolia-juno"
	DefaultLedgerPath   = "scripts/contracts.json"
	DefaultArtifactsDir = "target/dev"
	DefaultNamespace    = "terracon_prestige_card"
	DefaultEnvFile      = ".env"
	DefaultCairoVersion = 2
	DefaultPollInterval = 5 * time.Second

	homeEnvFile = ".starknet-deploy.env"
)

// Keys understood by Load. They double as environment variable names
// once upper-cased.
const (
	KeyAccountAddress = "account_address"
	KeyPrivateKey     = "private_key"
	KeyPublicKey      = "account_public_key"
	KeyRPCEndpoint    = "starknet_rpc_endpoint"
	KeyCairoVersion   = "cairo_version"
	KeyPollInterval   = "poll_interval"
	KeyLedger         = "ledger"
	KeyArtifactsDir   = "artifacts_dir"
	KeyNamespace      = "namespace"

	// legacyAccountAddress is the variable older deploy scripts kept the
	// account address in.
	legacyAccountAddress = "public_key"
)

// Credentials of the account that signs declare and deploy transactions.
type Credentials struct {
	AccountAddress string
	PrivateKey     string
	// PublicKey is optional and derived from PrivateKey when empty.
	PublicKey string
}

type Config struct {
	Credentials  Credentials
	RPCEndpoint  string
	LedgerPath   string
	ArtifactsDir string
	Namespace    string
	CairoVersion int
	PollInterval time.Duration
	// EnvFile is the env file that was read, if any.
	EnvFile string
}

// CheckCairoVersion accepts the account calldata layouts that can be
// encoded: Cairo 0 and Cairo 2.
func CheckCairoVersion(version int) error {
	if version != 0 && version != 2 {
		return fmt.Errorf("unsupported %s %d, expected 0 or 2", KeyCairoVersion, version)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyRPCEndpoint, DefaultRPCEndpoint)
	v.SetDefault(KeyLedger, DefaultLedgerPath)
	v.SetDefault(KeyArtifactsDir, DefaultArtifactsDir)
	v.SetDefault(KeyNamespace, DefaultNamespace)
	v.SetDefault(KeyCairoVersion, DefaultCairoVersion)
	v.SetDefault(KeyPollInterval, DefaultPollInterval)
}

// Load resolves the configuration from the process environment and an
// env-format file. Values already present in the environment win over the
// file. When envFile is the default and does not exist, ~/.starknet-deploy.env
// is tried instead; a missing default file is not an error.
func Load(v *viper.Viper, envFile string) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	used, err := readEnvFile(v, envFile)
	if err != nil {
		return nil, err
	}

	cairoVersion := v.GetInt(KeyCairoVersion)
	if err := CheckCairoVersion(cairoVersion); err != nil {
		return nil, err
	}

	pollInterval := v.GetDuration(KeyPollInterval)
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	address := v.GetString(KeyAccountAddress)
	if address == "" {
		address = v.GetString(legacyAccountAddress)
	}

	return &Config{
		Credentials: Credentials{
			AccountAddress: address,
			PrivateKey:     v.GetString(KeyPrivateKey),
			PublicKey:      v.GetString(KeyPublicKey),
		},
		RPCEndpoint:  v.GetString(KeyRPCEndpoint),
		LedgerPath:   v.GetString(KeyLedger),
		ArtifactsDir: v.GetString(KeyArtifactsDir),
		Namespace:    v.GetString(KeyNamespace),
		CairoVersion: cairoVersion,
		PollInterval: pollInterval,
		EnvFile:      used,
	}, nil
}

func readEnvFile(v *viper.Viper, envFile string) (string, error) {
	explicit := envFile != "" && envFile != DefaultEnvFile

	candidates := []string{envFile}
	if !explicit {
		candidates = []string{DefaultEnvFile}
		if home, err := homedir.Dir(); err == nil {
			candidates = append(candidates, filepath.Join(home, homeEnvFile))
		}
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) && !explicit {
				continue
			}
			return "", fmt.Errorf("env file %s: %w", path, err)
		}

		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("read env file %s: %w", path, err)
		}
		return path, nil
	}
	return "", nil
}
