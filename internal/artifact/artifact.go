package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/contracts"
	"github.com/NethermindEth/starknet.go/hash"
	"github.com/NethermindEth/starknet.go/rpc"
)

const (
	classSuffix         = ".contract_class.json"
	compiledClassSuffix = ".compiled_contract_class.json"
)

var ErrArtifact = errors.New("invalid contract artifact")

// Pair is a Sierra class together with its CASM compilation.
type Pair struct {
	Name  string
	Class *rpc.ContractClass
	Casm  *contracts.CasmClass
}

func (p *Pair) ClassHash() *felt.Felt {
	return hash.ClassHash(*p.Class)
}

func (p *Pair) CompiledClassHash() *felt.Felt {
	return hash.CompiledClassHash(*p.Casm)
}

// Loader finds scarb build outputs named <namespace>_<Contract>.
type Loader struct {
	dir       string
	namespace string
}

func NewLoader(dir, namespace string) *Loader {
	return &Loader{dir: dir, namespace: namespace}
}

func (l *Loader) baseName(name string) string {
	if l.namespace == "" {
		return name
	}
	return fmt.Sprintf("%s_%s", l.namespace, name)
}

// Paths returns the class definition and compiled class file paths for name.
func (l *Loader) Paths(name string) (string, string) {
	base := l.baseName(name)
	return filepath.Join(l.dir, base+classSuffix),
		filepath.Join(l.dir, base+compiledClassSuffix)
}

func (l *Loader) Load(name string) (*Pair, error) {
	classPath, casmPath := l.Paths(name)
	pair, err := LoadFiles(classPath, casmPath)
	if err != nil {
		return nil, err
	}
	pair.Name = name
	return pair, nil
}

// LoadFiles reads an explicit class / compiled class pair.
func LoadFiles(classPath, casmPath string) (*Pair, error) {
	classData, err := os.ReadFile(classPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read compiled class: %w", ErrArtifact, err)
	}

	var class rpc.ContractClass
	if err := json.Unmarshal(classData, &class); err != nil {
		return nil, fmt.Errorf("%w: unmarshal compiled class %s: %w", ErrArtifact, classPath, err)
	}

	casm, err := contracts.UnmarshalCasmClass(casmPath)
	if err != nil {
		return nil, fmt.Errorf("%w: casm class %s: %w", ErrArtifact, casmPath, err)
	}

	return &Pair{
		Name:  strings.TrimSuffix(filepath.Base(classPath), classSuffix),
		Class: &class,
		Casm:  casm,
	}, nil
}
