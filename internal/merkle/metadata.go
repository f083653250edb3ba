package merkle

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/utils"
)

// Traits in metadata column order, after token_id and name.
var traits = []string{"birthplace", "ethnicity", "occupation", "special_trait"}

// missingTrait stands in for an empty special_trait.
const missingTrait = "None"

// A short string packs at most 31 bytes into one felt.
const maxShortString = 31

var maxTokenID = new(big.Int).Lsh(big.NewInt(1), 128)

var proofsHeader = []string{
	"token_id",
	"name",
	"birthplace_trait",
	"birthplace_value",
	"ethnicity_trait",
	"ethnicity_value",
	"occupation_trait",
	"occupation_value",
	"special_trait",
	"special_trait_value",
	"merkle_root",
	"proof",
}

// ShortString encodes s as the felt of its bytes, big-endian.
func ShortString(s string) (*felt.Felt, error) {
	switch {
	case s == "":
		return nil, errors.New("empty string")
	case len(s) > maxShortString:
		return nil, fmt.Errorf("%q is longer than %d bytes", s, maxShortString)
	}
	return utils.BigIntToFelt(utils.UTF8StrToBig(s)), nil
}

func parseTokenID(s string) (*felt.Felt, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || n.Sign() < 0 || n.Cmp(maxTokenID) >= 0 {
		return nil, fmt.Errorf("token_id %q is not a 128 bit unsigned integer", s)
	}
	return utils.BigIntToFelt(n), nil
}

// ReadMetadata parses token rows of token_id, name, birthplace, ethnicity,
// occupation and an optional special_trait. The first row is a header.
func ReadMetadata(r io.Reader) ([]Token, error) {
	rd := csv.NewReader(r)
	rd.FieldsPerRecord = -1

	if _, err := rd.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("read metadata header: %w", err)
	}

	var tokens []Token
	for row := 1; ; row++ {
		record, err := rd.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read metadata: %w", err)
		}

		token, err := parseToken(record)
		if err != nil {
			return nil, fmt.Errorf("metadata row %d: %w", row, err)
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

func parseToken(record []string) (Token, error) {
	if len(record) < 2+len(traits)-1 {
		return Token{}, fmt.Errorf("expected at least %d columns, got %d", 2+len(traits)-1, len(record))
	}

	id, err := parseTokenID(record[0])
	if err != nil {
		return Token{}, err
	}
	name, err := ShortString(record[1])
	if err != nil {
		return Token{}, fmt.Errorf("name: %w", err)
	}

	token := Token{ID: id, Name: name}
	for i, trait := range traits {
		raw := missingTrait
		if col := 2 + i; col < len(record) && record[col] != "" {
			raw = record[col]
		} else if trait != "special_trait" {
			return Token{}, fmt.Errorf("%s: empty string", trait)
		}

		value, err := ShortString(raw)
		if err != nil {
			return Token{}, fmt.Errorf("%s: %w", trait, err)
		}
		token.Attributes = append(token.Attributes, Attribute{Trait: trait, Value: value})
	}
	return token, nil
}

// WriteProofs writes one row per token with its encoded metadata, the tree
// root and the comma separated proof.
func WriteProofs(w io.Writer, tokens []Token, tree *Tree) error {
	wr := csv.NewWriter(w)
	if err := wr.Write(proofsHeader); err != nil {
		return err
	}

	root := tree.Root().String()
	for _, token := range tokens {
		proof, err := tree.Proof(token.ID)
		if err != nil {
			return err
		}
		hashes := make([]string, len(proof))
		for i, h := range proof {
			hashes[i] = h.String()
		}

		record := []string{token.ID.Text(10), token.Name.String()}
		for _, attr := range token.Attributes {
			record = append(record, attr.Trait, attr.Value.String())
		}
		record = append(record, root, strings.Join(hashes, ","))

		if err := wr.Write(record); err != nil {
			return err
		}
	}

	wr.Flush()
	return wr.Error()
}
