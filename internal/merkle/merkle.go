// Package merkle builds the token metadata Merkle tree whose root the NFT
// contract checks claims against.
//
// Leaves are the Poseidon hash of a token's id, name and attribute pairs.
// Inner nodes are the Pedersen hash of their two children ordered by value,
// so a proof is just the list of siblings from the leaf up.
package merkle

import (
	"errors"
	"fmt"

	"github.com/NethermindEth/juno/core/crypto"
	"github.com/NethermindEth/juno/core/felt"
)

var (
	ErrEmpty         = errors.New("no tokens for merkle tree")
	ErrTokenNotFound = errors.New("token ID not found in tree")
)

// Attribute is one trait of a token, both sides encoded as short strings.
type Attribute struct {
	Trait string
	Value *felt.Felt
}

type Token struct {
	ID         *felt.Felt
	Name       *felt.Felt
	Attributes []Attribute
}

// Leaf hashes id, name and every trait/value pair in order.
func (t Token) Leaf() (*felt.Felt, error) {
	values := []*felt.Felt{t.ID, t.Name}
	for _, attr := range t.Attributes {
		trait, err := ShortString(attr.Trait)
		if err != nil {
			return nil, err
		}
		values = append(values, trait, attr.Value)
	}
	return crypto.PoseidonArray(values...), nil
}

type node struct {
	left, right *node
	tokens      map[felt.Felt]struct{}
	value       *felt.Felt
}

func (n *node) holds(id *felt.Felt) bool {
	_, ok := n.tokens[*id]
	return ok
}

func join(a, b *node) *node {
	left, right := b, a
	if a.value.Cmp(b.value) < 0 {
		left, right = a, b
	}

	tokens := make(map[felt.Felt]struct{}, len(left.tokens)+len(right.tokens))
	for id := range left.tokens {
		tokens[id] = struct{}{}
	}
	for id := range right.tokens {
		tokens[id] = struct{}{}
	}

	return &node{
		left:   left,
		right:  right,
		tokens: tokens,
		value:  hashPair(left.value, right.value),
	}
}

func hashPair(a, b *felt.Felt) *felt.Felt {
	if a.Cmp(b) < 0 {
		return crypto.Pedersen(a, b)
	}
	return crypto.Pedersen(b, a)
}

type Tree struct {
	root *node
}

// New builds the tree over tokens. An odd level repeats its last node, and
// each level is paired from the end.
func New(tokens []Token) (*Tree, error) {
	if len(tokens) == 0 {
		return nil, ErrEmpty
	}

	level := make([]*node, 0, len(tokens)+1)
	for _, token := range tokens {
		leaf, err := token.Leaf()
		if err != nil {
			return nil, fmt.Errorf("token %s: %w", token.ID.Text(10), err)
		}
		level = append(level, &node{
			tokens: map[felt.Felt]struct{}{*token.ID: {}},
			value:  leaf,
		})
	}
	if len(level)%2 == 1 {
		level = append(level, level[len(level)-1])
	}

	for {
		next := make([]*node, 0, len(level)/2+1)
		for len(level) > 0 {
			a, b := level[len(level)-1], level[len(level)-2]
			level = level[:len(level)-2]
			next = append(next, join(a, b))
		}

		if len(next) == 1 {
			return &Tree{root: next[0]}, nil
		}
		if len(next)%2 == 1 {
			next = append(next, next[len(next)-1])
		}
		level = next
	}
}

func (t *Tree) Root() *felt.Felt {
	return t.root.value
}

// Proof returns the siblings on the path to id, leaf level first.
func (t *Tree) Proof(id *felt.Felt) ([]*felt.Felt, error) {
	if !t.root.holds(id) {
		return nil, fmt.Errorf("%w: %s", ErrTokenNotFound, id.Text(10))
	}

	var proof []*felt.Felt
	for n := t.root; n.left != nil; {
		if n.left.holds(id) {
			proof = append(proof, n.right.value)
			n = n.left
		} else {
			proof = append(proof, n.left.value)
			n = n.right
		}
	}

	for i, j := 0, len(proof)-1; i < j; i, j = i+1, j-1 {
		proof[i], proof[j] = proof[j], proof[i]
	}
	return proof, nil
}

// Verify folds proof onto leaf the way the contract does and compares the
// result with root.
func Verify(root, leaf *felt.Felt, proof []*felt.Felt) bool {
	h := leaf
	for _, sibling := range proof {
		h = hashPair(h, sibling)
	}
	return h.Equal(root)
}
