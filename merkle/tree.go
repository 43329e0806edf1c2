// Package merkle implements the batch accumulator: a binary keccak160 tree over
// an ordered list of opaque leaves with inclusion proofs.
//
// Leaves and internal nodes are hashed under distinct one-byte prefixes. When a
// level has an odd number of nodes, the last one is carried to the next level
// unchanged rather than being paired with a copy of itself. Roots computed with a
// duplicate-last-node rule are different, so this rule is part of the format.
package merkle

import (
	"bytes"
	"errors"

	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/hash"
)

var (
	// ErrEmptyInput is returned when building a tree without leaves.
	ErrEmptyInput = errors.New("merkle: empty input")
	// ErrLeafNotFound is returned when proving a leaf that is not in the tree.
	ErrLeafNotFound = errors.New("merkle: leaf not found")
)

const (
	leafPrefix byte = 0
	nodePrefix byte = 1
)

// HashLeaf returns the digest of a leaf.
func HashLeaf(leaf []byte) types.Hash20 {
	return hash.Keccak160([]byte{leafPrefix}, leaf)
}

// HashNode returns the digest of an internal node from its ordered children.
func HashNode(left, right types.Hash20) types.Hash20 {
	return hash.Keccak160([]byte{nodePrefix}, left[:], right[:])
}

// Tree keeps every level of the accumulator, leaves first. It is built once per
// batch and only its root is meant to leave the process.
type Tree struct {
	leaves [][]byte
	levels [][]types.Hash20
}

// Build hashes leaves in the given order and pairs adjacent digests until a
// single root remains.
func Build(leaves [][]byte) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyInput
	}
	level := make([]types.Hash20, len(leaves))
	for i, leaf := range leaves {
		level[i] = HashLeaf(leaf)
	}
	tree := &Tree{
		leaves: leaves,
		levels: [][]types.Hash20{level},
	}
	for len(level) > 1 {
		next := make([]types.Hash20, 0, (len(level)+1)/2)
		for i := 0; i+1 < len(level); i += 2 {
			next = append(next, HashNode(level[i], level[i+1]))
		}
		if len(level)%2 == 1 {
			next = append(next, level[len(level)-1])
		}
		tree.levels = append(tree.levels, next)
		level = next
	}
	return tree, nil
}

// Root returns the root digest.
func (t *Tree) Root() types.Hash20 {
	return t.levels[len(t.levels)-1][0]
}

// Len returns the number of leaves.
func (t *Tree) Len() int {
	return len(t.leaves)
}

// Depth returns the number of levels above the leaves.
func (t *Tree) Depth() int {
	return len(t.levels) - 1
}

// Prove returns the inclusion proof of the first leaf equal to leaf.
func (t *Tree) Prove(leaf []byte) (Proof, error) {
	for i, candidate := range t.leaves {
		if bytes.Equal(candidate, leaf) {
			return t.proveIndex(i), nil
		}
	}
	return nil, ErrLeafNotFound
}

func (t *Tree) proveIndex(position int) Proof {
	var proof Proof
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := position ^ 1
		switch {
		case sibling >= len(level):
			// carried forward, no sibling at this level
		case sibling < position:
			proof = append(proof, ProofNode{Hash: level[sibling], Side: Left})
		default:
			proof = append(proof, ProofNode{Hash: level[sibling], Side: Right})
		}
		position /= 2
	}
	return proof
}

// Verify checks that leaf is committed to by root. It trusts nothing but the
// proof content itself.
func Verify(root types.Hash20, leaf []byte, proof Proof) bool {
	current := HashLeaf(leaf)
	for _, node := range proof {
		switch node.Side {
		case Left:
			current = HashNode(node.Hash, current)
		case Right:
			current = HashNode(current, node.Hash)
		default:
			return false
		}
	}
	return current == root
}
