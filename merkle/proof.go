package merkle

import (
	"errors"
	"fmt"
	"io"

	"github.com/attestlabs/go-attest/common/types"
)

// MaxProofLength is the largest proof that fits the single-byte length prefix.
const MaxProofLength = 255

// ErrMalformedProof is returned when decoding an invalid proof.
var ErrMalformedProof = errors.New("merkle: malformed proof")

// Side is the position of a sibling relative to the node being folded.
type Side uint8

const (
	// Left sibling: parent = HashNode(sibling, current).
	Left Side = 0
	// Right sibling: parent = HashNode(current, sibling).
	Right Side = 1
)

// String implements fmt.Stringer.
func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("side(%d)", uint8(s))
	}
}

// ProofNode is one step of an inclusion proof.
type ProofNode struct {
	Hash types.Hash20
	Side Side
}

// Proof is the ordered list of siblings from a leaf to the root.
type Proof []ProofNode

// EncodedLen returns the size of the encoded proof.
func (p Proof) EncodedLen() int {
	return 1 + len(p)*(1+types.Hash20Length)
}

// MarshalBinary encodes the proof as count:u8 followed by (side:u8, hash:20) entries.
func (p Proof) MarshalBinary() ([]byte, error) {
	if len(p) > MaxProofLength {
		return nil, fmt.Errorf("%w: %d nodes", ErrMalformedProof, len(p))
	}
	buf := make([]byte, 0, p.EncodedLen())
	buf = append(buf, byte(len(p)))
	for _, node := range p {
		buf = append(buf, byte(node.Side))
		buf = append(buf, node.Hash[:]...)
	}
	return buf, nil
}

// DecodeProof reads an encoded proof from r.
func DecodeProof(r io.Reader) (Proof, error) {
	var count [1]byte
	if _, err := io.ReadFull(r, count[:]); err != nil {
		return nil, fmt.Errorf("%w: read length: %w", ErrMalformedProof, err)
	}
	proof := make(Proof, count[0])
	var entry [1 + types.Hash20Length]byte
	for i := range proof {
		if _, err := io.ReadFull(r, entry[:]); err != nil {
			return nil, fmt.Errorf("%w: read node %d: %w", ErrMalformedProof, i, err)
		}
		side := Side(entry[0])
		if side != Left && side != Right {
			return nil, fmt.Errorf("%w: node %d has %v", ErrMalformedProof, i, side)
		}
		proof[i].Side = side
		copy(proof[i].Hash[:], entry[1:])
	}
	return proof, nil
}
