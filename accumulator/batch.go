package accumulator

import (
	"fmt"

	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/merkle"
)

// Batch is the producer side of the accumulator: messages of one slot committed
// to a single root.
type Batch struct {
	slot     uint64
	ringSize uint32
	tree     *merkle.Tree
}

// NewBatch commits messages in order. It fails with merkle.ErrEmptyInput on an empty batch.
func NewBatch(slot uint64, ringSize uint32, messages [][]byte) (*Batch, error) {
	tree, err := merkle.Build(messages)
	if err != nil {
		return nil, err
	}
	return &Batch{slot: slot, ringSize: ringSize, tree: tree}, nil
}

// Root returns the batch root.
func (b *Batch) Root() types.Hash20 {
	return b.tree.Root()
}

// Payload returns the attestation payload committing to the batch.
func (b *Batch) Payload() *MerkleRootPayload {
	return &MerkleRootPayload{Slot: b.slot, RingSize: b.ringSize, Root: b.tree.Root()}
}

// Updates returns each message with its inclusion proof.
func (b *Batch) Updates(messages ...[]byte) ([]Update, error) {
	updates := make([]Update, 0, len(messages))
	for i, msg := range messages {
		proof, err := b.tree.Prove(msg)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		updates = append(updates, Update{Message: msg, Proof: proof})
	}
	return updates, nil
}

// UpdateData assembles the wire form that delivers messages with the attestation
// of the batch root in attestation.
func (b *Batch) UpdateData(attestation []byte, messages ...[]byte) ([]byte, error) {
	updates, err := b.Updates(messages...)
	if err != nil {
		return nil, err
	}
	data := &UpdateData{Minor: MinorVersion, VAA: attestation, Updates: updates}
	return data.Encode()
}
