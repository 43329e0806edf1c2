package accumulator

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/attestlabs/go-attest/codec"
	"github.com/attestlabs/go-attest/common/types"
)

var rootMagic = [4]byte{'A', 'U', 'W', 'V'}

const payloadMerkleRoot uint8 = 0

// Payload is the content of an attestation emitted by the accumulator program.
// It is either *MerkleRootPayload or LegacyPayload.
type Payload interface {
	isPayload()
}

// MerkleRootPayload commits to a batch.
type MerkleRootPayload struct {
	Slot     uint64
	RingSize uint32
	Root     types.Hash20
}

// LegacyPayload is any payload without the accumulator magic. It carries no root.
type LegacyPayload []byte

func (*MerkleRootPayload) isPayload() {}
func (LegacyPayload) isPayload()      {}

// Encode returns magic, tag, slot, ring size and root.
func (p *MerkleRootPayload) Encode() []byte {
	buf := make([]byte, 0, len(rootMagic)+1+8+4+types.Hash20Length)
	buf = append(buf, rootMagic[:]...)
	buf = append(buf, payloadMerkleRoot)
	buf = binary.BigEndian.AppendUint64(buf, p.Slot)
	buf = binary.BigEndian.AppendUint32(buf, p.RingSize)
	buf = append(buf, p.Root[:]...)
	return buf
}

// DecodePayload classifies an attestation payload. Bytes that start with the
// accumulator magic must be a well-formed merkle root; anything else is legacy.
func DecodePayload(data []byte) (Payload, error) {
	if !bytes.HasPrefix(data, rootMagic[:]) {
		return LegacyPayload(data), nil
	}
	r := codec.NewReader(data[len(rootMagic):])
	if tag := r.Uint8("payload type"); r.Err() == nil && tag != payloadMerkleRoot {
		return nil, fmt.Errorf("%w: payload type %d", ErrUnsupportedPayload, tag)
	}
	p := &MerkleRootPayload{}
	p.Slot = r.Uint64("slot")
	p.RingSize = r.Uint32("ring size")
	r.Fixed("root", p.Root[:])
	if err := r.Done(); err != nil {
		return nil, fmt.Errorf("%w: merkle root: %w", ErrUnsupportedPayload, err)
	}
	return p, nil
}
