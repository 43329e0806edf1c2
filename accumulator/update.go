package accumulator

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/attestlabs/go-attest/codec"
	"github.com/attestlabs/go-attest/merkle"
	"github.com/attestlabs/go-attest/vaa"
)

var updateMagic = [4]byte{'P', 'N', 'A', 'U'}

const (
	// MajorVersion is the only accepted major version of update data.
	MajorVersion uint8 = 1
	// MinorVersion is written by this package. Readers accept any minor version.
	MinorVersion uint8 = 0

	proofWormholeMerkle uint8 = 0
)

// Update is one message with its inclusion proof.
type Update struct {
	Message []byte
	Proof   merkle.Proof
}

// UpdateData is an attestation of a batch root together with proven messages.
type UpdateData struct {
	Minor          uint8
	TrailingHeader []byte
	VAA            []byte
	Updates        []Update
}

// Encode returns the wire form of the update data.
func (u *UpdateData) Encode() ([]byte, error) {
	switch {
	case len(u.TrailingHeader) > math.MaxUint8:
		return nil, fmt.Errorf("%w: trailing header of %d bytes", vaa.ErrMalformedEnvelope, len(u.TrailingHeader))
	case len(u.VAA) > math.MaxUint16:
		return nil, fmt.Errorf("%w: attestation of %d bytes", vaa.ErrMalformedEnvelope, len(u.VAA))
	case len(u.Updates) > math.MaxUint8:
		return nil, fmt.Errorf("%w: %d updates", vaa.ErrMalformedEnvelope, len(u.Updates))
	}
	var buf bytes.Buffer
	buf.Write(updateMagic[:])
	buf.WriteByte(MajorVersion)
	buf.WriteByte(u.Minor)
	buf.WriteByte(byte(len(u.TrailingHeader)))
	buf.Write(u.TrailingHeader)
	buf.WriteByte(proofWormholeMerkle)
	writePrefixed(&buf, u.VAA)
	buf.WriteByte(byte(len(u.Updates)))
	for i, update := range u.Updates {
		if len(update.Message) > math.MaxUint16 {
			return nil, fmt.Errorf("%w: update %d message of %d bytes",
				vaa.ErrMalformedEnvelope, i, len(update.Message))
		}
		writePrefixed(&buf, update.Message)
		proof, err := update.Proof.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("update %d: %w", i, err)
		}
		buf.Write(proof)
	}
	return buf.Bytes(), nil
}

func writePrefixed(buf *bytes.Buffer, data []byte) {
	buf.Write(binary.BigEndian.AppendUint16(nil, uint16(len(data))))
	buf.Write(data)
}

// DecodeUpdateData parses update data. Decoded slices are copies.
func DecodeUpdateData(data []byte) (*UpdateData, error) {
	r := codec.NewReader(data)
	var magic [4]byte
	r.Fixed("magic", magic[:])
	if r.Err() == nil && magic != updateMagic {
		return nil, fmt.Errorf("%w: bad magic %x", vaa.ErrMalformedEnvelope, magic)
	}
	if major := r.Uint8("major version"); r.Err() == nil && major != MajorVersion {
		return nil, fmt.Errorf("%w: major version %d", vaa.ErrMalformedEnvelope, major)
	}
	u := &UpdateData{}
	u.Minor = r.Uint8("minor version")
	u.TrailingHeader = clone(r.Bytes("trailing header", int(r.Uint8("trailing header length"))))
	if kind := r.Uint8("proof kind"); r.Err() == nil && kind != proofWormholeMerkle {
		return nil, fmt.Errorf("%w: proof kind %d", vaa.ErrMalformedEnvelope, kind)
	}
	u.VAA = clone(r.Bytes("attestation", int(r.Uint16("attestation length"))))
	count := int(r.Uint8("update count"))
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", vaa.ErrMalformedEnvelope, err)
	}
	u.Updates = make([]Update, count)
	for i := range u.Updates {
		u.Updates[i].Message = clone(r.Bytes("message", int(r.Uint16("message length"))))
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("%w: update %d: %w", vaa.ErrMalformedEnvelope, i, err)
		}
		proof, err := merkle.DecodeProof(r)
		if err != nil {
			return nil, fmt.Errorf("%w: update %d: %w", vaa.ErrMalformedEnvelope, i, err)
		}
		u.Updates[i].Proof = proof
	}
	if err := r.Done(); err != nil {
		return nil, fmt.Errorf("%w: %w", vaa.ErrMalformedEnvelope, err)
	}
	return u, nil
}

func clone(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return append([]byte{}, b...)
}
