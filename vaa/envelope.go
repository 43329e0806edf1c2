// Package vaa implements the guardian-signed attestation envelope and its
// threshold verification.
package vaa

import (
	"encoding/binary"
	"errors"
	"fmt"

	"go.uber.org/zap/zapcore"

	"github.com/attestlabs/go-attest/codec"
	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/hash"
	"github.com/attestlabs/go-attest/signing"
)

// ErrMalformedEnvelope is returned when an envelope can't be decoded.
var ErrMalformedEnvelope = errors.New("vaa: malformed envelope")

const (
	// SupportedVersion is the only accepted envelope version.
	SupportedVersion uint8 = 1
	// MaxSignatures is bounded by the single-byte signature count.
	MaxSignatures = 255

	headerFixedLen = 1 + 4 + 1
	signatureLen   = 1 + signing.SignatureSize
	bodyFixedLen   = 4 + 4 + 2 + types.AddressLength + 8 + 1
)

// Signature is one guardian signature over the body digest.
type Signature struct {
	Index     uint8
	Signature signing.Signature
}

// Header carries the guardian set index and the ordered signatures.
type Header struct {
	Version          uint8
	GuardianSetIndex uint32
	Signatures       []Signature
}

// Body is the signed part of the envelope.
type Body struct {
	Timestamp        uint32
	Nonce            uint32
	EmitterChain     types.ChainID
	EmitterAddress   types.Address
	Sequence         uint64
	ConsistencyLevel uint8
	Payload          []byte
}

// VAA is a decoded envelope.
type VAA struct {
	Header
	Body
}

// Encode returns the canonical body bytes.
func (b *Body) Encode() []byte {
	buf := make([]byte, 0, bodyFixedLen+len(b.Payload))
	buf = binary.BigEndian.AppendUint32(buf, b.Timestamp)
	buf = binary.BigEndian.AppendUint32(buf, b.Nonce)
	buf = binary.BigEndian.AppendUint16(buf, uint16(b.EmitterChain))
	buf = append(buf, b.EmitterAddress[:]...)
	buf = binary.BigEndian.AppendUint64(buf, b.Sequence)
	buf = append(buf, b.ConsistencyLevel)
	buf = append(buf, b.Payload...)
	return buf
}

// Digest returns keccak256(keccak256(body)). Guardians sign this value.
func (b *Body) Digest() types.Hash32 {
	return hash.DoubleKeccak256(b.Encode())
}

// ClaimKey identifies the message for replay protection.
func (b *Body) ClaimKey() types.ClaimKey {
	return types.ClaimKey{
		EmitterChain:   b.EmitterChain,
		EmitterAddress: b.EmitterAddress,
		Sequence:       b.Sequence,
	}
}

// Encode returns the canonical envelope bytes.
func (v *VAA) Encode() ([]byte, error) {
	if v.Version != SupportedVersion {
		return nil, fmt.Errorf("%w: version %d", ErrMalformedEnvelope, v.Version)
	}
	if len(v.Signatures) > MaxSignatures {
		return nil, fmt.Errorf("%w: %d signatures", ErrMalformedEnvelope, len(v.Signatures))
	}
	body := v.Body.Encode()
	buf := make([]byte, 0, headerFixedLen+len(v.Signatures)*signatureLen+len(body))
	buf = append(buf, v.Version)
	buf = binary.BigEndian.AppendUint32(buf, v.GuardianSetIndex)
	buf = append(buf, byte(len(v.Signatures)))
	for _, sig := range v.Signatures {
		buf = append(buf, sig.Index)
		buf = append(buf, sig.Signature[:]...)
	}
	return append(buf, body...), nil
}

// Decode parses an envelope. The payload is copied out of data.
func Decode(data []byte) (*VAA, error) {
	r := codec.NewReader(data)
	v := &VAA{}
	v.Version = r.Uint8("version")
	if r.Err() == nil && v.Version != SupportedVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedEnvelope, v.Version)
	}
	v.GuardianSetIndex = r.Uint32("guardian set index")
	count := int(r.Uint8("signature count"))
	if r.Err() == nil && r.Remaining() < count*signatureLen+bodyFixedLen {
		return nil, fmt.Errorf("%w: %d signatures declared, %d bytes left",
			ErrMalformedEnvelope, count, r.Remaining())
	}
	if r.Err() == nil {
		v.Signatures = make([]Signature, count)
	}
	for i := range v.Signatures {
		v.Signatures[i].Index = r.Uint8("guardian index")
		r.Fixed("signature", v.Signatures[i].Signature[:])
	}
	v.Timestamp = r.Uint32("timestamp")
	v.Nonce = r.Uint32("nonce")
	v.EmitterChain = types.ChainID(r.Uint16("emitter chain"))
	r.Fixed("emitter address", v.EmitterAddress[:])
	v.Sequence = r.Uint64("sequence")
	v.ConsistencyLevel = r.Uint8("consistency level")
	v.Payload = append([]byte{}, r.Rest()...)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}
	return v, nil
}

// MarshalLogObject implements logging encoder for VAA.
func (v *VAA) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddUint32("guardian_set", v.GuardianSetIndex)
	encoder.AddInt("signatures", len(v.Signatures))
	encoder.AddString("emitter_chain", v.EmitterChain.String())
	encoder.AddString("emitter", v.EmitterAddress.ShortString())
	encoder.AddUint64("sequence", v.Sequence)
	return nil
}
