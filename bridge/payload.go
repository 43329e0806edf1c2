package bridge

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/attestlabs/go-attest/codec"
	"github.com/attestlabs/go-attest/common/types"
)

// ErrMalformedPayload is returned when a transfer payload can't be decoded.
var ErrMalformedPayload = errors.New("bridge: malformed transfer payload")

const (
	// PayloadTransfer identifies a transfer payload.
	PayloadTransfer uint8 = 1

	// MaxNameLength is the longest name copied into token metadata.
	MaxNameLength = 32
	// MaxSymbolLength is the longest symbol copied into token metadata.
	MaxSymbolLength = 10

	labelLength = 32
)

// Transfer moves one unit of an asset to a holder on ToChain.
type Transfer struct {
	TokenAddress types.Address
	TokenChain   types.ChainID
	Symbol       [labelLength]byte
	Name         [labelLength]byte
	TokenID      types.Hash32
	URI          string
	To           types.Address
	ToChain      types.ChainID
}

// Encode returns the wire form of the transfer.
func (t *Transfer) Encode() ([]byte, error) {
	if len(t.URI) > math.MaxUint8 {
		return nil, fmt.Errorf("%w: uri is %d bytes", ErrMalformedPayload, len(t.URI))
	}
	buf := make([]byte, 0, 1+types.AddressLength+2+2*labelLength+types.Hash32Length+1+len(t.URI)+types.AddressLength+2)
	buf = append(buf, PayloadTransfer)
	buf = append(buf, t.TokenAddress[:]...)
	buf = binary.BigEndian.AppendUint16(buf, uint16(t.TokenChain))
	buf = append(buf, t.Symbol[:]...)
	buf = append(buf, t.Name[:]...)
	buf = append(buf, t.TokenID[:]...)
	buf = append(buf, byte(len(t.URI)))
	buf = append(buf, t.URI...)
	buf = append(buf, t.To[:]...)
	buf = binary.BigEndian.AppendUint16(buf, uint16(t.ToChain))
	return buf, nil
}

// DecodeTransfer parses a transfer payload. Trailing bytes are rejected.
func DecodeTransfer(data []byte) (*Transfer, error) {
	r := codec.NewReader(data)
	if id := r.Uint8("payload id"); r.Err() == nil && id != PayloadTransfer {
		return nil, fmt.Errorf("%w: payload id %d", ErrMalformedPayload, id)
	}
	t := &Transfer{}
	r.Fixed("token address", t.TokenAddress[:])
	t.TokenChain = types.ChainID(r.Uint16("token chain"))
	r.Fixed("symbol", t.Symbol[:])
	r.Fixed("name", t.Name[:])
	r.Fixed("token id", t.TokenID[:])
	t.URI = string(r.Bytes("uri", int(r.Uint8("uri length"))))
	r.Fixed("recipient", t.To[:])
	t.ToChain = types.ChainID(r.Uint16("recipient chain"))
	if err := r.Done(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return t, nil
}

// SetName stores name in the fixed-width field, cutting it at the field width.
func (t *Transfer) SetName(name string) {
	t.Name = [labelLength]byte{}
	copy(t.Name[:], name)
}

// SetSymbol stores symbol in the fixed-width field, cutting it at the field width.
func (t *Transfer) SetSymbol(symbol string) {
	t.Symbol = [labelLength]byte{}
	copy(t.Symbol[:], symbol)
}

// DisplayName returns the name with NUL padding removed, truncated to MaxNameLength bytes.
func (t *Transfer) DisplayName() string {
	return label(t.Name[:], MaxNameLength)
}

// DisplaySymbol returns the symbol with NUL padding removed, truncated to MaxSymbolLength bytes.
func (t *Transfer) DisplaySymbol() string {
	return label(t.Symbol[:], MaxSymbolLength)
}

func label(field []byte, limit int) string {
	field = bytes.TrimRight(field, "\x00")
	if len(field) > limit {
		field = field[:limit]
	}
	return string(field)
}

// Asset is what a transfer moves, resolved against the local chain.
// It is either NativeAsset or WrappedAsset.
type Asset interface {
	isAsset()
}

// NativeAsset is a token that originates on the local chain and is released from custody.
type NativeAsset struct {
	Mint types.Address
}

// WrappedAsset is a foreign token represented by a locally minted token.
type WrappedAsset struct {
	Chain   types.ChainID
	Address types.Address
	TokenID types.Hash32
}

func (NativeAsset) isAsset()  {}
func (WrappedAsset) isAsset() {}

// Asset resolves the transferred token against local.
func (t *Transfer) Asset(local types.ChainID) Asset {
	if t.TokenChain == local {
		return NativeAsset{Mint: t.TokenAddress}
	}
	return WrappedAsset{Chain: t.TokenChain, Address: t.TokenAddress, TokenID: t.TokenID}
}
