// Package derive maps semantic keys to account addresses. The mapping is a pure
// function of its inputs so any party can recompute and check an address without a
// lookup table.
package derive

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/hash"
)

// ErrAccountDerivationMismatch is returned when an address is not the derivation of its key.
var ErrAccountDerivationMismatch = errors.New("derive: account derivation mismatch")

// MaxSeedLength is the longest accepted seed.
const MaxSeedLength = 32

const domain = "ProgramDerivedAddress"

// Purpose tags the role of a derived account. Equal seeds under different purposes
// derive different addresses.
type Purpose string

const (
	PurposeEndpoint      Purpose = "endpoint"
	PurposeCustody       Purpose = "custody"
	PurposeClaim         Purpose = "claim"
	PurposeWrapped       Purpose = "wrapped"
	PurposeMeta          Purpose = "meta"
	PurposeAssociated    Purpose = "associated"
	PurposeCustodySigner Purpose = "custody_signer"
	PurposeMintSigner    Purpose = "mint_signer"
)

// Key is a purpose with its ordered seeds.
type Key struct {
	Purpose Purpose
	Seeds   [][]byte
}

// String implements fmt.Stringer.
func (k Key) String() string {
	return fmt.Sprintf("%s%x", k.Purpose, k.Seeds)
}

// Derive returns sha256(len||purpose, len||seed..., program, "ProgramDerivedAddress").
// It panics if a seed is longer than MaxSeedLength, which only a malformed Key can cause.
func Derive(key Key, program types.Address) types.Address {
	h := hash.New()
	h.Write([]byte{byte(len(key.Purpose))})
	h.Write([]byte(key.Purpose))
	for i, seed := range key.Seeds {
		if len(seed) > MaxSeedLength {
			panic(fmt.Sprintf("derive: seed %d of %s is %d bytes", i, key.Purpose, len(seed)))
		}
		h.Write([]byte{byte(len(seed))})
		h.Write(seed)
	}
	h.Write(program[:])
	h.Write([]byte(domain))
	var addr types.Address
	h.Sum(addr[:0])
	return addr
}

// Verify recomputes the derivation of key and compares it with addr.
func Verify(addr types.Address, key Key, program types.Address) error {
	if expected := Derive(key, program); expected != addr {
		return fmt.Errorf("%w: %s is not the %s account (expected %s)",
			ErrAccountDerivationMismatch, addr.ShortString(), key.Purpose, expected.ShortString())
	}
	return nil
}

func chainSeed(chain types.ChainID) []byte {
	return binary.BigEndian.AppendUint16(nil, uint16(chain))
}

// Endpoint is the registration record of a foreign emitter.
func Endpoint(chain types.ChainID, emitter types.Address) Key {
	return Key{Purpose: PurposeEndpoint, Seeds: [][]byte{chainSeed(chain), emitter[:]}}
}

// Custody is the escrow account holding locked native tokens of mint.
func Custody(mint types.Address) Key {
	return Key{Purpose: PurposeCustody, Seeds: [][]byte{mint[:]}}
}

// Claim is the replay protection record of one message.
func Claim(key types.ClaimKey) Key {
	return Key{Purpose: PurposeClaim, Seeds: [][]byte{
		chainSeed(key.EmitterChain),
		key.EmitterAddress[:],
		binary.BigEndian.AppendUint64(nil, key.Sequence),
	}}
}

// Wrapped is the local mint representing a foreign asset.
func Wrapped(tokenChain types.ChainID, tokenAddress types.Address, tokenID types.Hash32) Key {
	return Key{Purpose: PurposeWrapped, Seeds: [][]byte{chainSeed(tokenChain), tokenAddress[:], tokenID[:]}}
}

// WrappedMeta is the origin record of a wrapped mint.
func WrappedMeta(mint types.Address) Key {
	return Key{Purpose: PurposeMeta, Seeds: [][]byte{mint[:]}}
}

// Associated is the conventional token account of owner for mint. It is derived under
// the associated account program, not the bridge program.
func Associated(owner, mint types.Address) Key {
	return Key{Purpose: PurposeAssociated, Seeds: [][]byte{owner[:], mint[:]}}
}

// CustodySigner is the authority owning every custody account.
func CustodySigner() Key {
	return Key{Purpose: PurposeCustodySigner}
}

// MintSigner is the authority of every wrapped mint.
func MintSigner() Key {
	return Key{Purpose: PurposeMintSigner}
}
