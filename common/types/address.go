package types

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spacemeshos/go-scale"
)

const (
	// AddressLength is the length of a universal address.
	AddressLength = 32
	// GuardianKeyLength is the length of a guardian identity.
	GuardianKeyLength = 20
)

// Address is a chain-agnostic 32-byte address. Shorter native addresses are
// left-padded with zeroes.
type Address [AddressLength]byte

// BytesToAddress returns Address with value b.
// If b is larger than len(a), b will be cropped from the left.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > len(a) {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// Bytes gets the byte representation of the underlying address.
func (a Address) Bytes() []byte { return a[:] }

// IsEmpty checks if address is all zeroes.
func (a Address) IsEmpty() bool {
	return a == Address{}
}

// Compare returns an integer comparing two addresses lexicographically.
func (a Address) Compare(other Address) int {
	return bytes.Compare(a[:], other[:])
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return hexutil.Encode(a[:])
}

// ShortString returns a shortened hex representation, for logging purposes.
func (a Address) ShortString() string {
	return Shorten(a.String()[2:], 10)
}

// UnmarshalText parses an address in hex syntax.
func (a *Address) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Address", input, a[:])
}

// MarshalText returns the hex representation of a.
func (a Address) MarshalText() ([]byte, error) {
	return hexutil.Bytes(a[:]).MarshalText()
}

// GuardianKey is the identity of a guardian: the last 20 bytes of the keccak256
// hash of its uncompressed secp256k1 public key.
type GuardianKey [GuardianKeyLength]byte

// Bytes gets the byte representation of the key.
func (k GuardianKey) Bytes() []byte { return k[:] }

// String implements fmt.Stringer.
func (k GuardianKey) String() string {
	return hexutil.Encode(k[:])
}

// ShortString returns a shortened hex representation, for logging purposes.
func (k GuardianKey) ShortString() string {
	return Shorten(k.String()[2:], 10)
}

// Format implements fmt.Formatter.
func (k GuardianKey) Format(s fmt.State, c rune) {
	_, _ = fmt.Fprintf(s, "%"+string(c), k[:])
}

// UnmarshalText parses a guardian key in hex syntax.
func (k *GuardianKey) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("GuardianKey", input, k[:])
}

// MarshalText returns the hex representation of k.
func (k GuardianKey) MarshalText() ([]byte, error) {
	return hexutil.Bytes(k[:]).MarshalText()
}

// EncodeScale implements scale codec interface.
func (k *GuardianKey) EncodeScale(e *scale.Encoder) (int, error) {
	return scale.EncodeByteArray(e, k[:])
}

// DecodeScale implements scale codec interface.
func (k *GuardianKey) DecodeScale(d *scale.Decoder) (int, error) {
	return scale.DecodeByteArray(d, k[:])
}
