package hash

import (
	"github.com/minio/sha256-simd"

	"github.com/attestlabs/go-attest/common/types"
)

const (
	// Size is an alias to minio sha256.Size (32 bytes).
	Size = sha256.Size
)

var (
	// New is an alias to minio sha256.New.
	New = sha256.New
	// Sum is an alias to minio sha256.Sum256.
	Sum = sha256.Sum256
)

// Keccak256 returns the legacy keccak256 digest of the concatenation of data.
func Keccak256(data ...[]byte) (h types.Hash32) {
	hasher := GetHasher()
	defer PutHasher(hasher)
	for _, chunk := range data {
		hasher.Write(chunk)
	}
	hasher.Read(h[:])
	return h
}

// Keccak160 returns the first 20 bytes of the keccak256 digest of the concatenation of data.
func Keccak160(data ...[]byte) types.Hash20 {
	return Keccak256(data...).ToHash20()
}

// DoubleKeccak256 returns keccak256(keccak256(data)).
func DoubleKeccak256(data []byte) types.Hash32 {
	inner := Keccak256(data)
	return Keccak256(inner[:])
}
