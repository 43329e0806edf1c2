package hash

import (
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
)

// pool is a global keccak hasher pool. It is meant to amortize allocations
// of keccak states over time by allowing clients to reuse them.
var pool = &sync.Pool{
	New: func() any {
		return crypto.NewKeccakState()
	},
}

// GetHasher will get a reset keccak hasher from the pool.
// It may or may not allocate a new one.
func GetHasher() crypto.KeccakState {
	hasher := pool.Get().(crypto.KeccakState)
	hasher.Reset()
	return hasher
}

// PutHasher returns the hasher back to the pool.
func PutHasher(hasher crypto.KeccakState) {
	pool.Put(hasher)
}
