package types

import (
	"slices"
	"time"

	"github.com/spacemeshos/go-scale"
)

// MaxGuardians bounds the size of a guardian set. Signature indices are a single byte.
const MaxGuardians = 255

// GuardianSet is an ordered list of guardian identities addressed by index.
// A published set is never modified.
type GuardianSet struct {
	Index uint32
	Keys  []GuardianKey
	// ExpirationTime is a unix timestamp in seconds. Zero means the set does not expire.
	ExpirationTime uint32
}

// Quorum returns the conventional number of signatures required for the set: 2/3 + 1.
func (gs *GuardianSet) Quorum() int {
	return CalculateQuorum(len(gs.Keys))
}

// Expired returns true if the set expired at or before now.
func (gs *GuardianSet) Expired(now time.Time) bool {
	return gs.ExpirationTime != 0 && now.Unix() >= int64(gs.ExpirationTime)
}

// KeyAt returns the key at index and false if index is outside of the set.
func (gs *GuardianSet) KeyAt(index int) (GuardianKey, bool) {
	if index < 0 || index >= len(gs.Keys) {
		return GuardianKey{}, false
	}
	return gs.Keys[index], true
}

// Copy returns a deep copy of the set.
func (gs *GuardianSet) Copy() *GuardianSet {
	cp := *gs
	cp.Keys = slices.Clone(gs.Keys)
	return &cp
}

// CalculateQuorum returns floor(2n/3)+1.
func CalculateQuorum(n int) int {
	return (n*2)/3 + 1
}

// EncodeScale implements scale codec interface.
func (gs *GuardianSet) EncodeScale(enc *scale.Encoder) (int, error) {
	var total int
	{
		n, err := scale.EncodeCompact32(enc, gs.Index)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, gs.Keys, MaxGuardians)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact32(enc, gs.ExpirationTime)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DecodeScale implements scale codec interface.
func (gs *GuardianSet) DecodeScale(dec *scale.Decoder) (int, error) {
	var total int
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		gs.Index = field
	}
	{
		field, n, err := scale.DecodeStructSliceWithLimit[GuardianKey](dec, MaxGuardians)
		if err != nil {
			return total, err
		}
		total += n
		gs.Keys = field
	}
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		gs.ExpirationTime = field
	}
	return total, nil
}
