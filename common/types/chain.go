package types

import "strconv"

// ChainID identifies a chain connected to the guardian network.
type ChainID uint16

const (
	ChainUnset     ChainID = 0
	ChainSolana    ChainID = 1
	ChainEthereum  ChainID = 2
	ChainTerra     ChainID = 3
	ChainBSC       ChainID = 4
	ChainPolygon   ChainID = 5
	ChainAvalanche ChainID = 6
	ChainOasis     ChainID = 7
	ChainAlgorand  ChainID = 8
	ChainAurora    ChainID = 9
	ChainFantom    ChainID = 10
	ChainPythnet   ChainID = 26
)

// String returns the name of well-known chains and the number otherwise.
func (c ChainID) String() string {
	switch c {
	case ChainUnset:
		return "unset"
	case ChainSolana:
		return "solana"
	case ChainEthereum:
		return "ethereum"
	case ChainTerra:
		return "terra"
	case ChainBSC:
		return "bsc"
	case ChainPolygon:
		return "polygon"
	case ChainAvalanche:
		return "avalanche"
	case ChainOasis:
		return "oasis"
	case ChainAlgorand:
		return "algorand"
	case ChainAurora:
		return "aurora"
	case ChainFantom:
		return "fantom"
	case ChainPythnet:
		return "pythnet"
	default:
		return strconv.Itoa(int(c))
	}
}

// ClaimKey identifies a single attestation for replay protection.
type ClaimKey struct {
	EmitterChain   ChainID
	EmitterAddress Address
	Sequence       uint64
}

// String implements fmt.Stringer.
func (k ClaimKey) String() string {
	return k.EmitterChain.String() + "/" + k.EmitterAddress.ShortString() + "/" +
		strconv.FormatUint(k.Sequence, 10)
}
