package signing

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/attestlabs/go-attest/common/types"
)

// ErrRecovery is returned when no public key can be recovered from a signature.
var ErrRecovery = errors.New("signing: public key recovery failed")

const recoveryIDIndex = SignatureSize - 1

// RecoverGuardian returns the identity of the key that produced sig over digest.
// Recovery ids in the 27/28 form are accepted.
func RecoverGuardian(digest types.Hash32, sig Signature) (types.GuardianKey, error) {
	normalized := normalize(sig)
	pub, err := crypto.SigToPub(digest[:], normalized[:])
	if err != nil {
		return types.GuardianKey{}, fmt.Errorf("%w: %w", ErrRecovery, err)
	}
	return types.GuardianKey(crypto.PubkeyToAddress(*pub)), nil
}

func normalize(sig Signature) Signature {
	switch sig[recoveryIDIndex] {
	case 27:
		sig[recoveryIDIndex] = 0
	case 28:
		sig[recoveryIDIndex] = 1
	}
	return sig
}
