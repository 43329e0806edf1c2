package bridge

import (
	"context"

	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/vaa"
)

type attestationVerifier interface {
	VerifyVAA(ctx context.Context, v *vaa.VAA) (*types.GuardianSet, error)
}
