package vaa

import (
	"context"

	"github.com/attestlabs/go-attest/common/types"
)

//go:generate mockgen -typed -package=mocks -destination=./mocks/mocks.go -source=./interface.go

// GuardianSetProvider returns the guardian set published under index.
type GuardianSetProvider interface {
	GuardianSet(ctx context.Context, index uint32) (*types.GuardianSet, error)
}
