package signing

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/natefinch/atomic"

	"github.com/attestlabs/go-attest/common/types"
)

const (
	// PrivateKeySize is the size of a raw secp256k1 secret.
	PrivateKeySize = 32
	// SignatureSize is the size of a recoverable signature: r || s || v.
	SignatureSize = 65
)

// Signature is a recoverable secp256k1 signature with the recovery id in the last byte.
type Signature [SignatureSize]byte

type guardianSignerOption struct {
	priv *ecdsa.PrivateKey
	file string
}

// SignerOptionFunc modifies GuardianSigner.
type SignerOptionFunc func(*guardianSignerOption) error

// ToFile writes the private key to a file after creation.
func ToFile(path string) SignerOptionFunc {
	return func(opt *guardianSignerOption) error {
		if opt.file != "" {
			return errors.New("invalid option ToFile: file already set")
		}
		opt.file = path
		return nil
	}
}

// FromFile loads a hex encoded private key from a file.
func FromFile(path string) SignerOptionFunc {
	return func(opt *guardianSignerOption) error {
		if opt.priv != nil {
			return errors.New("invalid option FromFile: private key already set")
		}
		if opt.file != "" {
			return errors.New("invalid option FromFile: file already set")
		}
		priv, err := crypto.LoadECDSA(path)
		if err != nil {
			return fmt.Errorf("load guardian key from %s: %w", filepath.Base(path), err)
		}
		opt.priv = priv
		opt.file = filepath.Base(path)
		return nil
	}
}

// WithPrivateKey sets the raw secp256k1 secret used by the signer.
func WithPrivateKey(secret []byte) SignerOptionFunc {
	return func(opt *guardianSignerOption) error {
		if opt.priv != nil {
			return errors.New("invalid option WithPrivateKey: private key already set")
		}
		if len(secret) != PrivateKeySize {
			return fmt.Errorf("invalid key length %d/%d", len(secret), PrivateKeySize)
		}
		priv, err := crypto.ToECDSA(secret)
		if err != nil {
			return fmt.Errorf("parse guardian key: %w", err)
		}
		opt.priv = priv
		return nil
	}
}

// WithKeyFromRand generates the private key from the given randomness source.
func WithKeyFromRand(rand io.Reader) SignerOptionFunc {
	return func(opt *guardianSignerOption) error {
		if opt.priv != nil {
			return errors.New("invalid option WithKeyFromRand: private key already set")
		}
		priv, err := ecdsa.GenerateKey(crypto.S256(), rand)
		if err != nil {
			return fmt.Errorf("could not generate key: %w", err)
		}
		opt.priv = priv
		return nil
	}
}

// GuardianSigner signs attestation digests with a secp256k1 key.
type GuardianSigner struct {
	priv *ecdsa.PrivateKey
	file string
}

// NewGuardianSigner returns a signer. Without a key option a new key is generated,
// and written to the ToFile path if one was given.
func NewGuardianSigner(opts ...SignerOptionFunc) (*GuardianSigner, error) {
	cfg := &guardianSignerOption{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.priv == nil {
		priv, err := crypto.GenerateKey()
		if err != nil {
			return nil, fmt.Errorf("could not generate key: %w", err)
		}
		cfg.priv = priv

		if cfg.file != "" {
			_, err := os.Stat(cfg.file)
			switch {
			case errors.Is(err, fs.ErrNotExist):
			// continue
			case err != nil:
				return nil, fmt.Errorf("stat key file %s: %w", filepath.Base(cfg.file), err)
			default: // err == nil
				return nil, fmt.Errorf("save key file %s: %w", filepath.Base(cfg.file), fs.ErrExist)
			}
			dst := make([]byte, hex.EncodedLen(PrivateKeySize))
			hex.Encode(dst, crypto.FromECDSA(cfg.priv))
			if err := atomic.WriteFile(cfg.file, bytes.NewReader(dst)); err != nil {
				return nil, fmt.Errorf("failed to write key file: %w", err)
			}
		}
	}
	return &GuardianSigner{priv: cfg.priv, file: cfg.file}, nil
}

// Sign signs a 32-byte digest. The recovery id is returned as 0 or 1.
func (gs *GuardianSigner) Sign(digest types.Hash32) (Signature, error) {
	raw, err := crypto.Sign(digest[:], gs.priv)
	if err != nil {
		return Signature{}, fmt.Errorf("sign digest: %w", err)
	}
	return Signature(raw), nil
}

// GuardianKey returns the identity under which the signer appears in a guardian set.
func (gs *GuardianSigner) GuardianKey() types.GuardianKey {
	return types.GuardianKey(crypto.PubkeyToAddress(gs.priv.PublicKey))
}

// PrivateKey returns the raw secret.
func (gs *GuardianSigner) PrivateKey() []byte {
	return crypto.FromECDSA(gs.priv)
}

// Name returns the base name of the key file, if any.
func (gs *GuardianSigner) Name() string {
	if gs.file == "" {
		return ""
	}
	return filepath.Base(gs.file)
}

// Matches implements the gomock.Matcher interface for testing.
func (gs *GuardianSigner) Matches(x any) bool {
	if other, ok := x.(*GuardianSigner); ok {
		return bytes.Equal(gs.PrivateKey(), other.PrivateKey())
	}
	return false
}

func (gs *GuardianSigner) String() string {
	return gs.GuardianKey().ShortString()
}
