package signing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/hash"
)

func TestNewGuardianSignerFromBuffer(t *testing.T) {
	_, err := NewGuardianSigner(WithPrivateKey([]byte{1, 2, 3}))
	require.ErrorContains(t, err, "invalid key length")

	_, err = NewGuardianSigner(WithPrivateKey(make([]byte, PrivateKeySize)))
	require.Error(t, err)
}

func TestGuardianSigner_WithPrivateKey(t *testing.T) {
	gs, err := NewGuardianSigner()
	require.NoError(t, err)

	gs2, err := NewGuardianSigner(WithPrivateKey(gs.PrivateKey()))
	require.NoError(t, err)
	require.Equal(t, gs.GuardianKey(), gs2.GuardianKey())
	require.True(t, gs.Matches(gs2))
}

func TestGuardianSigner_SignRecover(t *testing.T) {
	gs, err := NewGuardianSigner()
	require.NoError(t, err)

	digest := hash.Keccak256([]byte("message"))
	sig, err := gs.Sign(digest)
	require.NoError(t, err)
	require.LessOrEqual(t, sig[recoveryIDIndex], byte(1))

	key, err := RecoverGuardian(digest, sig)
	require.NoError(t, err)
	require.Equal(t, gs.GuardianKey(), key)

	t.Run("ethereum recovery id", func(t *testing.T) {
		eth := sig
		eth[recoveryIDIndex] += 27
		key, err := RecoverGuardian(digest, eth)
		require.NoError(t, err)
		require.Equal(t, gs.GuardianKey(), key)
	})
	t.Run("other digest", func(t *testing.T) {
		key, err := RecoverGuardian(hash.Keccak256([]byte("other")), sig)
		if err == nil {
			require.NotEqual(t, gs.GuardianKey(), key)
		}
	})
	t.Run("invalid recovery id", func(t *testing.T) {
		bad := sig
		bad[recoveryIDIndex] = 9
		_, err := RecoverGuardian(digest, bad)
		require.ErrorIs(t, err, ErrRecovery)
	})
}

func TestGuardianKeyIsEthereumAddress(t *testing.T) {
	secret := make([]byte, PrivateKeySize)
	secret[0] = 1
	gs, err := NewGuardianSigner(WithPrivateKey(secret))
	require.NoError(t, err)

	priv, err := crypto.ToECDSA(secret)
	require.NoError(t, err)
	pub := crypto.FromECDSAPub(&priv.PublicKey)
	digest := hash.Keccak256(pub[1:])
	require.Equal(t, types.GuardianKey(digest[12:]), gs.GuardianKey())
}

func TestGuardianSigner_Files(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guardian.key")

	gs, err := NewGuardianSigner(ToFile(path))
	require.NoError(t, err)
	require.Equal(t, "guardian.key", gs.Name())
	require.FileExists(t, path)

	loaded, err := NewGuardianSigner(FromFile(path))
	require.NoError(t, err)
	require.Equal(t, gs.GuardianKey(), loaded.GuardianKey())

	_, err = NewGuardianSigner(ToFile(path))
	require.ErrorIs(t, err, os.ErrExist)

	_, err = NewGuardianSigner(FromFile(filepath.Join(t.TempDir(), "missing")))
	require.Error(t, err)

	_, err = NewGuardianSigner(WithPrivateKey(gs.PrivateKey()), FromFile(path))
	require.ErrorContains(t, err, "private key already set")
}
