package bridge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/attestlabs/go-attest/common/types"
)

func testTransfer() *Transfer {
	t := &Transfer{
		TokenAddress: types.Address{0x31},
		TokenChain:   types.ChainEthereum,
		TokenID:      types.Hash32{0x01},
		URI:          "https://example.org/token/1",
		To:           types.Address{0x41},
		ToChain:      types.ChainSolana,
	}
	t.SetName("Example")
	t.SetSymbol("EXM")
	return t
}

func TestTransferEncoding(t *testing.T) {
	transfer := testTransfer()
	buf, err := transfer.Encode()
	require.NoError(t, err)
	require.Len(t, buf, 1+32+2+32+32+32+1+len(transfer.URI)+32+2)
	require.Equal(t, PayloadTransfer, buf[0])

	decoded, err := DecodeTransfer(buf)
	require.NoError(t, err)
	require.Equal(t, transfer, decoded)

	t.Run("trailing bytes", func(t *testing.T) {
		_, err := DecodeTransfer(append(buf, 0))
		require.ErrorIs(t, err, ErrMalformedPayload)
	})
	t.Run("truncated", func(t *testing.T) {
		for _, n := range []int{0, 1, 33, len(buf) - 1} {
			_, err := DecodeTransfer(buf[:n])
			require.ErrorIs(t, err, ErrMalformedPayload, "length %d", n)
		}
	})
	t.Run("payload id", func(t *testing.T) {
		other := append([]byte{2}, buf[1:]...)
		_, err := DecodeTransfer(other)
		require.ErrorIs(t, err, ErrMalformedPayload)
	})
	t.Run("long uri", func(t *testing.T) {
		transfer := testTransfer()
		transfer.URI = strings.Repeat("u", 256)
		_, err := transfer.Encode()
		require.ErrorIs(t, err, ErrMalformedPayload)
	})
}

func TestLabels(t *testing.T) {
	transfer := testTransfer()
	require.Equal(t, "Example", transfer.DisplayName())
	require.Equal(t, "EXM", transfer.DisplaySymbol())

	transfer.SetName(strings.Repeat("n", 40))
	transfer.SetSymbol("LONGSYMBOL123")
	require.Equal(t, strings.Repeat("n", MaxNameLength), transfer.DisplayName())
	require.Equal(t, "LONGSYMBOL", transfer.DisplaySymbol())
}

func TestAsset(t *testing.T) {
	transfer := testTransfer()
	require.Equal(t, WrappedAsset{
		Chain:   types.ChainEthereum,
		Address: transfer.TokenAddress,
		TokenID: transfer.TokenID,
	}, transfer.Asset(types.ChainSolana))
	require.Equal(t, NativeAsset{Mint: transfer.TokenAddress}, transfer.Asset(types.ChainEthereum))
}
