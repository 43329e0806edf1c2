package accumulator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/merkle"
	"github.com/attestlabs/go-attest/vaa"
)

func dummyMessage(value int64) *PriceFeedMessage {
	var id types.Hash32
	id[0] = byte(value)
	return &PriceFeedMessage{
		FeedID:          id,
		Price:           value,
		Conf:            uint64(value),
		Exponent:        int32(value),
		PublishTime:     value,
		PrevPublishTime: value,
		EMAPrice:        value,
		EMAConf:         uint64(value),
	}
}

func TestMessageEncoding(t *testing.T) {
	msg := &PriceFeedMessage{
		FeedID:          types.Hash32{0xfe},
		Price:           -12345,
		Conf:            7,
		Exponent:        -8,
		PublishTime:     1700000000,
		PrevPublishTime: 1699999999,
		EMAPrice:        -12000,
		EMAConf:         9,
	}
	buf := msg.Encode()
	require.Len(t, buf, priceFeedMessageLen)
	require.Equal(t, MessagePriceFeed, buf[0])

	decoded, err := DecodeMessage(buf)
	require.NoError(t, err)
	require.Equal(t, msg, decoded)

	_, err = DecodeMessage(buf[:len(buf)-1])
	require.ErrorIs(t, err, ErrMalformedMessage)
	_, err = DecodeMessage(append(buf, 0))
	require.ErrorIs(t, err, ErrMalformedMessage)
	buf[0] = 1
	_, err = DecodeMessage(buf)
	require.ErrorIs(t, err, ErrMalformedMessage)
}

func TestPayloadDecoding(t *testing.T) {
	root := &MerkleRootPayload{Slot: 42, RingSize: 10000, Root: types.Hash20{1, 2, 3}}
	buf := root.Encode()
	require.Equal(t, []byte("AUWV"), buf[:4])

	decoded, err := DecodePayload(buf)
	require.NoError(t, err)
	require.Equal(t, root, decoded)

	corrupted := append([]byte{0}, buf[1:]...)
	decoded, err = DecodePayload(corrupted)
	require.NoError(t, err)
	require.Equal(t, LegacyPayload(corrupted), decoded)

	_, err = DecodePayload(buf[:len(buf)-1])
	require.ErrorIs(t, err, ErrUnsupportedPayload)

	otherType := append([]byte{}, buf...)
	otherType[4] = 1
	_, err = DecodePayload(otherType)
	require.ErrorIs(t, err, ErrUnsupportedPayload)
}

func TestUpdateDataEncoding(t *testing.T) {
	leaves := [][]byte{dummyMessage(1).Encode(), dummyMessage(2).Encode(), dummyMessage(3).Encode()}
	tree, err := merkle.Build(leaves)
	require.NoError(t, err)
	proof, err := tree.Prove(leaves[2])
	require.NoError(t, err)

	data := &UpdateData{
		Minor:          3,
		TrailingHeader: []byte{9, 9},
		VAA:            []byte("attestation"),
		Updates: []Update{
			{Message: leaves[2], Proof: proof},
			{Message: []byte{1}, Proof: merkle.Proof{}},
		},
	}
	buf, err := data.Encode()
	require.NoError(t, err)
	require.Equal(t, []byte("PNAU"), buf[:4])

	decoded, err := DecodeUpdateData(buf)
	require.NoError(t, err)
	require.Equal(t, data.Minor, decoded.Minor)
	require.Equal(t, data.TrailingHeader, decoded.TrailingHeader)
	require.Equal(t, data.VAA, decoded.VAA)
	require.Len(t, decoded.Updates, 2)
	require.Equal(t, data.Updates[0], decoded.Updates[0])
	require.Equal(t, data.Updates[1].Message, decoded.Updates[1].Message)
	require.Empty(t, decoded.Updates[1].Proof)

	for _, tc := range []struct {
		desc string
		buf  []byte
	}{
		{"empty", nil},
		{"magic", append([]byte("PNAV"), buf[4:]...)},
		{"major", append(append([]byte("PNAU"), 2), buf[5:]...)},
		{"truncated", buf[:len(buf)-1]},
		{"trailing", append(append([]byte{}, buf...), 0)},
		{"header only", buf[:8]},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := DecodeUpdateData(tc.buf)
			require.ErrorIs(t, err, vaa.ErrMalformedEnvelope)
		})
	}
}

func TestBatch(t *testing.T) {
	_, err := NewBatch(1, 1, nil)
	require.ErrorIs(t, err, merkle.ErrEmptyInput)

	leaves := [][]byte{dummyMessage(1).Encode(), dummyMessage(2).Encode()}
	batch, err := NewBatch(7, 100, leaves)
	require.NoError(t, err)
	require.Equal(t, &MerkleRootPayload{Slot: 7, RingSize: 100, Root: batch.Root()}, batch.Payload())

	updates, err := batch.Updates(leaves[1])
	require.NoError(t, err)
	require.Len(t, updates, 1)
	require.True(t, merkle.Verify(batch.Root(), leaves[1], updates[0].Proof))

	_, err = batch.Updates(dummyMessage(3).Encode())
	require.ErrorIs(t, err, merkle.ErrLeafNotFound)
}
