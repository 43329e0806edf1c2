// Package accumulator carries batches of price messages across chains. A producer
// commits the batch to a merkle root that guardians attest to; a receiver checks
// the attestation and the inclusion proof of every message it accepts.
package accumulator

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/attestlabs/go-attest/codec"
	"github.com/attestlabs/go-attest/common/types"
)

// ErrMalformedMessage is returned when a message can't be decoded.
var ErrMalformedMessage = errors.New("accumulator: malformed message")

// MessagePriceFeed tags a PriceFeedMessage.
const MessagePriceFeed uint8 = 0

const priceFeedMessageLen = 1 + types.Hash32Length + 8 + 8 + 4 + 8 + 8 + 8 + 8

// PriceFeedMessage is one feed price published in a batch.
type PriceFeedMessage struct {
	FeedID          types.Hash32
	Price           int64
	Conf            uint64
	Exponent        int32
	PublishTime     int64
	PrevPublishTime int64
	EMAPrice        int64
	EMAConf         uint64
}

// Encode returns the big-endian wire form, tag included.
func (m *PriceFeedMessage) Encode() []byte {
	buf := make([]byte, 0, priceFeedMessageLen)
	buf = append(buf, MessagePriceFeed)
	buf = append(buf, m.FeedID[:]...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(m.Price))
	buf = binary.BigEndian.AppendUint64(buf, m.Conf)
	buf = binary.BigEndian.AppendUint32(buf, uint32(m.Exponent))
	buf = binary.BigEndian.AppendUint64(buf, uint64(m.PublishTime))
	buf = binary.BigEndian.AppendUint64(buf, uint64(m.PrevPublishTime))
	buf = binary.BigEndian.AppendUint64(buf, uint64(m.EMAPrice))
	buf = binary.BigEndian.AppendUint64(buf, m.EMAConf)
	return buf
}

// DecodeMessage parses a tagged message. Only price feed messages are known.
func DecodeMessage(data []byte) (*PriceFeedMessage, error) {
	r := codec.NewReader(data)
	if tag := r.Uint8("message tag"); r.Err() == nil && tag != MessagePriceFeed {
		return nil, fmt.Errorf("%w: unknown tag %d", ErrMalformedMessage, tag)
	}
	m := &PriceFeedMessage{}
	r.Fixed("feed id", m.FeedID[:])
	m.Price = int64(r.Uint64("price"))
	m.Conf = r.Uint64("conf")
	m.Exponent = int32(r.Uint32("exponent"))
	m.PublishTime = int64(r.Uint64("publish time"))
	m.PrevPublishTime = int64(r.Uint64("previous publish time"))
	m.EMAPrice = int64(r.Uint64("ema price"))
	m.EMAConf = r.Uint64("ema conf")
	if err := r.Done(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	return m, nil
}

// Feed returns the stored form of the message for a batch at slot.
func (m *PriceFeedMessage) Feed(slot uint64) types.PriceFeed {
	return types.PriceFeed{
		ID:              m.FeedID,
		Price:           m.Price,
		Conf:            m.Conf,
		Exponent:        m.Exponent,
		PublishTime:     m.PublishTime,
		PrevPublishTime: m.PrevPublishTime,
		EMAPrice:        m.EMAPrice,
		EMAConf:         m.EMAConf,
		Slot:            slot,
	}
}
