package pubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestDecodeRPC_MessageIDRecomputed(t *testing.T) {
	id := newTestIdentity(t)
	msg := newSignedMessage(id, "news", []byte("breaking"))
	msg.ID = "forged"

	rpc, err := DecodeRPC(EncodeRPC(&RPC{
		Subscriptions: []string{"news", "sports"},
		Publish:       []*Message{msg},
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{"news", "sports"}, rpc.Subscriptions)
	require.Len(t, rpc.Publish, 1)
	got := rpc.Publish[0]
	assert.Equal(t, ComputeMessageID([]byte("breaking")), got.ID)
	assert.Equal(t, id.ID(), got.From)
	assert.NoError(t, got.verify())
}

func TestDecodeRPC_Empty(t *testing.T) {
	rpc, err := DecodeRPC(nil)
	require.NoError(t, err)
	assert.Empty(t, rpc.Subscriptions)
	assert.Empty(t, rpc.Publish)
}

func TestDecodeRPC_Malformed(t *testing.T) {
	cases := map[string][]byte{
		"garbage tag":      {0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		"truncated length": protowire.AppendVarint(protowire.AppendTag(nil, fieldRPCPublish, protowire.BytesType), 50),
		"bad from": protowire.AppendBytes(
			protowire.AppendTag(nil, fieldRPCPublish, protowire.BytesType),
			protowire.AppendBytes(protowire.AppendTag(nil, fieldMsgFrom, protowire.BytesType), []byte{1, 2, 3}),
		),
		"missing from": protowire.AppendBytes(
			protowire.AppendTag(nil, fieldRPCPublish, protowire.BytesType),
			protowire.AppendBytes(protowire.AppendTag(nil, fieldMsgData, protowire.BytesType), []byte("x")),
		),
	}

	for name, frame := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeRPC(frame)
			assert.ErrorIs(t, err, ErrMalformedMessage)
		})
	}
}

func TestDecodeRPC_SkipsUnknownFields(t *testing.T) {
	frame := protowire.AppendTag(nil, 9, protowire.VarintType)
	frame = protowire.AppendVarint(frame, 42)
	frame = protowire.AppendTag(frame, fieldRPCSubscriptions, protowire.BytesType)
	frame = protowire.AppendString(frame, "kitchen")

	rpc, err := DecodeRPC(frame)
	require.NoError(t, err)
	assert.Equal(t, []string{"kitchen"}, rpc.Subscriptions)
}
