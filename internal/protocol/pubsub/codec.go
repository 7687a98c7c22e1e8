package pubsub

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-meshchat/pkg/types"
)

// 字段编号
const (
	fieldRPCSubscriptions protowire.Number = 1
	fieldRPCPublish       protowire.Number = 2

	fieldMsgFrom      protowire.Number = 1
	fieldMsgData      protowire.Number = 2
	fieldMsgTopic     protowire.Number = 3
	fieldMsgSignature protowire.Number = 4
	fieldMsgKey       protowire.Number = 5
)

// RPC 一帧的内容：订阅通告和/或若干条消息
type RPC struct {
	Subscriptions []string
	Publish       []*Message
}

// EncodeRPC 编码 RPC
func EncodeRPC(rpc *RPC) []byte {
	var b []byte
	for _, topic := range rpc.Subscriptions {
		b = protowire.AppendTag(b, fieldRPCSubscriptions, protowire.BytesType)
		b = protowire.AppendString(b, topic)
	}
	for _, msg := range rpc.Publish {
		b = protowire.AppendTag(b, fieldRPCPublish, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeMessage(msg))
	}
	return b
}

func encodeMessage(m *Message) []byte {
	b := make([]byte, 0, len(m.Data)+len(m.Topic)+len(m.Signature)+len(m.Key)+48)
	b = protowire.AppendTag(b, fieldMsgFrom, protowire.BytesType)
	b = protowire.AppendBytes(b, m.From[:])
	b = protowire.AppendTag(b, fieldMsgData, protowire.BytesType)
	b = protowire.AppendBytes(b, m.Data)
	b = protowire.AppendTag(b, fieldMsgTopic, protowire.BytesType)
	b = protowire.AppendString(b, m.Topic)
	b = protowire.AppendTag(b, fieldMsgSignature, protowire.BytesType)
	b = protowire.AppendBytes(b, m.Signature)
	b = protowire.AppendTag(b, fieldMsgKey, protowire.BytesType)
	b = protowire.AppendBytes(b, m.Key)
	return b
}

// DecodeRPC 解码一帧，失败返回 ErrMalformedMessage
//
// 每条消息的 ID 由载荷重新计算。未知字段被跳过。
func DecodeRPC(b []byte) (*RPC, error) {
	rpc := &RPC{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, malformed(protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldRPCSubscriptions && typ == protowire.BytesType:
			topic, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, malformed(protowire.ParseError(n))
			}
			rpc.Subscriptions = append(rpc.Subscriptions, topic)
			b = b[n:]

		case num == fieldRPCPublish && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, malformed(protowire.ParseError(n))
			}
			msg, err := decodeMessage(raw)
			if err != nil {
				return nil, err
			}
			rpc.Publish = append(rpc.Publish, msg)
			b = b[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, malformed(protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return rpc, nil
}

func decodeMessage(b []byte) (*Message, error) {
	msg := &Message{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, malformed(protowire.ParseError(n))
		}
		b = b[n:]

		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, malformed(protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, malformed(protowire.ParseError(n))
		}
		b = b[n:]

		switch num {
		case fieldMsgFrom:
			from, err := types.PeerIDFromBytes(v)
			if err != nil {
				return nil, malformed(err)
			}
			msg.From = from
		case fieldMsgData:
			msg.Data = v
		case fieldMsgTopic:
			msg.Topic = string(v)
		case fieldMsgSignature:
			msg.Signature = v
		case fieldMsgKey:
			msg.Key = v
		}
	}

	if msg.From.IsEmpty() {
		return nil, malformed(types.ErrInvalidPeerID)
	}
	msg.ID = ComputeMessageID(msg.Data)
	return msg, nil
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
}
