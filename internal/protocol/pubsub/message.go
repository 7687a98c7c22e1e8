package pubsub

import (
	"encoding/hex"

	"google.golang.org/protobuf/encoding/protowire"
	"lukechampine.com/blake3"

	"github.com/dep2p/go-meshchat/internal/core/identity"
	"github.com/dep2p/go-meshchat/pkg/types"
)

// signPrefix 签名域分隔前缀
const signPrefix = "meshchat-pubsub:"

// Message 一条主题消息
type Message struct {
	// Topic 所属主题
	Topic string

	// Data 载荷
	Data []byte

	// From 原始作者
	From types.PeerID

	// Key 作者的 Ed25519 公钥，接收方用它验签并核对 From
	Key []byte

	// Signature 作者对 signingBytes 的签名
	Signature []byte

	// ID 内容寻址标识，由 Data 计算，不上线
	ID types.MessageID
}

// ComputeMessageID 计算载荷的 MessageID
func ComputeMessageID(data []byte) types.MessageID {
	sum := blake3.Sum256(data)
	return types.MessageID(hex.EncodeToString(sum[:]))
}

// newSignedMessage 构造并签名一条本地消息
func newSignedMessage(id *identity.Identity, topic string, data []byte) *Message {
	msg := &Message{
		Topic: topic,
		Data:  data,
		From:  id.ID(),
		Key:   id.PublicKey(),
		ID:    ComputeMessageID(data),
	}
	msg.Signature = id.Sign(signingBytes(msg))
	return msg
}

// signingBytes 签名覆盖的字节：前缀 + (from, data, topic) 的 protowire 编码
func signingBytes(m *Message) []byte {
	b := make([]byte, 0, len(signPrefix)+len(m.Data)+len(m.Topic)+48)
	b = append(b, signPrefix...)
	b = protowire.AppendTag(b, fieldMsgFrom, protowire.BytesType)
	b = protowire.AppendBytes(b, m.From[:])
	b = protowire.AppendTag(b, fieldMsgData, protowire.BytesType)
	b = protowire.AppendBytes(b, m.Data)
	b = protowire.AppendTag(b, fieldMsgTopic, protowire.BytesType)
	b = protowire.AppendString(b, m.Topic)
	return b
}

// verify 校验签名以及公钥与 From 的对应关系
func (m *Message) verify() error {
	return identity.VerifyFrom(m.From, m.Key, signingBytes(m), m.Signature)
}
