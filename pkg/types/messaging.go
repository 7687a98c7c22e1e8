package types

// Envelope 传输层收到的一帧数据
//
// From 是经过安全握手认证的直接发送方，不一定是消息的原始作者。
type Envelope struct {
	From PeerID
	Data []byte
}
