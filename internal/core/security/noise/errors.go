package noise

import "errors"

var (
	// ErrHandshake 握手失败
	ErrHandshake = errors.New("noise: handshake failed")

	// ErrInvalidPayload 握手 payload 无法解析或签名无效
	ErrInvalidPayload = errors.New("noise: invalid handshake payload")

	// ErrPeerIDMismatch 对端身份与期望的 PeerID 不符
	ErrPeerIDMismatch = errors.New("noise: peer id mismatch")
)
