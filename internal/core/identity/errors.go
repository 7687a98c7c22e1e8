package identity

import "errors"

var (
	// ErrKeyGeneration 密钥生成失败（随机源不可用）
	ErrKeyGeneration = errors.New("identity: key generation failed")

	// ErrInvalidPublicKey 公钥长度错误
	ErrInvalidPublicKey = errors.New("identity: invalid public key")

	// ErrInvalidSignature 签名校验失败
	ErrInvalidSignature = errors.New("identity: invalid signature")

	// ErrPeerIDMismatch 公钥派生出的 PeerID 与声明的不一致
	ErrPeerIDMismatch = errors.New("identity: public key does not match peer id")
)
