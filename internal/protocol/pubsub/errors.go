package pubsub

import "errors"

// 错误定义
var (
	// ErrInvalidTopic 主题为空或过长
	ErrInvalidTopic = errors.New("pubsub: invalid topic")

	// ErrNoPeers 发布时没有可扇出的节点
	//
	// 这是提示性错误：消息已签名并在本地处理，只是没有立即的接收方，也不会排队。
	ErrNoPeers = errors.New("pubsub: no peers for topic")

	// ErrAuthenticationFailure 入站消息签名无效或公钥与发送方不符
	ErrAuthenticationFailure = errors.New("pubsub: authentication failure")

	// ErrTransportFailure 向单个节点发送失败
	ErrTransportFailure = errors.New("pubsub: transport failure")

	// ErrMalformedMessage 帧无法解码
	ErrMalformedMessage = errors.New("pubsub: malformed message")

	// ErrMessageTooLarge 载荷超过 MaxMessageSize
	ErrMessageTooLarge = errors.New("pubsub: message too large")

	// ErrNilSender 未提供发送器
	ErrNilSender = errors.New("pubsub: sender is nil")
)
