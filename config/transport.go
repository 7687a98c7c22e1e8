package config

import "time"

// TransportConfig 传输层配置
//
// 节点只监听一个 TCP 地址，连接经 Noise 加密后由 yamux 多路复用。
type TransportConfig struct {
	// ListenAddr 监听地址，端口 0 表示由系统分配
	ListenAddr string `validate:"required,tcp_addr"`

	// DialTimeout 拨号超时
	DialTimeout time.Duration `validate:"gt=0"`

	// HandshakeTimeout Noise 握手超时
	HandshakeTimeout time.Duration `validate:"gt=0"`

	// IdleConnTimeout 会话空闲多久后关闭
	IdleConnTimeout time.Duration `validate:"gt=0"`

	// OutboundQueueSize 每个节点的出站帧队列长度，队列满时丢弃新帧
	OutboundQueueSize int `validate:"min=1"`

	// MaxFrameSize 单帧最大字节数
	MaxFrameSize int `validate:"min=1024"`
}

// DefaultTransportConfig 返回默认传输配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		ListenAddr:        "0.0.0.0:0",
		DialTimeout:       5 * time.Second,
		HandshakeTimeout:  10 * time.Second,
		IdleConnTimeout:   60 * time.Second,
		OutboundQueueSize: 64,
		MaxFrameSize:      1 << 20,
	}
}
