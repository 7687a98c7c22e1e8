package host

import (
	"time"

	hyamux "github.com/hashicorp/yamux"

	"github.com/dep2p/go-meshchat/config"
	"github.com/dep2p/go-meshchat/internal/core/muxer/yamux"
)

// Config 主机配置
type Config struct {
	// ListenAddr 监听地址
	ListenAddr string

	// DialTimeout 拨号超时
	DialTimeout time.Duration

	// HandshakeTimeout Noise 握手超时
	HandshakeTimeout time.Duration

	// IdleConnTimeout 会话空闲超时
	IdleConnTimeout time.Duration

	// OutboundQueueSize 每个对端的出站队列长度
	OutboundQueueSize int

	// InboundBufferSize 入站 Envelope 通道缓冲
	InboundBufferSize int

	// MaxFrameSize 单帧上限
	MaxFrameSize int

	// Yamux 会话参数
	Yamux *hyamux.Config
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	tc := config.DefaultTransportConfig()
	return &Config{
		ListenAddr:        tc.ListenAddr,
		DialTimeout:       tc.DialTimeout,
		HandshakeTimeout:  tc.HandshakeTimeout,
		IdleConnTimeout:   tc.IdleConnTimeout,
		OutboundQueueSize: tc.OutboundQueueSize,
		InboundBufferSize: 256,
		MaxFrameSize:      tc.MaxFrameSize,
		Yamux:             yamux.DefaultConfig(),
	}
}

// ConfigFromUnified 从统一配置创建主机配置
func ConfigFromUnified(cfg *config.Config) *Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	tc := cfg.Transport
	c.ListenAddr = tc.ListenAddr
	c.DialTimeout = tc.DialTimeout
	c.HandshakeTimeout = tc.HandshakeTimeout
	c.IdleConnTimeout = tc.IdleConnTimeout
	c.OutboundQueueSize = tc.OutboundQueueSize
	c.MaxFrameSize = tc.MaxFrameSize
	return c
}
