// Package yamux 在加密连接上提供 yamux 多路复用会话
//
// 主机为每个对端维持一个会话，每一帧 gossip 数据使用一条独立的流。
package yamux

import (
	"io"
	"time"

	"github.com/hashicorp/yamux"
)

// DefaultConfig 返回默认 yamux 配置
func DefaultConfig() *yamux.Config {
	cfg := yamux.DefaultConfig()
	cfg.AcceptBacklog = 256
	cfg.EnableKeepAlive = true
	cfg.KeepAliveInterval = 30 * time.Second
	cfg.ConnectionWriteTimeout = 10 * time.Second
	cfg.MaxStreamWindowSize = 256 * 1024
	cfg.StreamOpenTimeout = 75 * time.Second
	cfg.StreamCloseTimeout = 5 * time.Minute
	cfg.LogOutput = io.Discard
	return cfg
}
