package mdns

import (
	"time"

	"github.com/dep2p/go-meshchat/config"
)

// Config mDNS 发现器配置
type Config struct {
	// ServiceTag 服务名，用于区分不同网络
	ServiceTag string

	// Domain mDNS 域
	Domain string

	// QueryInterval 查询间隔
	QueryInterval time.Duration

	// QueryTimeout 单次查询等待时间
	QueryTimeout time.Duration

	// PeerTTL 发现记录有效期
	PeerTTL time.Duration

	// Interface 指定网卡，空表示全部
	Interface string

	// DisableIPv6 禁用 IPv6
	DisableIPv6 bool

	// EventBuffer 事件通道缓冲
	EventBuffer int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return FromDiscoveryConfig(config.DefaultDiscoveryConfig())
}

// FromDiscoveryConfig 从统一配置转换
func FromDiscoveryConfig(dc config.DiscoveryConfig) Config {
	return Config{
		ServiceTag:    dc.ServiceTag,
		Domain:        dc.Domain,
		QueryInterval: dc.QueryInterval,
		QueryTimeout:  dc.QueryTimeout,
		PeerTTL:       dc.PeerTTL,
		Interface:     dc.Interface,
		DisableIPv6:   dc.DisableIPv6,
		EventBuffer:   64,
	}
}
