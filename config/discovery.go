package config

import "time"

// DiscoveryConfig 本地网络发现配置
//
// 节点通过 mDNS 广播自己并周期性查询同网段的其他节点。
// 在 PeerTTL 内没有被重新查询到的节点视为离开。
type DiscoveryConfig struct {
	// EnableMDNS 是否启用 mDNS
	EnableMDNS bool

	// ServiceTag mDNS 服务名
	ServiceTag string `validate:"required_if=EnableMDNS true"`

	// Domain mDNS 域
	Domain string `validate:"required_if=EnableMDNS true"`

	// QueryInterval 查询间隔
	QueryInterval time.Duration `validate:"gt=0"`

	// QueryTimeout 单次查询等待响应的时间，必须小于 QueryInterval
	QueryTimeout time.Duration `validate:"gt=0,ltfield=QueryInterval"`

	// PeerTTL 发现记录有效期，必须大于 QueryInterval
	PeerTTL time.Duration `validate:"gtfield=QueryInterval"`

	// Interface 指定多播网卡名，空表示系统默认
	Interface string

	// DisableIPv6 只使用 IPv4 多播
	DisableIPv6 bool
}

// DefaultDiscoveryConfig 返回默认发现配置
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		EnableMDNS:    true,
		ServiceTag:    "_meshchat._tcp",
		Domain:        "local.",
		QueryInterval: 10 * time.Second,
		QueryTimeout:  2 * time.Second,
		PeerTTL:       45 * time.Second,
		DisableIPv6:   true,
	}
}
