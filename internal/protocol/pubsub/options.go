package pubsub

import (
	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-meshchat/internal/core/metrics"
)

// Config 引擎配置
type Config struct {
	// SeenCapacity 去重缓存容量
	SeenCapacity int

	// MaxMessageSize 载荷上限（字节）
	MaxMessageSize int

	// MaxTopicLength 主题名上限（字节）
	MaxTopicLength int

	// Clock 时间源，测试中替换为 clock.NewMock()
	Clock clock.Clock

	// Metrics 可选的指标收集器
	Metrics *metrics.Metrics
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		SeenCapacity:   4096,
		MaxMessageSize: 64 << 10,
		MaxTopicLength: 256,
		Clock:          clock.New(),
	}
}

// Option 配置选项函数
type Option func(*Config)

// WithSeenCapacity 设置去重缓存容量
func WithSeenCapacity(n int) Option {
	return func(c *Config) {
		c.SeenCapacity = n
	}
}

// WithMaxMessageSize 设置载荷上限
func WithMaxMessageSize(size int) Option {
	return func(c *Config) {
		c.MaxMessageSize = size
	}
}

// WithMaxTopicLength 设置主题名上限
func WithMaxTopicLength(n int) Option {
	return func(c *Config) {
		c.MaxTopicLength = n
	}
}

// WithClock 替换时间源
func WithClock(clk clock.Clock) Option {
	return func(c *Config) {
		c.Clock = clk
	}
}

// WithMetrics 设置指标收集器
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Config) {
		c.Metrics = m
	}
}
