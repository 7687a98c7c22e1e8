package host

import (
	"errors"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-meshchat/internal/core/metrics"
)

// Option 构造选项
type Option func(*Host) error

// WithConfig 替换配置
func WithConfig(cfg *Config) Option {
	return func(h *Host) error {
		if cfg == nil {
			return errors.New("host: nil config")
		}
		h.config = cfg
		return nil
	}
}

// WithClock 替换时间源（测试用）
func WithClock(clk clock.Clock) Option {
	return func(h *Host) error {
		h.clock = clk
		return nil
	}
}

// WithMetrics 设置指标收集器
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Host) error {
		h.metrics = m
		return nil
	}
}
