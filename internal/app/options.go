package app

import (
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/dep2p/go-meshchat/config"
	"github.com/dep2p/go-meshchat/internal/app/chat"
)

// BootstrapOption Bootstrap 配置选项
type BootstrapOption func(*Bootstrap)

// WithConfig 设置配置
func WithConfig(cfg *config.Config) BootstrapOption {
	return func(b *Bootstrap) {
		if cfg != nil {
			b.config = cfg
		}
	}
}

// WithIO 替换用户输入输出（测试用）
func WithIO(io chat.IO) BootstrapOption {
	return func(b *Bootstrap) {
		b.io = io
	}
}

// WithFxLogger 设置 fx 事件日志，默认丢弃
func WithFxLogger(l *zap.Logger) BootstrapOption {
	return func(b *Bootstrap) {
		if l != nil {
			b.fxLogger = l
		}
	}
}

// WithTimeouts 设置启动与停止超时
func WithTimeouts(start, stop time.Duration) BootstrapOption {
	return func(b *Bootstrap) {
		if start > 0 {
			b.startTimeout = start
		}
		if stop > 0 {
			b.stopTimeout = stop
		}
	}
}

// WithFxOptions 追加 fx 选项（测试中用于 fx.Populate）
func WithFxOptions(opts ...fx.Option) BootstrapOption {
	return func(b *Bootstrap) {
		b.extra = append(b.extra, opts...)
	}
}
