// Package app 提供 meshchat 应用编排层
//
// app 包负责：
// - fx 模块组装
// - 依赖注入协调
// - 生命周期管理
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-meshchat/config"
	"github.com/dep2p/go-meshchat/internal/app/chat"
	"github.com/dep2p/go-meshchat/internal/util/logger"
)

var log = logger.Logger("app")

const (
	defaultStartTimeout = 15 * time.Second
	defaultStopTimeout  = 10 * time.Second
)

// Bootstrap 应用引导程序
//
// Bootstrap 负责：
// - 校验配置
// - 组装 fx 模块
// - 管理应用生命周期
type Bootstrap struct {
	config   *config.Config
	io       chat.IO
	fxLogger *zap.Logger
	extra    []fx.Option

	startTimeout time.Duration
	stopTimeout  time.Duration

	fxApp *fx.App
}

// NewBootstrap 创建引导程序
func NewBootstrap(opts ...BootstrapOption) *Bootstrap {
	b := &Bootstrap{
		config:       config.NewConfig(),
		io:           chat.StdIO(),
		fxLogger:     zap.NewNop(),
		startTimeout: defaultStartTimeout,
		stopTimeout:  defaultStopTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build 组装 fx 应用（不启动）
func (b *Bootstrap) Build() error {
	if b.fxApp != nil {
		return errors.New("app: already built")
	}
	if err := b.config.Validate(); err != nil {
		return err
	}

	zl := b.fxLogger
	b.fxApp = fx.New(
		fx.Options(b.setupModules()...),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zl}
		}),
		fx.StartTimeout(b.startTimeout),
		fx.StopTimeout(b.stopTimeout),
	)
	if err := b.fxApp.Err(); err != nil {
		return fmt.Errorf("构建应用失败: %w", err)
	}
	return nil
}

// Start 构建并启动应用
func (b *Bootstrap) Start(ctx context.Context) error {
	if b.fxApp == nil {
		if err := b.Build(); err != nil {
			return err
		}
	}

	startCtx, cancel := context.WithTimeout(ctx, b.startTimeout)
	defer cancel()
	if err := b.fxApp.Start(startCtx); err != nil {
		return fmt.Errorf("启动应用失败: %w", err)
	}
	log.Debug("application started")
	return nil
}

// Stop 停止应用
func (b *Bootstrap) Stop(ctx context.Context) error {
	if b.fxApp == nil {
		return nil
	}

	stopCtx, cancel := context.WithTimeout(ctx, b.stopTimeout)
	defer cancel()
	return b.fxApp.Stop(stopCtx)
}

// Done 收到 SIGINT/SIGTERM 时可读
func (b *Bootstrap) Done() <-chan os.Signal {
	return b.fxApp.Done()
}

// setupModules 组装所有 fx 模块
func (b *Bootstrap) setupModules() []fx.Option {
	modules := []fx.Option{
		// 配置
		fx.Supply(b.config),
		fx.Supply(b.io),

		// 基础层: identity, metrics
		FoundationModules(),

		// 传输层: host
		TransportModules(),

		// 发现: mDNS
		DiscoveryModules(),

		// 应用层: pubsub, chat
		ApplicationModules(),
	}
	return append(modules, b.extra...)
}
