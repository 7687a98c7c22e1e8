package host

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-meshchat/config"
	"github.com/dep2p/go-meshchat/internal/core/identity"
	"github.com/dep2p/go-meshchat/internal/core/metrics"
	"github.com/dep2p/go-meshchat/pkg/interfaces"
)

// ModuleInput 模块输入依赖
type ModuleInput struct {
	fx.In

	Identity   *identity.Identity
	UnifiedCfg *config.Config   `optional:"true"`
	Metrics    *metrics.Metrics `optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Host      *Host
	Interface interfaces.Host
	Sender    interfaces.Sender
}

// ProvideHost 提供 Host 服务
func ProvideHost(in ModuleInput) (ModuleOutput, error) {
	h, err := New(in.Identity,
		WithConfig(ConfigFromUnified(in.UnifiedCfg)),
		WithMetrics(in.Metrics),
	)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Host: h, Interface: h, Sender: h}, nil
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("host",
		fx.Provide(ProvideHost),
		fx.Invoke(registerLifecycle),
	)
}

func registerLifecycle(lc fx.Lifecycle, h *Host) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return h.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			return h.Stop()
		},
	})
}
