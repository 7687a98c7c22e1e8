package mdns

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-meshchat/config"
	"github.com/dep2p/go-meshchat/internal/core/host"
	"github.com/dep2p/go-meshchat/pkg/interfaces"
)

// ModuleInput 模块输入
type ModuleInput struct {
	fx.In

	Host       *host.Host
	UnifiedCfg *config.Config `optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Discoverer *Discoverer
	Discovery  interfaces.Discovery
}

// ProvideDiscoverer 提供 mDNS 发现器
func ProvideDiscoverer(in ModuleInput) ModuleOutput {
	dc := config.DefaultDiscoveryConfig()
	if in.UnifiedCfg != nil {
		dc = in.UnifiedCfg.Discovery
	}
	d := NewDiscoverer(FromDiscoveryConfig(dc), in.Host.ID())
	return ModuleOutput{Discoverer: d, Discovery: d}
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("discovery/mdns",
		fx.Provide(ProvideDiscoverer),
		fx.Invoke(registerLifecycle),
	)
}

type lifecycleInput struct {
	fx.In

	LC         fx.Lifecycle
	Host       *host.Host
	Discoverer *Discoverer
	UnifiedCfg *config.Config `optional:"true"`
}

func registerLifecycle(in lifecycleInput) {
	enabled := in.UnifiedCfg == nil || in.UnifiedCfg.Discovery.EnableMDNS

	in.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !enabled {
				log.Info("mDNS 已禁用")
				return nil
			}
			// host 先于本模块启动，此时端口已确定
			return in.Discoverer.Start(ctx, in.Host.ListenPort())
		},
		OnStop: func(_ context.Context) error {
			return in.Discoverer.Stop()
		},
	})
}
