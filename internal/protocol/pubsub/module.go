package pubsub

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-meshchat/config"
	"github.com/dep2p/go-meshchat/internal/core/identity"
	"github.com/dep2p/go-meshchat/internal/core/metrics"
	"github.com/dep2p/go-meshchat/pkg/interfaces"
)

// Params 模块依赖
type Params struct {
	fx.In

	Identity *identity.Identity
	Sender   interfaces.Sender
	Config   *config.Config   `optional:"true"`
	Metrics  *metrics.Metrics `optional:"true"`
}

// ProvideEngine 从统一配置创建引擎
func ProvideEngine(p Params) (*Engine, error) {
	opts := []Option{WithMetrics(p.Metrics)}
	if p.Config != nil {
		opts = append(opts,
			WithSeenCapacity(p.Config.PubSub.SeenCapacity),
			WithMaxMessageSize(p.Config.PubSub.MaxMessageSize),
			WithMaxTopicLength(p.Config.PubSub.MaxTopicLength),
		)
	}
	return NewEngine(p.Identity, p.Sender, opts...)
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("pubsub",
		fx.Provide(ProvideEngine),
	)
}
