package app

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-meshchat/internal/app/chat"
	"github.com/dep2p/go-meshchat/internal/core/discovery/mdns"
	"github.com/dep2p/go-meshchat/internal/core/host"
	"github.com/dep2p/go-meshchat/internal/core/identity"
	"github.com/dep2p/go-meshchat/internal/core/metrics"
	"github.com/dep2p/go-meshchat/internal/protocol/pubsub"
)

// 模块顺序即生命周期启动顺序：host 必须先于 mDNS 和 chat 启动。

// FoundationModules 身份与指标
func FoundationModules() fx.Option {
	return fx.Options(
		identity.Module(),
		metrics.Module,
	)
}

// TransportModules 连接管理
func TransportModules() fx.Option {
	return fx.Options(
		host.Module(),
	)
}

// DiscoveryModules 本地发现
func DiscoveryModules() fx.Option {
	return fx.Options(
		mdns.Module(),
	)
}

// ApplicationModules gossip 引擎与聊天应用
func ApplicationModules() fx.Option {
	return fx.Options(
		pubsub.Module(),
		chat.Module(),
	)
}
