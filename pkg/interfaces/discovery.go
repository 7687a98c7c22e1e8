package interfaces

import "github.com/dep2p/go-meshchat/pkg/types"

// Discovery 本地网络节点发现
type Discovery interface {
	// Events 发现事件通道，服务停止后关闭
	Events() <-chan types.DiscoveryEvent
}
