package chat

import (
	"github.com/dep2p/go-meshchat/internal/protocol/pubsub"
	"github.com/dep2p/go-meshchat/pkg/interfaces"
	"github.com/dep2p/go-meshchat/pkg/types"
)

// Bridge 把发现事件转成成员与地址更新
type Bridge struct {
	engine  *pubsub.Engine
	book    interfaces.AddrBook
	printer *Printer
}

// NewBridge 创建 Bridge
func NewBridge(engine *pubsub.Engine, book interfaces.AddrBook, printer *Printer) *Bridge {
	return &Bridge{engine: engine, book: book, printer: printer}
}

// Handle 处理一个发现事件
//
// appeared：登记地址，加入每个本地订阅的主题，并发送订阅通告。
// vanished：从所有主题移除，丢弃地址与会话。
func (b *Bridge) Handle(ev types.DiscoveryEvent) {
	switch ev.Type {
	case types.PeerAppeared:
		b.book.AddAddr(ev.Peer, ev.Addr)
		if b.engine.IsKnownPeer(ev.Peer) {
			log.Debug("peer address refreshed", "peer", ev.Peer.ShortString(), "addr", ev.Addr)
			return
		}
		b.engine.AddExplicitPeer(ev.Peer)
		b.printer.Discovered(ev.Peer)
		if err := b.engine.Announce(ev.Peer); err != nil {
			log.Warn("announce failed", "peer", ev.Peer.ShortString(), "err", err)
		}

	case types.PeerVanished:
		b.engine.RemoveExplicitPeer(ev.Peer)
		b.book.ForgetPeer(ev.Peer)
		b.printer.Expired(ev.Peer)

	default:
		log.Debug("unknown discovery event", "type", ev.Type)
	}
}
