package types

// DiscoveryEventType 发现事件类型
type DiscoveryEventType int

const (
	// PeerAppeared 发现新节点（或过期后重新出现）
	PeerAppeared DiscoveryEventType = iota + 1
	// PeerVanished 节点的发现记录过期
	PeerVanished
)

// String 返回事件类型名
func (t DiscoveryEventType) String() string {
	switch t {
	case PeerAppeared:
		return "appeared"
	case PeerVanished:
		return "vanished"
	default:
		return "unknown"
	}
}

// DiscoveryEvent 发现层发出的事件
//
// Addr 仅在 PeerAppeared 时有效，格式为 host:port。
type DiscoveryEvent struct {
	Type DiscoveryEventType
	Peer PeerID
	Addr string
}

// Appeared 构造 PeerAppeared 事件
func Appeared(peer PeerID, addr string) DiscoveryEvent {
	return DiscoveryEvent{Type: PeerAppeared, Peer: peer, Addr: addr}
}

// Vanished 构造 PeerVanished 事件
func Vanished(peer PeerID) DiscoveryEvent {
	return DiscoveryEvent{Type: PeerVanished, Peer: peer}
}
