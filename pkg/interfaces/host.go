package interfaces

import "github.com/dep2p/go-meshchat/pkg/types"

// Sender 向单个节点发送一帧数据
//
// Send 不阻塞调用方：帧被放入该节点的出站队列后立即返回。
// 地址未知或队列已满时返回错误，帧被丢弃，不重试。
type Sender interface {
	Send(peer types.PeerID, data []byte) error
}

// AddrBook 维护节点的拨号地址
type AddrBook interface {
	// AddAddr 记录节点地址（host:port），重复调用覆盖旧地址
	AddAddr(peer types.PeerID, addr string)

	// ForgetPeer 删除地址并关闭与该节点的会话
	ForgetPeer(peer types.PeerID)
}

// Host 网络主机：本地身份、监听地址、收发
type Host interface {
	Sender
	AddrBook

	// ID 本节点 PeerID
	ID() types.PeerID

	// ListenAddr 实际监听地址（启动后有效）
	ListenAddr() string

	// Inbound 入站帧通道，主机停止后关闭
	Inbound() <-chan types.Envelope
}
