// Package tcp 提供原始 TCP 监听与拨号
//
// 返回的连接还需经过 Noise 握手和 yamux 会话才能承载 gossip 帧。
package tcp
