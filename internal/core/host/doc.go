// Package host 管理与对端的连接并收发 gossip 帧
//
// 出站：每个对端一个有界 FIFO 队列和一个写协程。Send 只负责入队，
// 从不阻塞调用方。写协程按需拨号（TCP -> Noise 发起方 -> yamux 客户端），
// 每一帧占用一条 yamux 流，失败时丢弃会话，下一帧重新拨号。
//
// 入站：接受 TCP 连接，完成 Noise 响应方握手得到经过认证的对端 PeerID，
// 建立 yamux 服务端会话，按顺序读取每条流上的一帧，产出 types.Envelope。
//
// 帧格式：uvarint 长度 + 数据，长度不超过 MaxFrameSize。
//
// 空闲超过 IdleConnTimeout 的会话由回收协程关闭。
package host
