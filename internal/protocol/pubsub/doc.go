// Package pubsub 实现主题化的 gossip 传播引擎
//
// Engine 负责：
//   - 本地订阅管理
//   - 发布：签名、计算内容寻址的 MessageID、标记已见、扇出
//   - 入站处理：验签、去重、本地投递、转发（排除直接发送方）
//   - 成员表维护：发现的节点按洪泛策略加入本地订阅的每个主题
//
// # 单一所有者
//
// Engine、成员表和去重缓存都不加锁，只能由事件循环串行调用。
// 去重缓存底层的 lru.Cache 自带锁，ContainsOrAdd 是原子的检查并标记。
//
// # 消息标识
//
// MessageID = hex(BLAKE3-256(载荷))，只取决于载荷字节，
// 不同发送者发布的相同载荷会被当作同一条消息。
//
// # 线格式
//
// 每帧是一个 RPC，使用 protobuf 线格式（protowire）手工编解码：
//
//	RPC     { repeated string subscriptions = 1; repeated Message publish = 2; }
//	Message { bytes from = 1; bytes data = 2; string topic = 3; bytes signature = 4; bytes key = 5; }
//
// MessageID 不上线，接收方按载荷重新计算。
package pubsub
