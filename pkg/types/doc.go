// Package types 定义 meshchat 的基础值类型
//
// 这是最底层的包，不依赖任何内部包，供各模块之间传递数据。
//
// 文件组织:
//   - ids.go       - PeerID, MessageID, Topic
//   - events.go    - 发现事件（PeerAppeared / PeerVanished）
//   - messaging.go - Envelope（传输层交付给上层的原始帧）
package types
