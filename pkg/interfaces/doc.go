// Package interfaces 定义 meshchat 各层之间的能力接口
//
// 上层只依赖这里的小接口，具体实现位于 internal/：
//   - host.go      - Sender / AddrBook / Host（internal/core/host）
//   - discovery.go - Discovery（internal/core/discovery/mdns）
package interfaces
