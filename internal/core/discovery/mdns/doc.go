// Package mdns 提供基于 mDNS 的局域网节点发现
//
// 每个节点以随机实例名广播服务记录，TXT 中携带 PeerID；
// 同时按 QueryInterval 周期查询同一服务名。
// 新节点或地址变化产生 PeerAppeared 事件；
// 超过 PeerTTL 没有再被查询到的节点产生 PeerVanished 事件。
package mdns
