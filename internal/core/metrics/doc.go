// Package metrics 收集 gossip 引擎和主机层的运行指标
//
// 指标注册在私有的 prometheus.Registry 上，不污染全局默认注册表。
// 只有配置了 Metrics.ListenAddr 时才会开放 HTTP /metrics 端口。
//
// 所有记录方法对 nil *Metrics 安全，调用方无需判空：
//
//	var m *metrics.Metrics // 未启用
//	m.MessagePublished()   // no-op
package metrics
