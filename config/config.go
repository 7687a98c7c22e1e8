// Package config 提供 meshchat 的进程配置
//
// 配置只来自默认值、环境变量和命令行参数，不读写配置文件。
// 每个组件的子配置定义在独立文件中：
//   - transport.go - 监听地址、拨号/握手超时、出站队列
//   - discovery.go - mDNS 本地发现
//   - messaging.go - 主题、去重容量、消息大小、心跳
//   - metrics.go   - Prometheus 指标导出
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Transport.ListenAddr = "0.0.0.0:4001"
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config

// Config 完整配置
type Config struct {
	// Transport 传输层配置
	Transport TransportConfig

	// Discovery 节点发现配置
	Discovery DiscoveryConfig

	// PubSub 发布订阅配置
	PubSub PubSubConfig

	// Metrics 指标导出配置
	Metrics MetricsConfig
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Transport: DefaultTransportConfig(),
		Discovery: DefaultDiscoveryConfig(),
		PubSub:    DefaultPubSubConfig(),
		Metrics:   DefaultMetricsConfig(),
	}
}
