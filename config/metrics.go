package config

// MetricsConfig 指标导出配置
type MetricsConfig struct {
	// ListenAddr /metrics 的 HTTP 监听地址，为空时不开启端口
	ListenAddr string `validate:"omitempty,hostname_port"`

	// Namespace 指标名前缀
	Namespace string `validate:"required"`
}

// DefaultMetricsConfig 返回默认配置（不导出）
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "meshchat",
	}
}

// Enabled 是否开启 HTTP 导出
func (c MetricsConfig) Enabled() bool {
	return c.ListenAddr != ""
}
