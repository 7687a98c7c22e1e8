package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// 环境变量名（均带 EnvPrefix 前缀）
const (
	EnvPrefix = "MESHCHAT_"

	EnvListenAddr     = "LISTEN_ADDR"
	EnvServiceTag     = "SERVICE_TAG"
	EnvEnableMDNS     = "ENABLE_MDNS"
	EnvBroadcastTopic = "BROADCAST_TOPIC"
	EnvPersonalTopic  = "TOPIC"
	EnvSeenCapacity   = "SEEN_CAPACITY"
	EnvIdleTimeout    = "IDLE_TIMEOUT"
	EnvMetricsAddr    = "METRICS_ADDR"
)

// ApplyEnv 用环境变量覆盖配置
//
// 优先级低于命令行参数。getenv 通常是 os.Getenv。
// 无法解析的值返回错误，已应用的覆盖保留。
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	get := func(key string) string {
		return strings.TrimSpace(getenv(EnvPrefix + key))
	}

	if v := get(EnvListenAddr); v != "" {
		cfg.Transport.ListenAddr = v
	}
	if v := get(EnvServiceTag); v != "" {
		cfg.Discovery.ServiceTag = v
	}
	if v := get(EnvEnableMDNS); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return envError(EnvEnableMDNS, v, err)
		}
		cfg.Discovery.EnableMDNS = b
	}
	if v := get(EnvBroadcastTopic); v != "" {
		cfg.PubSub.BroadcastTopic = v
	}
	if v := get(EnvPersonalTopic); v != "" {
		cfg.PubSub.PersonalTopic = v
	}
	if v := get(EnvSeenCapacity); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError(EnvSeenCapacity, v, err)
		}
		cfg.PubSub.SeenCapacity = n
	}
	if v := get(EnvIdleTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError(EnvIdleTimeout, v, err)
		}
		cfg.Transport.IdleConnTimeout = d
	}
	if v := get(EnvMetricsAddr); v != "" {
		cfg.Metrics.ListenAddr = v
	}
	return nil
}

func envError(key, value string, err error) error {
	return fmt.Errorf("%w: %s%s=%q: %v", ErrInvalidConfig, EnvPrefix, key, value, err)
}

// parseBool 额外接受 yes/no/on/off
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(s)
}
