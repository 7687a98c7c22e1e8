package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

// 环境变量名
const (
	EnvLogLevel     = "MESHCHAT_LOG_LEVEL"
	EnvLogFormat    = "MESHCHAT_LOG_FORMAT"
	EnvLogAddSource = "MESHCHAT_LOG_ADD_SOURCE"
)

// Format 日志输出格式
type Format int

const (
	// FormatText logfmt 风格文本（默认）
	FormatText Format = iota
	// FormatJSON 每行一个 JSON 对象
	FormatJSON
)

// Config 日志配置
type Config struct {
	// DefaultLevel 未单独配置的子系统使用的级别
	DefaultLevel slog.Level

	// Levels 子系统 -> 级别
	Levels map[string]slog.Level

	// Format 输出格式
	Format Format

	// AddSource 是否输出源码位置
	AddSource bool
}

// LevelFor 返回子系统的生效级别
func (c *Config) LevelFor(subsystem string) slog.Level {
	if lvl, ok := c.Levels[subsystem]; ok {
		return lvl
	}
	return c.DefaultLevel
}

var (
	envConfig     *Config
	envConfigOnce sync.Once
)

// ConfigFromEnv 解析环境变量得到的配置（进程内只解析一次）
//
//	MESHCHAT_LOG_LEVEL=pubsub=debug,host=warn,info
//	MESHCHAT_LOG_FORMAT=json
//	MESHCHAT_LOG_ADD_SOURCE=true
func ConfigFromEnv() *Config {
	envConfigOnce.Do(func() {
		envConfig = ParseConfig(
			os.Getenv(EnvLogLevel),
			os.Getenv(EnvLogFormat),
			os.Getenv(EnvLogAddSource),
		)
	})
	return envConfig
}

// ParseConfig 从三个原始字符串构造配置，空字符串取默认值
func ParseConfig(levels, format, addSource string) *Config {
	cfg := &Config{
		DefaultLevel: slog.LevelInfo,
		Levels:       make(map[string]slog.Level),
		Format:       FormatText,
	}

	for _, part := range strings.Split(levels, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, lvlName, scoped := strings.Cut(part, "=")
		if !scoped {
			if lvl, ok := ParseLevel(part); ok {
				cfg.DefaultLevel = lvl
			}
			continue
		}
		if lvl, ok := ParseLevel(strings.TrimSpace(lvlName)); ok {
			cfg.Levels[strings.TrimSpace(name)] = lvl
		}
	}

	if strings.EqualFold(strings.TrimSpace(format), "json") {
		cfg.Format = FormatJSON
	}

	switch strings.ToLower(strings.TrimSpace(addSource)) {
	case "1", "true", "yes":
		cfg.AddSource = true
	}

	return cfg
}

// ParseLevel 解析级别名称（debug/info/warn/error）
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// resetEnvConfig 仅供测试使用
func resetEnvConfig() {
	envConfigOnce = sync.Once{}
	envConfig = nil
}
