// Package logger 提供 meshchat 的分子系统日志
//
// 基于标准库 log/slog。每个包持有一个子系统 Logger：
//
//	var log = logger.Logger("pubsub")
//
//	log.Debug("message forwarded", "id", id, "peers", n)
//
// 级别与格式由环境变量控制，见 ConfigFromEnv。日志默认写到 stderr，
// stdout 留给聊天状态行。
package logger

import (
	"io"
	"log/slog"
	"sync"
)

type entry struct {
	logger *slog.Logger
	level  *slog.LevelVar
}

var (
	mu      sync.Mutex
	entries = make(map[string]*entry)
)

// Logger 返回子系统的 Logger，同名多次调用返回同一实例
func Logger(subsystem string) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if e, ok := entries[subsystem]; ok {
		return e.logger
	}

	cfg := ConfigFromEnv()
	lvl := new(slog.LevelVar)
	lvl.Set(cfg.LevelFor(subsystem))

	e := &entry{
		logger: slog.New(newLevelHandler(subsystem, lvl, cfg)),
		level:  lvl,
	}
	entries[subsystem] = e
	return e.logger
}

// SetLevel 运行时调整单个子系统的级别
func SetLevel(subsystem string, lvl slog.Level) {
	Logger(subsystem)

	mu.Lock()
	entries[subsystem].level.Set(lvl)
	mu.Unlock()
}

// SetGlobalLevel 调整所有已创建子系统的级别
func SetGlobalLevel(lvl slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	for _, e := range entries {
		e.level.Set(lvl)
	}
}

// SetOutput 重定向所有 Logger 的输出
func SetOutput(w io.Writer) {
	outputMu.Lock()
	output = w
	outputMu.Unlock()
}

// Discard 返回丢弃一切的 Logger，测试用
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}
