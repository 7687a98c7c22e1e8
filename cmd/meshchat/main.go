// Package main 提供 meshchat 命令行入口
//
// 启动后订阅广播主题和一个随机的私有主题，通过 mDNS 自动发现同网段节点。
// 从 stdin 读取命令：
//
//	t:sub:<topic>          订阅主题
//	t:<topic>:<message>    向主题发布
//	<message>              向广播主题发布
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/dep2p/go-meshchat/config"
	"github.com/dep2p/go-meshchat/internal/app"
	"github.com/dep2p/go-meshchat/internal/util/logger"
)

var log = logger.Logger("cmd/meshchat")

// 构建时通过 -ldflags "-X main.Version=..." 注入
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	listenAddr     = flag.String("listen", "", "监听地址 (默认 0.0.0.0:0)")
	broadcastTopic = flag.String("broadcast-topic", "", "广播主题 (默认 topic-broadcast)")
	personalTopic  = flag.String("topic", "", "私有主题 (默认 topic-<随机数>)")
	serviceTag     = flag.String("service-tag", "", "mDNS 服务名 (默认 _meshchat._tcp)")
	noMDNS         = flag.Bool("no-mdns", false, "禁用 mDNS 发现")
	seenCapacity   = flag.Int("seen-capacity", 0, "去重缓存容量")
	metricsAddr    = flag.String("metrics-addr", "", "Prometheus /metrics 监听地址，为空不开启")
	logLevel       = flag.String("log-level", "", "全局日志级别 (debug/info/warn/error)")
	logFile        = flag.String("log", "", "日志文件路径，默认 stderr")
	fxVerbose      = flag.Bool("fx-verbose", false, "输出 fx 依赖注入日志")
	showVersion    = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Printf("meshchat %s (%s)\n", Version, GitCommit)
		return nil
	}

	closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := buildConfig()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	opts := []app.BootstrapOption{app.WithConfig(cfg)}
	if *fxVerbose {
		zl, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer func() { _ = zl.Sync() }()
		opts = append(opts, app.WithFxLogger(zl))
	}

	log.Info("starting meshchat", "version", Version, "commit", GitCommit)

	b := app.NewBootstrap(opts...)
	if err := b.Start(context.Background()); err != nil {
		return err
	}

	sig := <-b.Done()
	log.Info("shutting down", "signal", sig.String())
	return b.Stop(context.Background())
}

// buildConfig 默认值 < 环境变量 < 命令行参数
func buildConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if err := config.ApplyEnv(cfg, os.Getenv); err != nil {
		return nil, err
	}

	if isFlagSet("listen") {
		cfg.Transport.ListenAddr = *listenAddr
	}
	if isFlagSet("broadcast-topic") {
		cfg.PubSub.BroadcastTopic = *broadcastTopic
	}
	if isFlagSet("topic") {
		cfg.PubSub.PersonalTopic = *personalTopic
	}
	if isFlagSet("service-tag") {
		cfg.Discovery.ServiceTag = *serviceTag
	}
	if *noMDNS {
		cfg.Discovery.EnableMDNS = false
	}
	if isFlagSet("seen-capacity") {
		cfg.PubSub.SeenCapacity = *seenCapacity
	}
	if isFlagSet("metrics-addr") {
		cfg.Metrics.ListenAddr = *metricsAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging 应用 -log-level 与 -log
func setupLogging() (func(), error) {
	if *logLevel != "" {
		lvl, ok := logger.ParseLevel(*logLevel)
		if !ok {
			return nil, fmt.Errorf("未知日志级别 %q", *logLevel)
		}
		logger.SetGlobalLevel(lvl)
	}

	if *logFile == "" {
		return func() {}, nil
	}
	f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	logger.SetOutput(f)
	return func() {
		logger.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}

// isFlagSet 检查命令行参数是否被显式设置
func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
