package chat

import (
	"context"
	"errors"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-meshchat/internal/protocol/pubsub"
	"github.com/dep2p/go-meshchat/internal/util/logger"
	"github.com/dep2p/go-meshchat/pkg/interfaces"
	"github.com/dep2p/go-meshchat/pkg/types"
)

var log = logger.Logger("app/chat")

// Loop 单一事件循环
//
// Engine 只在 Run 所在的协程中被调用，每个事件处理完成后才取下一个。
type Loop struct {
	engine    *pubsub.Engine
	inbound   <-chan types.Envelope
	discovery <-chan types.DiscoveryEvent
	router    *Router
	bridge    *Bridge
	clock     clock.Clock
	heartbeat time.Duration
}

// LoopConfig Loop 依赖
type LoopConfig struct {
	Engine    *pubsub.Engine
	Host      interfaces.Host
	Discovery interfaces.Discovery
	Printer   *Printer
	Broadcast string
	Heartbeat time.Duration
	Clock     clock.Clock
}

// NewLoop 创建事件循环，并把 Engine 的本地投递接到 Printer
func NewLoop(cfg LoopConfig) *Loop {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = 10 * time.Second
	}
	cfg.Engine.OnDeliver(cfg.Printer.Message)

	return &Loop{
		engine:    cfg.Engine,
		inbound:   cfg.Host.Inbound(),
		discovery: cfg.Discovery.Events(),
		router:    NewRouter(cfg.Engine, cfg.Printer, cfg.Broadcast),
		bridge:    NewBridge(cfg.Engine, cfg.Host, cfg.Printer),
		clock:     cfg.Clock,
		heartbeat: cfg.Heartbeat,
	}
}

// Run 运行直到 ctx 取消或入站通道关闭
//
// lines 关闭（stdin EOF）后继续服务网络事件。
func (l *Loop) Run(ctx context.Context, lines <-chan string) error {
	ticker := l.clock.Ticker(l.heartbeat)
	defer ticker.Stop()

	inbound := l.inbound
	events := l.discovery

	for {
		select {
		case <-ctx.Done():
			return nil

		case line, ok := <-lines:
			if !ok {
				log.Debug("input closed")
				lines = nil
				continue
			}
			_ = l.router.Route(line)

		case env, ok := <-inbound:
			if !ok {
				return nil
			}
			l.handleEnvelope(env)

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			l.bridge.Handle(ev)

		case <-ticker.C:
			l.tick()
		}
	}
}

func (l *Loop) handleEnvelope(env types.Envelope) {
	err := l.engine.HandleFrame(env.From, env.Data)
	switch {
	case err == nil:
	case errors.Is(err, pubsub.ErrAuthenticationFailure):
		log.Warn("dropped unauthenticated message", "peer", env.From.ShortString(), "err", err)
	case errors.Is(err, pubsub.ErrMalformedMessage):
		log.Warn("dropped malformed frame", "peer", env.From.ShortString(), "err", err)
	default:
		log.Warn("dropped inbound frame", "peer", env.From.ShortString(), "err", err)
	}
}

func (l *Loop) tick() {
	l.engine.RefreshMetrics()
	s := l.engine.Stats()
	log.Debug("heartbeat",
		"subscriptions", s.Subscriptions,
		"known_peers", s.KnownPeers,
		"seen", s.SeenEntries,
		"published", s.Published,
		"delivered", s.Delivered,
		"forwarded", s.Forwarded,
		"duplicates", s.Duplicates)
}
