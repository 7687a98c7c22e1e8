package chat

import (
	"context"
	"io"
	"os"

	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-meshchat/config"
	"github.com/dep2p/go-meshchat/internal/protocol/pubsub"
	"github.com/dep2p/go-meshchat/pkg/interfaces"
)

// IO 用户输入输出
type IO struct {
	In  io.Reader
	Out io.Writer
}

// StdIO 返回 stdin/stdout
func StdIO() IO {
	return IO{In: os.Stdin, Out: os.Stdout}
}

// Params 模块依赖
type Params struct {
	fx.In

	LC         fx.Lifecycle
	Engine     *pubsub.Engine
	Host       interfaces.Host
	Discovery  interfaces.Discovery
	IO         IO             `optional:"true"`
	UnifiedCfg *config.Config `optional:"true"`
}

// Module 返回 fx 模块，必须放在 host 与发现模块之后
func Module() fx.Option {
	return fx.Module("app/chat",
		fx.Invoke(register),
	)
}

func register(p Params) {
	cfg := p.UnifiedCfg
	if cfg == nil {
		cfg = config.NewConfig()
	}
	stdio := p.IO
	if stdio.In == nil || stdio.Out == nil {
		stdio = StdIO()
	}

	printer := NewPrinter(stdio.Out)
	loop := NewLoop(LoopConfig{
		Engine:    p.Engine,
		Host:      p.Host,
		Discovery: p.Discovery,
		Printer:   printer,
		Broadcast: cfg.PubSub.BroadcastTopic,
		Heartbeat: cfg.PubSub.HeartbeatInterval,
	})

	personal := cfg.PubSub.PersonalTopic
	if personal == "" {
		personal = config.RandomPersonalTopic()
	}

	var (
		cancel context.CancelFunc
		group  errgroup.Group
	)

	p.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if err := p.Engine.Subscribe(cfg.PubSub.BroadcastTopic); err != nil {
				return err
			}
			if err := p.Engine.Subscribe(personal); err != nil {
				return err
			}

			printer.Listening(p.Host.ListenAddr())
			printer.LocalPeer(p.Host.ID())
			printer.Topic(personal)

			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			lines := ReadLines(ctx, stdio.In)
			group.Go(func() error {
				return loop.Run(ctx, lines)
			})
			return nil
		},
		OnStop: func(_ context.Context) error {
			if cancel != nil {
				cancel()
			}
			return group.Wait()
		},
	})
}
