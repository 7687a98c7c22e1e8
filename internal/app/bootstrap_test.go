package app

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/dep2p/go-meshchat/config"
	"github.com/dep2p/go-meshchat/internal/app/chat"
	"github.com/dep2p/go-meshchat/internal/core/host"
	"github.com/dep2p/go-meshchat/internal/protocol/pubsub"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Transport.ListenAddr = "127.0.0.1:0"
	cfg.Discovery.EnableMDNS = false
	cfg.PubSub.PersonalTopic = "topic-7"
	return cfg
}

func TestBootstrap_StartStop(t *testing.T) {
	in, inW := io.Pipe()
	defer inW.Close()
	out := &syncBuffer{}

	var (
		h      *host.Host
		engine *pubsub.Engine
	)
	b := NewBootstrap(
		WithConfig(testConfig()),
		WithIO(chat.IO{In: in, Out: out}),
		WithFxOptions(fx.Populate(&h, &engine)),
	)

	require.NoError(t, b.Start(context.Background()))
	require.NotNil(t, h)

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Topic: topic-7")
	}, 2*time.Second, 10*time.Millisecond)

	s := out.String()
	assert.Contains(t, s, "Local node is listening on "+h.ListenAddr())
	assert.Contains(t, s, "Local peer id: "+h.ID().String())

	// 用户输入经由事件循环到达引擎
	_, err := inW.Write([]byte("t:sub:news\n"))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "subscription success! topic: news")
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, b.Stop(context.Background()))
	assert.Equal(t, []string{"news", "topic-7", "topic-broadcast"}, engine.Subscriptions())
}

func TestBootstrap_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Transport.ListenAddr = ""

	b := NewBootstrap(WithConfig(cfg))
	err := b.Build()
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestBootstrap_BindFailure(t *testing.T) {
	first := NewBootstrap(
		WithConfig(testConfig()),
		WithIO(chat.IO{In: strings.NewReader(""), Out: io.Discard}),
	)
	var h *host.Host
	first.extra = append(first.extra, fx.Populate(&h))
	require.NoError(t, first.Start(context.Background()))
	defer first.Stop(context.Background())

	cfg := testConfig()
	cfg.Transport.ListenAddr = h.ListenAddr()
	second := NewBootstrap(
		WithConfig(cfg),
		WithIO(chat.IO{In: strings.NewReader(""), Out: io.Discard}),
	)
	assert.Error(t, second.Start(context.Background()))
}
