package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-meshchat/pkg/types"
)

type runningLoop struct {
	lines chan string
	disc  *fakeDiscovery
	done  chan error
	stop  context.CancelFunc
}

func startLoop(t *testing.T, n *testNode, clk clock.Clock) *runningLoop {
	t.Helper()
	disc := newFakeDiscovery()
	loop := NewLoop(LoopConfig{
		Engine:    n.engine,
		Host:      n.host,
		Discovery: disc,
		Printer:   n.printer,
		Broadcast: "topic-broadcast",
		Heartbeat: time.Second,
		Clock:     clk,
	})

	ctx, cancel := context.WithCancel(context.Background())
	rl := &runningLoop{
		lines: make(chan string),
		disc:  disc,
		done:  make(chan error, 1),
		stop:  cancel,
	}
	go func() { rl.done <- loop.Run(ctx, rl.lines) }()
	t.Cleanup(cancel)
	return rl
}

func waitOutput(t *testing.T, n *testNode, substr string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return strings.Contains(n.out.String(), substr)
	}, 2*time.Second, 10*time.Millisecond, "missing %q in output:\n%s", substr, n.out.String())
}

func TestLoop_DeliversInboundMessage(t *testing.T) {
	a := newTestNode(t)
	b := newTestNode(t)
	require.NoError(t, a.engine.Subscribe("topic-broadcast"))
	require.NoError(t, b.engine.Subscribe("topic-broadcast"))

	rl := startLoop(t, a, clock.New())

	// b 把 a 当作已发现节点并发布
	b.host.AddAddr(a.id.ID(), a.host.ListenAddr())
	b.engine.AddExplicitPeer(a.id.ID())
	id, err := b.engine.Publish("topic-broadcast", []byte("hi there"))
	require.NoError(t, err)

	frames := b.host.framesTo(a.id.ID())
	require.Len(t, frames, 1)
	a.host.inbound <- types.Envelope{From: b.id.ID(), Data: frames[0]}

	waitOutput(t, a, "Got message: 'hi there' with id: "+string(id)+" from peer: "+b.id.ID().String())

	// 重复帧不再输出
	a.host.inbound <- types.Envelope{From: b.id.ID(), Data: frames[0]}
	rl.lines <- "t:sub:after"
	waitOutput(t, a, "subscription success! topic: after")
	assert.Equal(t, 1, strings.Count(a.out.String(), "Got message"))
}

func TestLoop_HandlesInputAndDiscovery(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.engine.Subscribe("topic-broadcast"))
	rl := startLoop(t, n, clock.New())

	peer := newPeerID(t)
	rl.disc.events <- types.Appeared(peer, "192.168.1.9:4001")
	waitOutput(t, n, "mDNS discovered a new peer: "+peer.String())

	rl.lines <- "t:topic-broadcast:hello"
	require.Eventually(t, func() bool {
		return len(n.host.framesTo(peer)) == 2 // 通告 + 消息
	}, 2*time.Second, 10*time.Millisecond)

	rl.lines <- "t:bad"
	waitOutput(t, n, "Invalid command:")

	rl.disc.events <- types.Vanished(peer)
	waitOutput(t, n, "mDNS discover peer has expired: "+peer.String())
}

func TestLoop_DropsMalformedFrame(t *testing.T) {
	n := newTestNode(t)
	rl := startLoop(t, n, clock.New())

	n.host.inbound <- types.Envelope{From: newPeerID(t), Data: []byte{0xff, 0xff, 0xff}}
	// 帧被取走后再送命令：lines 无缓冲，循环处理完该帧才会接收下一行
	require.Eventually(t, func() bool {
		return len(n.host.inbound) == 0
	}, 2*time.Second, 10*time.Millisecond)
	rl.lines <- "t:sub:still-alive"
	waitOutput(t, n, "subscription success! topic: still-alive")

	// 循环退出后才能读取 Engine
	rl.stop()
	require.NoError(t, <-rl.done)
	assert.Equal(t, uint64(1), n.engine.Stats().Rejected)
}

func TestLoop_OversizedInputLineDoesNotStopInput(t *testing.T) {
	n := newTestNode(t)
	rl := startLoop(t, n, clock.New())

	long := strings.Repeat("x", 2<<20)
	go func() {
		for l := range ReadLines(context.Background(), strings.NewReader(long+"\nt:sub:after\n")) {
			rl.lines <- l
		}
	}()

	waitOutput(t, n, "Publish error:")
	waitOutput(t, n, "subscription success! topic: after")
}

func TestLoop_KeepsRunningAfterInputEOF(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.engine.Subscribe("topic-broadcast"))
	rl := startLoop(t, n, clock.New())

	close(rl.lines)

	peer := newPeerID(t)
	rl.disc.events <- types.Appeared(peer, "192.168.1.9:4001")
	waitOutput(t, n, "mDNS discovered a new peer")

	select {
	case err := <-rl.done:
		t.Fatalf("loop exited early: %v", err)
	default:
	}
}

func TestLoop_ExitsOnInboundClose(t *testing.T) {
	n := newTestNode(t)
	rl := startLoop(t, n, clock.New())

	close(n.host.inbound)
	select {
	case err := <-rl.done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit")
	}
}

func TestLoop_ExitsOnCancel(t *testing.T) {
	n := newTestNode(t)
	rl := startLoop(t, n, clock.New())

	rl.stop()
	select {
	case err := <-rl.done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit")
	}
}

func TestLoop_Heartbeat(t *testing.T) {
	mock := clock.NewMock()
	n := newTestNode(t)
	rl := startLoop(t, n, mock)

	// 心跳不影响后续事件处理
	mock.Add(3 * time.Second)
	rl.lines <- "t:sub:tick"
	waitOutput(t, n, "subscription success! topic: tick")
}
