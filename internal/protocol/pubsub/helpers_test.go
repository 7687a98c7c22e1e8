package pubsub

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-meshchat/internal/core/identity"
	"github.com/dep2p/go-meshchat/pkg/types"
)

var errUnreachable = errors.New("peer unreachable")

// recordingSender 记录每个节点收到的帧
type recordingSender struct {
	frames map[types.PeerID][][]byte
	fail   map[types.PeerID]bool
}

func newRecordingSender() *recordingSender {
	return &recordingSender{
		frames: make(map[types.PeerID][][]byte),
		fail:   make(map[types.PeerID]bool),
	}
}

func (s *recordingSender) Send(peer types.PeerID, data []byte) error {
	if s.fail[peer] {
		return errUnreachable
	}
	s.frames[peer] = append(s.frames[peer], data)
	return nil
}

func (s *recordingSender) total() int {
	n := 0
	for _, f := range s.frames {
		n += len(f)
	}
	return n
}

// delivered 收集本地投递的消息
type delivered struct {
	msgs []*Message
}

func (d *delivered) handler() DeliveryHandler {
	return func(msg *Message) {
		d.msgs = append(d.msgs, msg)
	}
}

func (d *delivered) payloads() []string {
	out := make([]string, 0, len(d.msgs))
	for _, m := range d.msgs {
		out = append(out, string(m.Data))
	}
	return out
}

func newTestIdentity(t *testing.T) *identity.Identity {
	t.Helper()
	id, err := identity.Generate()
	require.NoError(t, err)
	return id
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *recordingSender, *delivered) {
	t.Helper()
	sender := newRecordingSender()
	e, err := NewEngine(newTestIdentity(t), sender, opts...)
	require.NoError(t, err)
	d := &delivered{}
	e.OnDeliver(d.handler())
	return e, sender, d
}

func testPeer(b byte) types.PeerID {
	var id types.PeerID
	id[0] = b
	id[31] = b
	return id
}

// decodeSingle 解码只包含一条消息的帧
func decodeSingle(t *testing.T, frame []byte) *Message {
	t.Helper()
	rpc, err := DecodeRPC(frame)
	require.NoError(t, err)
	require.Len(t, rpc.Publish, 1)
	return rpc.Publish[0]
}

// ============================================================================
//                              内存网络
// ============================================================================

type pendingFrame struct {
	from, to types.PeerID
	data     []byte
}

// memNet 把若干引擎连成一个内存网络
//
// Send 只入队，Drain 按 FIFO 逐帧投递，模拟各节点事件循环串行处理。
type memNet struct {
	t       *testing.T
	engines map[types.PeerID]*Engine
	out     map[types.PeerID]*delivered
	queue   []pendingFrame
	sent    int
}

type memSender struct {
	net  *memNet
	self types.PeerID
}

func (s *memSender) Send(peer types.PeerID, data []byte) error {
	if _, ok := s.net.engines[peer]; !ok {
		return errUnreachable
	}
	s.net.queue = append(s.net.queue, pendingFrame{from: s.self, to: peer, data: data})
	s.net.sent++
	return nil
}

func newMemNet(t *testing.T) *memNet {
	return &memNet{
		t:       t,
		engines: make(map[types.PeerID]*Engine),
		out:     make(map[types.PeerID]*delivered),
	}
}

func (n *memNet) addNode() (*Engine, *delivered) {
	n.t.Helper()
	id := newTestIdentity(n.t)
	e, err := NewEngine(id, &memSender{net: n, self: id.ID()})
	require.NoError(n.t, err)
	d := &delivered{}
	e.OnDeliver(d.handler())
	n.engines[id.ID()] = e
	n.out[id.ID()] = d
	return e, d
}

// discoverAll 让每对节点互相“发现”
func (n *memNet) discoverAll() {
	for a, ea := range n.engines {
		for b := range n.engines {
			if a != b {
				ea.AddExplicitPeer(b)
			}
		}
	}
}

func (n *memNet) drain() {
	n.t.Helper()
	for steps := 0; len(n.queue) > 0; steps++ {
		require.Less(n.t, steps, 10000, "gossip did not converge")
		f := n.queue[0]
		n.queue = n.queue[1:]
		require.NoError(n.t, n.engines[f.to].HandleFrame(f.from, f.data))
	}
}
