package chat

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-meshchat/internal/core/identity"
	"github.com/dep2p/go-meshchat/internal/protocol/pubsub"
	"github.com/dep2p/go-meshchat/pkg/types"
)

// fakeHost 记录发送的帧和地址簿操作
type fakeHost struct {
	id      types.PeerID
	inbound chan types.Envelope

	mu        sync.Mutex
	addrs     map[types.PeerID]string
	sent      map[types.PeerID][][]byte
	forgotten []types.PeerID
}

func newFakeHost(id types.PeerID) *fakeHost {
	return &fakeHost{
		id:      id,
		inbound: make(chan types.Envelope, 16),
		addrs:   make(map[types.PeerID]string),
		sent:    make(map[types.PeerID][][]byte),
	}
}

func (h *fakeHost) ID() types.PeerID { return h.id }
func (h *fakeHost) ListenAddr() string { return "127.0.0.1:4001" }
func (h *fakeHost) Inbound() <-chan types.Envelope { return h.inbound }

func (h *fakeHost) Send(peer types.PeerID, data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.addrs[peer]; !ok {
		return pubsub.ErrTransportFailure
	}
	h.sent[peer] = append(h.sent[peer], data)
	return nil
}

func (h *fakeHost) AddAddr(peer types.PeerID, addr string) {
	h.mu.Lock()
	h.addrs[peer] = addr
	h.mu.Unlock()
}

func (h *fakeHost) ForgetPeer(peer types.PeerID) {
	h.mu.Lock()
	delete(h.addrs, peer)
	h.forgotten = append(h.forgotten, peer)
	h.mu.Unlock()
}

func (h *fakeHost) framesTo(peer types.PeerID) [][]byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([][]byte(nil), h.sent[peer]...)
}

func (h *fakeHost) addr(peer types.PeerID) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	a, ok := h.addrs[peer]
	return a, ok
}

// fakeDiscovery 由测试推送事件
type fakeDiscovery struct {
	events chan types.DiscoveryEvent
}

func newFakeDiscovery() *fakeDiscovery {
	return &fakeDiscovery{events: make(chan types.DiscoveryEvent, 16)}
}

func (d *fakeDiscovery) Events() <-chan types.DiscoveryEvent { return d.events }

// syncBuffer 并发安全的输出缓冲
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

func (b *syncBuffer) Lines() []string {
	s := strings.TrimRight(b.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

type testNode struct {
	id      *identity.Identity
	host    *fakeHost
	engine  *pubsub.Engine
	out     *syncBuffer
	printer *Printer
}

func newTestNode(t *testing.T) *testNode {
	t.Helper()
	id, err := identity.Generate()
	require.NoError(t, err)

	h := newFakeHost(id.ID())
	e, err := pubsub.NewEngine(id, h)
	require.NoError(t, err)

	out := &syncBuffer{}
	return &testNode{id: id, host: h, engine: e, out: out, printer: NewPrinter(out)}
}

func newPeerID(t *testing.T) types.PeerID {
	t.Helper()
	id, err := identity.Generate()
	require.NoError(t, err)
	return id.ID()
}
