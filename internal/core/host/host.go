package host

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-meshchat/internal/core/identity"
	"github.com/dep2p/go-meshchat/internal/core/metrics"
	"github.com/dep2p/go-meshchat/internal/core/muxer/yamux"
	"github.com/dep2p/go-meshchat/internal/core/security/noise"
	"github.com/dep2p/go-meshchat/internal/core/transport/tcp"
	"github.com/dep2p/go-meshchat/internal/util/logger"
	"github.com/dep2p/go-meshchat/pkg/interfaces"
	"github.com/dep2p/go-meshchat/pkg/types"
)

var log = logger.Logger("core/host")

var _ interfaces.Host = (*Host)(nil)

// Host 点对点主机
type Host struct {
	id      *identity.Identity
	config  *Config
	clock   clock.Clock
	metrics *metrics.Metrics

	tcp   *tcp.Transport
	noise *noise.Transport

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	listener   net.Listener
	listenAddr string

	addrs *addrBook

	mu       sync.Mutex
	outbound map[types.PeerID]*outboundPeer
	inbound  map[*yamux.Session]struct{}

	envelopes chan types.Envelope

	started atomic.Bool
	running atomic.Bool
	closed  atomic.Bool
}

// New 创建主机
func New(id *identity.Identity, opts ...Option) (*Host, error) {
	if id == nil {
		return nil, errors.New("host: nil identity")
	}

	h := &Host{
		id:       id,
		config:   DefaultConfig(),
		clock:    clock.New(),
		addrs:    newAddrBook(),
		outbound: make(map[types.PeerID]*outboundPeer),
		inbound:  make(map[*yamux.Session]struct{}),
	}
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, err
		}
	}
	if h.config.Yamux == nil {
		h.config.Yamux = yamux.DefaultConfig()
	}

	nt, err := noise.New(id)
	if err != nil {
		return nil, fmt.Errorf("host: noise transport: %w", err)
	}
	h.noise = nt

	tcpOpts := tcp.DefaultOptions()
	tcpOpts.DialTimeout = h.config.DialTimeout
	h.tcp = tcp.NewTransport(tcpOpts)

	h.envelopes = make(chan types.Envelope, h.config.InboundBufferSize)
	return h, nil
}

// ID 本地 PeerID
func (h *Host) ID() types.PeerID {
	return h.id.ID()
}

// ListenAddr 实际监听地址，启动前为空
func (h *Host) ListenAddr() string {
	return h.listenAddr
}

// ListenPort 实际监听端口，启动前为 0
func (h *Host) ListenPort() int {
	if h.listener == nil {
		return 0
	}
	if addr, ok := h.listener.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// Inbound 入站帧通道，Stop 后关闭
func (h *Host) Inbound() <-chan types.Envelope {
	return h.envelopes
}

// AddAddr 记录对端地址
//
// 地址变化时关闭已有出站会话，下一帧按新地址拨号。
func (h *Host) AddAddr(peer types.PeerID, addr string) {
	if peer == h.ID() {
		return
	}
	if changed := h.addrs.set(peer, addr); changed {
		h.mu.Lock()
		p := h.outbound[peer]
		h.mu.Unlock()
		if p != nil {
			p.resetSession()
		}
	}
}

// ForgetPeer 移除对端地址、丢弃排队帧并关闭出站会话
func (h *Host) ForgetPeer(peer types.PeerID) {
	h.addrs.remove(peer)

	h.mu.Lock()
	p := h.outbound[peer]
	delete(h.outbound, peer)
	h.mu.Unlock()

	if p != nil {
		p.stop()
	}
}

// Send 将帧放入对端出站队列，不等待发送完成
func (h *Host) Send(peer types.PeerID, data []byte) error {
	if h.closed.Load() {
		return ErrClosed
	}
	if !h.running.Load() {
		return ErrNotStarted
	}
	if len(data) > h.config.MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(data))
	}
	if _, ok := h.addrs.get(peer); !ok {
		return fmt.Errorf("%w: %s", ErrNoAddress, peer.ShortString())
	}

	p, err := h.peerQueue(peer)
	if err != nil {
		return err
	}
	if !p.enqueue(data) {
		h.metrics.TransportFailure()
		return fmt.Errorf("%w: %s", ErrQueueFull, peer.ShortString())
	}
	return nil
}

// peerQueue 取得或创建对端队列
func (h *Host) peerQueue(peer types.PeerID) (*outboundPeer, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed.Load() {
		return nil, ErrClosed
	}
	if p, ok := h.outbound[peer]; ok {
		return p, nil
	}
	p := newOutboundPeer(h.ctx, peer, h.config.OutboundQueueSize)
	h.outbound[peer] = p
	go h.runOutbound(p)
	return p, nil
}

// outboundSessions 当前打开的出站会话数
func (h *Host) outboundSessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, p := range h.outbound {
		if p.currentSession() != nil {
			n++
		}
	}
	return n
}

// inboundSessions 当前入站会话数
func (h *Host) inboundSessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.inbound)
}
