package host

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-meshchat/internal/core/muxer/yamux"
	"github.com/dep2p/go-meshchat/pkg/types"
)

// Start 绑定监听地址并启动后台协程
//
// ctx 只用于绑定，后台协程的生命周期由 Stop 控制。
func (h *Host) Start(ctx context.Context) error {
	if h.closed.Load() {
		return ErrClosed
	}
	if !h.started.CompareAndSwap(false, true) {
		return errors.New("host: already started")
	}

	ln, err := h.tcp.Listen(ctx, h.config.ListenAddr)
	if err != nil {
		h.started.Store(false)
		return fmt.Errorf("host: %w", err)
	}
	h.listener = ln
	h.listenAddr = ln.Addr().String()

	h.ctx, h.cancel = context.WithCancel(context.Background())
	h.group = new(errgroup.Group)
	h.group.Go(h.acceptLoop)
	if interval := h.config.IdleConnTimeout / 2; interval > 0 {
		ticker := h.clock.Ticker(interval)
		h.group.Go(func() error {
			return h.reapLoop(ticker)
		})
	}
	h.running.Store(true)

	log.Info("主机已启动",
		"peer", h.ID().ShortString(),
		"listen", h.listenAddr)
	return nil
}

// Stop 关闭监听、所有会话和出站队列，然后关闭 Inbound 通道
func (h *Host) Stop() error {
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}
	if !h.running.Load() {
		close(h.envelopes)
		return nil
	}

	h.cancel()
	_ = h.listener.Close()

	h.mu.Lock()
	peers := make([]*outboundPeer, 0, len(h.outbound))
	for id, p := range h.outbound {
		peers = append(peers, p)
		delete(h.outbound, id)
	}
	sessions := make([]*yamux.Session, 0, len(h.inbound))
	for s := range h.inbound {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, p := range peers {
		p.stop()
	}
	for _, s := range sessions {
		_ = s.Close()
	}

	err := h.group.Wait()
	close(h.envelopes)

	log.Info("主机已停止", "peer", h.ID().ShortString())
	return err
}

// acceptLoop 接受入站连接
func (h *Host) acceptLoop() error {
	for {
		conn, err := h.listener.Accept()
		if err != nil {
			if h.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Warn("接受连接失败", "error", err)
			continue
		}
		h.group.Go(func() error {
			h.handleConn(conn)
			return nil
		})
	}
}

// handleConn Noise 响应方握手后按顺序读取每条流上的帧
func (h *Host) handleConn(conn net.Conn) {
	hsCtx, cancel := context.WithTimeout(h.ctx, h.config.HandshakeTimeout)
	secured, err := h.noise.SecureInbound(hsCtx, conn)
	cancel()
	if err != nil {
		_ = conn.Close()
		h.metrics.TransportFailure()
		log.Debug("入站握手失败",
			"remote", conn.RemoteAddr().String(),
			"error", err)
		return
	}

	remote := secured.RemotePeer()
	sess, err := yamux.NewSession(secured, true, remote, h.config.Yamux, h.clock.Now())
	if err != nil {
		_ = secured.Close()
		log.Debug("创建入站会话失败", "peer", remote.ShortString(), "error", err)
		return
	}

	if !h.trackInbound(sess) {
		_ = sess.Close()
		return
	}
	defer h.untrackInbound(sess)

	log.Debug("建立入站会话", "peer", remote.ShortString())

	for {
		st, err := sess.AcceptStream()
		if err != nil {
			return
		}
		sess.Touch(h.clock.Now())

		data, err := h.readStream(st)
		if err != nil {
			h.metrics.TransportFailure()
			log.Debug("读取帧失败", "peer", remote.ShortString(), "error", err)
			continue
		}

		select {
		case h.envelopes <- types.Envelope{From: remote, Data: data}:
		case <-h.ctx.Done():
			return
		}
	}
}

func (h *Host) readStream(st net.Conn) ([]byte, error) {
	defer st.Close()
	if err := st.SetReadDeadline(time.Now().Add(h.config.HandshakeTimeout)); err != nil {
		return nil, err
	}
	return readFrame(st, h.config.MaxFrameSize)
}

func (h *Host) trackInbound(s *yamux.Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed.Load() {
		return false
	}
	h.inbound[s] = struct{}{}
	return true
}

func (h *Host) untrackInbound(s *yamux.Session) {
	h.mu.Lock()
	delete(h.inbound, s)
	h.mu.Unlock()
	_ = s.Close()
}

// reapLoop 周期关闭空闲会话
func (h *Host) reapLoop(ticker *clock.Ticker) error {
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return nil
		case <-ticker.C:
			h.reapIdle()
		}
	}
}

// reapIdle 关闭空闲超过 IdleConnTimeout 的会话
func (h *Host) reapIdle() {
	now := h.clock.Now()
	timeout := h.config.IdleConnTimeout

	h.mu.Lock()
	peers := make([]*outboundPeer, 0, len(h.outbound))
	for _, p := range h.outbound {
		peers = append(peers, p)
	}
	var idle []*yamux.Session
	for s := range h.inbound {
		if now.Sub(s.IdleSince()) >= timeout {
			idle = append(idle, s)
		}
	}
	h.mu.Unlock()

	for _, p := range peers {
		if p.closeIfIdle(now, timeout) {
			log.Debug("关闭空闲出站会话", "peer", p.peer.ShortString())
		}
	}
	for _, s := range idle {
		log.Debug("关闭空闲入站会话", "peer", s.RemotePeer().ShortString())
		_ = s.Close()
	}
}
