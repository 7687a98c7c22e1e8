package host

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dep2p/go-meshchat/internal/core/muxer/yamux"
	"github.com/dep2p/go-meshchat/pkg/types"
)

// outboundPeer 单个对端的出站队列与会话
//
// 帧按入队顺序由一个写协程依次发送。
type outboundPeer struct {
	peer   types.PeerID
	frames chan []byte
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	session *yamux.Session
}

func newOutboundPeer(parent context.Context, peer types.PeerID, queueSize int) *outboundPeer {
	ctx, cancel := context.WithCancel(parent)
	return &outboundPeer{
		peer:   peer,
		frames: make(chan []byte, queueSize),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// enqueue 非阻塞入队
func (p *outboundPeer) enqueue(frame []byte) bool {
	select {
	case p.frames <- frame:
		return true
	default:
		return false
	}
}

// currentSession 返回仍可用的会话
func (p *outboundPeer) currentSession() *yamux.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != nil && p.session.IsClosed() {
		p.session = nil
	}
	return p.session
}

func (p *outboundPeer) setSession(s *yamux.Session) {
	p.mu.Lock()
	p.session = s
	p.mu.Unlock()
}

// resetSession 关闭并丢弃当前会话，下一帧重新拨号
func (p *outboundPeer) resetSession() {
	p.mu.Lock()
	s := p.session
	p.session = nil
	p.mu.Unlock()
	if s != nil {
		_ = s.Close()
	}
}

// closeIfIdle 会话空闲超过 timeout 时关闭
func (p *outboundPeer) closeIfIdle(now time.Time, timeout time.Duration) bool {
	p.mu.Lock()
	s := p.session
	if s == nil || now.Sub(s.IdleSince()) < timeout {
		p.mu.Unlock()
		return false
	}
	p.session = nil
	p.mu.Unlock()
	_ = s.Close()
	return true
}

// stop 停止写协程并等待退出
func (p *outboundPeer) stop() {
	p.cancel()
	<-p.done
}

// runOutbound 对端写循环
func (h *Host) runOutbound(p *outboundPeer) {
	defer close(p.done)
	defer p.resetSession()

	for {
		select {
		case <-p.ctx.Done():
			return
		case frame := <-p.frames:
			if err := h.deliverFrame(p, frame); err != nil {
				if p.ctx.Err() != nil {
					return
				}
				h.metrics.TransportFailure()
				log.Debug("发送帧失败",
					"peer", p.peer.ShortString(),
					"error", err)
				p.resetSession()
			}
		}
	}
}

// deliverFrame 在一条新流上写一帧，必要时先拨号
func (h *Host) deliverFrame(p *outboundPeer, frame []byte) error {
	sess := p.currentSession()
	if sess == nil {
		var err error
		sess, err = h.dialPeer(p.ctx, p.peer)
		if err != nil {
			return err
		}
		p.setSession(sess)
	}

	st, err := sess.OpenStream(p.ctx)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer st.Close()

	if err := st.SetWriteDeadline(time.Now().Add(h.config.DialTimeout)); err != nil {
		return err
	}
	if err := writeFrame(st, frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	sess.Touch(h.clock.Now())
	return nil
}

// dialPeer 拨号 + Noise 发起方握手 + yamux 客户端会话
func (h *Host) dialPeer(ctx context.Context, peer types.PeerID) (*yamux.Session, error) {
	addr, ok := h.addrs.get(peer)
	if !ok {
		return nil, ErrNoAddress
	}

	dialCtx, cancel := context.WithTimeout(ctx, h.config.DialTimeout)
	defer cancel()
	raw, err := h.tcp.Dial(dialCtx, addr)
	if err != nil {
		return nil, err
	}

	hsCtx, cancel := context.WithTimeout(ctx, h.config.HandshakeTimeout)
	defer cancel()
	secured, err := h.noise.SecureOutbound(hsCtx, raw, peer)
	if err != nil {
		_ = raw.Close()
		return nil, err
	}

	sess, err := yamux.NewSession(secured, false, peer, h.config.Yamux, h.clock.Now())
	if err != nil {
		_ = secured.Close()
		return nil, err
	}

	log.Debug("建立出站会话",
		"peer", peer.ShortString(),
		"addr", addr)
	return sess, nil
}
