package yamux

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/hashicorp/yamux"

	"github.com/dep2p/go-meshchat/pkg/types"
)

// ErrSessionClosed 会话已关闭
var ErrSessionClosed = errors.New("yamux: session closed")

// Session 一条连接上的多路复用会话
type Session struct {
	session *yamux.Session
	remote  types.PeerID

	// lastActive 最近一次开流/收流的 UnixNano
	lastActive atomic.Int64
}

// NewSession 在 conn 上建立会话，isServer 表示本端是连接的接受方
func NewSession(conn io.ReadWriteCloser, isServer bool, remote types.PeerID, cfg *yamux.Config, now time.Time) (*Session, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var (
		s   *yamux.Session
		err error
	)
	if isServer {
		s, err = yamux.Server(conn, cfg)
	} else {
		s, err = yamux.Client(conn, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("yamux: new session: %w", err)
	}

	sess := &Session{session: s, remote: remote}
	sess.Touch(now)
	return sess, nil
}

// RemotePeer 对端 PeerID
func (s *Session) RemotePeer() types.PeerID {
	return s.remote
}

// OpenStream 打开一条出站流，ctx 取消时放弃等待
func (s *Session) OpenStream(ctx context.Context) (net.Conn, error) {
	if s.IsClosed() {
		return nil, ErrSessionClosed
	}

	type result struct {
		stream *yamux.Stream
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		st, err := s.session.OpenStream()
		ch <- result{st, err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if r := <-ch; r.stream != nil {
				_ = r.stream.Close()
			}
		}()
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("yamux: open stream: %w", r.err)
		}
		return r.stream, nil
	}
}

// AcceptStream 阻塞等待下一条入站流，会话关闭时返回 ErrSessionClosed
func (s *Session) AcceptStream() (net.Conn, error) {
	st, err := s.session.AcceptStream()
	if err != nil {
		if s.IsClosed() {
			return nil, ErrSessionClosed
		}
		return nil, fmt.Errorf("yamux: accept stream: %w", err)
	}
	return st, nil
}

// Touch 记录活动时间
func (s *Session) Touch(now time.Time) {
	s.lastActive.Store(now.UnixNano())
}

// IdleSince 最近一次活动时间
func (s *Session) IdleSince() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// NumStreams 当前打开的流数量
func (s *Session) NumStreams() int {
	return s.session.NumStreams()
}

// IsClosed 会话是否已关闭
func (s *Session) IsClosed() bool {
	return s.session.IsClosed()
}

// CloseChan 会话关闭时关闭的通道
func (s *Session) CloseChan() <-chan struct{} {
	return s.session.CloseChan()
}

// Close 关闭会话及底层连接
func (s *Session) Close() error {
	return s.session.Close()
}
