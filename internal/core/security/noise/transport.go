package noise

import (
	"context"
	"crypto/rand"
	"fmt"
	"net"
	"time"

	"github.com/flynn/noise"

	"github.com/dep2p/go-meshchat/internal/core/identity"
	"github.com/dep2p/go-meshchat/internal/util/logger"
	"github.com/dep2p/go-meshchat/pkg/types"
)

var log = logger.Logger("noise")

var cipherSuite = noise.NewCipherSuite(noise.DH25519, noise.CipherChaChaPoly, noise.HashSHA256)

// Transport 执行 Noise 握手
type Transport struct {
	id      *identity.Identity
	static  noise.DHKey
	payload []byte
}

// New 为身份创建 Transport，生成并签名绑定一把 X25519 静态密钥
func New(id *identity.Identity) (*Transport, error) {
	static, err := cipherSuite.GenerateKeypair(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("noise: generate static key: %w", err)
	}
	return &Transport{
		id:      id,
		static:  static,
		payload: buildPayload(id, static.Public),
	}, nil
}

// SecureOutbound 以发起方身份握手，expected 非空时校验对端身份
func (t *Transport) SecureOutbound(ctx context.Context, conn net.Conn, expected types.PeerID) (*Conn, error) {
	sc, err := t.handshake(ctx, conn, true)
	if err != nil {
		return nil, err
	}
	if !expected.IsEmpty() && sc.remote != expected {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: dialed %s, got %s", ErrPeerIDMismatch, expected.ShortString(), sc.remote.ShortString())
	}
	return sc, nil
}

// SecureInbound 以响应方身份握手，对端身份由 payload 得出
func (t *Transport) SecureInbound(ctx context.Context, conn net.Conn) (*Conn, error) {
	return t.handshake(ctx, conn, false)
}

func (t *Transport) handshake(ctx context.Context, conn net.Conn, initiator bool) (*Conn, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
		defer conn.SetDeadline(time.Time{})
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	hs, err := noise.NewHandshakeState(noise.Config{
		CipherSuite:   cipherSuite,
		Pattern:       noise.HandshakeXX,
		Initiator:     initiator,
		StaticKeypair: t.static,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHandshake, err)
	}

	var (
		send, recv    *noise.CipherState
		remotePayload []byte
	)
	if initiator {
		send, recv, remotePayload, err = runInitiator(conn, hs, t.payload)
	} else {
		send, recv, remotePayload, err = runResponder(conn, hs, t.payload)
	}
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		log.Debug("handshake failed", "remote", conn.RemoteAddr().String(), "initiator", initiator, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrHandshake, err)
	}

	remote, err := verifyPayload(remotePayload, hs.PeerStatic())
	if err != nil {
		return nil, err
	}

	return newConn(conn, send, recv, t.id.ID(), remote), nil
}

// runInitiator 发起方三轮消息，返回 (发送, 接收) 密码状态
func runInitiator(conn net.Conn, hs *noise.HandshakeState, payload []byte) (*noise.CipherState, *noise.CipherState, []byte, error) {
	msg, _, _, err := hs.WriteMessage(nil, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := writeRecord(conn, msg); err != nil {
		return nil, nil, nil, fmt.Errorf("send e: %w", err)
	}

	msg, err = readRecord(conn, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("receive e, ee, s, es: %w", err)
	}
	remotePayload, _, _, err := hs.ReadMessage(nil, msg)
	if err != nil {
		return nil, nil, nil, err
	}

	msg, cs1, cs2, err := hs.WriteMessage(nil, payload)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := writeRecord(conn, msg); err != nil {
		return nil, nil, nil, fmt.Errorf("send s, se: %w", err)
	}
	return cs1, cs2, remotePayload, nil
}

// runResponder 响应方三轮消息，返回 (发送, 接收) 密码状态
func runResponder(conn net.Conn, hs *noise.HandshakeState, payload []byte) (*noise.CipherState, *noise.CipherState, []byte, error) {
	msg, err := readRecord(conn, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("receive e: %w", err)
	}
	if _, _, _, err := hs.ReadMessage(nil, msg); err != nil {
		return nil, nil, nil, err
	}

	msg, _, _, err = hs.WriteMessage(nil, payload)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := writeRecord(conn, msg); err != nil {
		return nil, nil, nil, fmt.Errorf("send e, ee, s, es: %w", err)
	}

	msg, err = readRecord(conn, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("receive s, se: %w", err)
	}
	remotePayload, cs1, cs2, err := hs.ReadMessage(nil, msg)
	if err != nil {
		return nil, nil, nil, err
	}
	// 响应方：cs1 用于接收，cs2 用于发送
	return cs2, cs1, remotePayload, nil
}
