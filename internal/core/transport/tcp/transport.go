package tcp

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Options 拨号与监听参数
type Options struct {
	// DialTimeout 拨号超时，0 表示只受 ctx 约束
	DialTimeout time.Duration

	// KeepAlive TCP keepalive 周期
	KeepAlive time.Duration

	// NoDelay 禁用 Nagle
	NoDelay bool
}

// DefaultOptions 默认参数
func DefaultOptions() Options {
	return Options{
		DialTimeout: 5 * time.Second,
		KeepAlive:   30 * time.Second,
		NoDelay:     true,
	}
}

// Transport TCP 传输
type Transport struct {
	opts Options
}

// NewTransport 创建 TCP 传输
func NewTransport(opts Options) *Transport {
	return &Transport{opts: opts}
}

// Listen 绑定地址（host:port）
func (t *Transport) Listen(ctx context.Context, addr string) (net.Listener, error) {
	lc := net.ListenConfig{KeepAlive: t.opts.KeepAlive}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrListen, addr, err)
	}
	return ln, nil
}

// Dial 拨号到 host:port
func (t *Transport) Dial(ctx context.Context, addr string) (net.Conn, error) {
	d := net.Dialer{
		Timeout:   t.opts.DialTimeout,
		KeepAlive: t.opts.KeepAlive,
	}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDial, addr, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok && t.opts.NoDelay {
		_ = tc.SetNoDelay(true)
	}
	return conn, nil
}
