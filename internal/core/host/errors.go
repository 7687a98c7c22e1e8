package host

import "errors"

var (
	// ErrNotStarted 主机未启动
	ErrNotStarted = errors.New("host: not started")

	// ErrClosed 主机已关闭
	ErrClosed = errors.New("host: closed")

	// ErrNoAddress 没有该对端的拨号地址
	ErrNoAddress = errors.New("host: no address for peer")

	// ErrQueueFull 对端出站队列已满，帧被丢弃
	ErrQueueFull = errors.New("host: outbound queue full")

	// ErrFrameTooLarge 帧超过 MaxFrameSize
	ErrFrameTooLarge = errors.New("host: frame too large")
)
