package mdns

import "errors"

var (
	// ErrAlreadyStarted 重复启动
	ErrAlreadyStarted = errors.New("mdns: already started")

	// ErrInvalidPort 监听端口无效
	ErrInvalidPort = errors.New("mdns: invalid port")

	// ErrNoLocalIP 没有可广播的局域网地址
	ErrNoLocalIP = errors.New("mdns: no LAN address to advertise")
)
