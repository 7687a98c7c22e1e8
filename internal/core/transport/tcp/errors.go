package tcp

import "errors"

var (
	// ErrListen 绑定监听地址失败
	ErrListen = errors.New("tcp: listen failed")

	// ErrDial 拨号失败
	ErrDial = errors.New("tcp: dial failed")
)
