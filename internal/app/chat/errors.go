package chat

import "errors"

// ErrMalformedCommand t: 前缀的输入行格式错误
var ErrMalformedCommand = errors.New("malformed command")
