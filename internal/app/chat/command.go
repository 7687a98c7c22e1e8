package chat

import (
	"fmt"
	"strings"
)

const (
	topicPrefix     = "t:"
	subscribePrefix = "sub:"
)

// CommandKind 命令类型
type CommandKind int

const (
	// CommandNone 空行，忽略
	CommandNone CommandKind = iota
	// CommandSubscribe 订阅主题
	CommandSubscribe
	// CommandPublish 发布消息
	CommandPublish
)

// String 返回命令类型名
func (k CommandKind) String() string {
	switch k {
	case CommandSubscribe:
		return "subscribe"
	case CommandPublish:
		return "publish"
	default:
		return "none"
	}
}

// Command 解析后的输入行
type Command struct {
	Kind    CommandKind
	Topic   string
	Payload []byte
}

// ParseCommand 解析一行输入
//
// 只保留前两个冒号分隔的段，第二个冒号之后的内容原样作为载荷。
// 不以 t: 开头的非空行发布到 broadcast。
func ParseCommand(line, broadcast string) (Command, error) {
	if strings.TrimSpace(line) == "" {
		return Command{Kind: CommandNone}, nil
	}

	rest, ok := strings.CutPrefix(line, topicPrefix)
	if !ok {
		return Command{Kind: CommandPublish, Topic: broadcast, Payload: []byte(line)}, nil
	}

	if topic, ok := strings.CutPrefix(rest, subscribePrefix); ok {
		if topic == "" {
			return Command{}, fmt.Errorf("%w: %q: missing topic", ErrMalformedCommand, line)
		}
		return Command{Kind: CommandSubscribe, Topic: topic}, nil
	}

	topic, payload, found := strings.Cut(rest, ":")
	switch {
	case !found:
		return Command{}, fmt.Errorf("%w: %q: expected t:<topic>:<message>", ErrMalformedCommand, line)
	case topic == "":
		return Command{}, fmt.Errorf("%w: %q: missing topic", ErrMalformedCommand, line)
	case payload == "":
		return Command{}, fmt.Errorf("%w: %q: missing message", ErrMalformedCommand, line)
	}
	return Command{Kind: CommandPublish, Topic: topic, Payload: []byte(payload)}, nil
}
