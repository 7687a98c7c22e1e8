package chat

import (
	"fmt"
	"io"
	"sync"

	"github.com/dep2p/go-meshchat/internal/protocol/pubsub"
	"github.com/dep2p/go-meshchat/pkg/types"
)

// Printer 向用户输出状态行
type Printer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPrinter 创建 Printer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Listening 输出本地监听地址
func (p *Printer) Listening(addr string) {
	p.printf("Local node is listening on %s", addr)
}

// LocalPeer 输出本地 PeerID
func (p *Printer) LocalPeer(id types.PeerID) {
	p.printf("Local peer id: %s", id)
}

// Topic 输出本节点的私有主题
func (p *Printer) Topic(topic string) {
	p.printf("Topic: %s", topic)
}

// Discovered 输出新发现的节点
func (p *Printer) Discovered(id types.PeerID) {
	p.printf("mDNS discovered a new peer: %s", id)
}

// Expired 输出发现记录过期的节点
func (p *Printer) Expired(id types.PeerID) {
	p.printf("mDNS discover peer has expired: %s", id)
}

// Subscribed 输出订阅成功
func (p *Printer) Subscribed(topic string) {
	p.printf("subscription success! topic: %s", topic)
}

// SubscribeError 输出订阅失败原因
func (p *Printer) SubscribeError(err error) {
	p.printf("Subscribe error: %v", err)
}

// Message 输出交付给本地的消息
func (p *Printer) Message(msg *pubsub.Message) {
	p.printf("Got message: '%s' with id: %s from peer: %s", msg.Data, msg.ID, msg.From)
}

// PublishWarning 输出发布警告（如暂无节点）
func (p *Printer) PublishWarning(err error) {
	p.printf("Publish warning: %v", err)
}

// PublishError 输出发布失败原因
func (p *Printer) PublishError(err error) {
	p.printf("Publish error: %v", err)
}

// InvalidCommand 输出无法解析的命令
func (p *Printer) InvalidCommand(err error) {
	p.printf("Invalid command: %v", err)
}
