package chat

import (
	"errors"

	"github.com/dep2p/go-meshchat/internal/protocol/pubsub"
)

// Router 把输入行映射为 Engine 操作
type Router struct {
	engine    *pubsub.Engine
	printer   *Printer
	broadcast string
}

// NewRouter 创建 Router
func NewRouter(engine *pubsub.Engine, printer *Printer, broadcast string) *Router {
	return &Router{engine: engine, printer: printer, broadcast: broadcast}
}

// Route 处理一行输入
//
// 返回的错误已经输出给用户，调用方只需继续下一行。
// ErrNoPeers 只作为警告输出，不作为错误返回。
func (r *Router) Route(line string) error {
	cmd, err := ParseCommand(line, r.broadcast)
	if err != nil {
		r.printer.InvalidCommand(err)
		return err
	}

	switch cmd.Kind {
	case CommandSubscribe:
		if err := r.engine.Subscribe(cmd.Topic); err != nil {
			r.printer.SubscribeError(err)
			return err
		}
		r.printer.Subscribed(cmd.Topic)

	case CommandPublish:
		id, err := r.engine.Publish(cmd.Topic, cmd.Payload)
		switch {
		case errors.Is(err, pubsub.ErrNoPeers):
			r.printer.PublishWarning(err)
		case err != nil:
			r.printer.PublishError(err)
			return err
		default:
			log.Debug("published", "topic", cmd.Topic, "id", id)
		}
	}
	return nil
}
