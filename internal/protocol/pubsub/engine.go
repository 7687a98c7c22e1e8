package pubsub

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dep2p/go-meshchat/internal/core/identity"
	"github.com/dep2p/go-meshchat/internal/util/logger"
	"github.com/dep2p/go-meshchat/pkg/interfaces"
	"github.com/dep2p/go-meshchat/pkg/types"
)

var log = logger.Logger("pubsub")

// DeliveryHandler 接收交付给本地应用的消息
type DeliveryHandler func(msg *Message)

// Outcome 入站消息的处理结果
type Outcome int

const (
	// OutcomeRejected 校验失败，丢弃
	OutcomeRejected Outcome = iota
	// OutcomeDuplicate 已见过，静默丢弃
	OutcomeDuplicate
	// OutcomeRelayed 未订阅，只转发
	OutcomeRelayed
	// OutcomeDelivered 已交付本地并转发
	OutcomeDelivered
)

// String 返回结果名
func (o Outcome) String() string {
	switch o {
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeRelayed:
		return "relayed"
	case OutcomeDelivered:
		return "delivered"
	default:
		return "rejected"
	}
}

// Stats 引擎计数快照
type Stats struct {
	Subscriptions int
	Topics        int
	KnownPeers    int
	SeenEntries   int

	Published  uint64
	Delivered  uint64
	Forwarded  uint64
	Duplicates uint64
	Rejected   uint64
}

// Engine gossip 传播引擎
//
// 不是并发安全的，所有方法必须由同一个事件循环串行调用。
type Engine struct {
	id     *identity.Identity
	sender interfaces.Sender
	config *Config

	subs    map[string]struct{}
	known   map[types.PeerID]struct{}
	members *membershipTable
	seen    *seenSet

	onDeliver DeliveryHandler
	stats     Stats
}

// NewEngine 创建引擎
func NewEngine(id *identity.Identity, sender interfaces.Sender, opts ...Option) (*Engine, error) {
	if sender == nil {
		return nil, ErrNilSender
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	seen, err := newSeenSet(cfg.SeenCapacity, cfg.Clock)
	if err != nil {
		return nil, fmt.Errorf("pubsub: seen cache: %w", err)
	}

	return &Engine{
		id:      id,
		sender:  sender,
		config:  cfg,
		subs:    make(map[string]struct{}),
		known:   make(map[types.PeerID]struct{}),
		members: newMembershipTable(),
		seen:    seen,
	}, nil
}

// OnDeliver 设置本地投递回调
func (e *Engine) OnDeliver(h DeliveryHandler) {
	e.onDeliver = h
}

// ============================================================================
//                              订阅
// ============================================================================

// Subscribe 登记本地对主题的兴趣，不产生网络流量
//
// 已发现的节点按洪泛策略加入该主题的成员表。重复订阅是 no-op。
func (e *Engine) Subscribe(topic string) error {
	if err := e.validateTopic(topic); err != nil {
		return err
	}
	if _, ok := e.subs[topic]; ok {
		return nil
	}

	e.subs[topic] = struct{}{}
	for p := range e.known {
		e.members.AddPeer(topic, p)
	}
	e.config.Metrics.SetSubscribedTopics(len(e.subs))

	log.Debug("subscribed", "topic", topic, "peers", len(e.members.PeersFor(topic)))
	return nil
}

// IsSubscribed 本地是否订阅了主题
func (e *Engine) IsSubscribed(topic string) bool {
	_, ok := e.subs[topic]
	return ok
}

// Subscriptions 返回已订阅主题（排序）
func (e *Engine) Subscriptions() []string {
	topics := make([]string, 0, len(e.subs))
	for t := range e.subs {
		topics = append(topics, t)
	}
	slices.Sort(topics)
	return topics
}

func (e *Engine) validateTopic(topic string) error {
	if topic == "" {
		return fmt.Errorf("%w: empty", ErrInvalidTopic)
	}
	if len(topic) > e.config.MaxTopicLength {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidTopic, len(topic), e.config.MaxTopicLength)
	}
	return nil
}

// ============================================================================
//                              成员
// ============================================================================

// AddExplicitPeer 记录一个被发现的节点，并把它加入每个本地订阅的主题
func (e *Engine) AddExplicitPeer(peer types.PeerID) {
	if peer == e.id.ID() || peer.IsEmpty() {
		return
	}
	e.known[peer] = struct{}{}
	for topic := range e.subs {
		e.members.AddPeer(topic, peer)
	}
	e.config.Metrics.SetKnownPeers(len(e.known))
}

// RemoveExplicitPeer 忘记节点，并把它从所有主题移除
func (e *Engine) RemoveExplicitPeer(peer types.PeerID) {
	delete(e.known, peer)
	n := e.members.RemovePeer(peer)
	e.config.Metrics.SetKnownPeers(len(e.known))
	log.Debug("peer removed from mesh", "peer", peer.ShortString(), "topics", n)
}

// AddPeer 直接把节点加入某个主题
func (e *Engine) AddPeer(topic string, peer types.PeerID) error {
	if err := e.validateTopic(topic); err != nil {
		return err
	}
	if peer != e.id.ID() {
		e.members.AddPeer(topic, peer)
	}
	return nil
}

// PeersFor 返回主题的扇出目标
func (e *Engine) PeersFor(topic string) []types.PeerID {
	return e.members.PeersFor(topic)
}

// KnownPeers 已发现节点数
func (e *Engine) KnownPeers() int {
	return len(e.known)
}

// IsKnownPeer 节点是否已被发现
func (e *Engine) IsKnownPeer(peer types.PeerID) bool {
	_, ok := e.known[peer]
	return ok
}

// HandleAnnouncement 处理远端的订阅通告：把 from 加入它声明的每个主题
func (e *Engine) HandleAnnouncement(from types.PeerID, topics []string) {
	if from == e.id.ID() || from.IsEmpty() {
		return
	}
	for _, topic := range topics {
		if e.validateTopic(topic) != nil {
			log.Debug("ignoring announced topic", "peer", from.ShortString(), "topic", topic)
			continue
		}
		e.members.AddPeer(topic, from)
	}
}

// Announce 把本地订阅列表发给 peer
func (e *Engine) Announce(peer types.PeerID) error {
	if len(e.subs) == 0 {
		return nil
	}
	frame := EncodeRPC(&RPC{Subscriptions: e.Subscriptions()})
	if err := e.sender.Send(peer, frame); err != nil {
		e.config.Metrics.TransportFailure()
		return fmt.Errorf("%w: %s: %v", ErrTransportFailure, peer.ShortString(), err)
	}
	return nil
}

// ============================================================================
//                              发布
// ============================================================================

// Publish 签名并扇出一条消息，返回其 MessageID
//
// 没有扇出目标时返回有效的 MessageID 和 ErrNoPeers，调用方应把它当作警告。
// 单个节点发送失败只记录日志，不影响其他节点。
func (e *Engine) Publish(topic string, data []byte) (types.MessageID, error) {
	if err := e.validateTopic(topic); err != nil {
		return "", err
	}
	if len(data) > e.config.MaxMessageSize {
		return "", fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(data))
	}

	msg := newSignedMessage(e.id, topic, data)
	e.seen.AlreadySeen(msg.ID)
	e.stats.Published++
	e.config.Metrics.MessagePublished()

	if e.IsSubscribed(topic) {
		e.deliver(msg)
	}

	peers := e.members.PeersFor(topic)
	if len(peers) == 0 {
		log.Debug("publish without peers", "topic", topic, "id", msg.ID)
		return msg.ID, ErrNoPeers
	}

	sent := e.fanOut(peers, EncodeRPC(&RPC{Publish: []*Message{msg}}), types.EmptyPeerID)
	log.Debug("message published", "topic", topic, "id", msg.ID, "peers", len(peers), "sent", sent)
	return msg.ID, nil
}

// ============================================================================
//                              入站
// ============================================================================

// HandleFrame 解码一帧并分派其中的订阅通告和消息
func (e *Engine) HandleFrame(from types.PeerID, frame []byte) error {
	rpc, err := DecodeRPC(frame)
	if err != nil {
		e.stats.Rejected++
		e.config.Metrics.MalformedFrame()
		return err
	}

	if len(rpc.Subscriptions) > 0 {
		e.HandleAnnouncement(from, rpc.Subscriptions)
	}

	var errs []error
	for _, msg := range rpc.Publish {
		if _, err := e.HandleInbound(from, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HandleInbound 处理从 from 收到的一条消息
//
// 顺序：大小与主题检查 -> 验签 -> 去重 -> 本地投递 -> 转发。
// 验签失败的消息不会被标记为已见。
func (e *Engine) HandleInbound(from types.PeerID, msg *Message) (Outcome, error) {
	if len(msg.Data) > e.config.MaxMessageSize {
		e.stats.Rejected++
		return OutcomeRejected, fmt.Errorf("%w: %d bytes from %s", ErrMessageTooLarge, len(msg.Data), from.ShortString())
	}
	if err := e.validateTopic(msg.Topic); err != nil {
		e.stats.Rejected++
		return OutcomeRejected, err
	}

	msg.ID = ComputeMessageID(msg.Data)

	if err := msg.verify(); err != nil {
		e.stats.Rejected++
		e.config.Metrics.AuthFailure()
		return OutcomeRejected, fmt.Errorf("%w: message %s via %s: %v",
			ErrAuthenticationFailure, msg.ID, from.ShortString(), err)
	}

	if msg.From == e.id.ID() || e.seen.AlreadySeen(msg.ID) {
		e.stats.Duplicates++
		e.config.Metrics.DuplicateDropped()
		return OutcomeDuplicate, nil
	}

	outcome := OutcomeRelayed
	if e.IsSubscribed(msg.Topic) {
		e.deliver(msg)
		outcome = OutcomeDelivered
	}

	peers := e.members.PeersFor(msg.Topic)
	if len(peers) > 0 {
		e.fanOut(peers, EncodeRPC(&RPC{Publish: []*Message{msg}}), from)
	}
	return outcome, nil
}

// ============================================================================
//                              内部
// ============================================================================

func (e *Engine) deliver(msg *Message) {
	e.stats.Delivered++
	e.config.Metrics.MessageDelivered()
	if e.onDeliver != nil {
		e.onDeliver(msg)
	}
}

// fanOut 逐个入队发送，跳过 except，返回成功入队的数量
func (e *Engine) fanOut(peers []types.PeerID, frame []byte, except types.PeerID) int {
	sent := 0
	for _, p := range peers {
		if p == except {
			continue
		}
		if err := e.sender.Send(p, frame); err != nil {
			e.config.Metrics.TransportFailure()
			log.Warn("send failed", "peer", p.ShortString(), "err", fmt.Errorf("%w: %v", ErrTransportFailure, err))
			continue
		}
		sent++
	}
	e.stats.Forwarded += uint64(sent)
	e.config.Metrics.MessageForwarded(sent)
	return sent
}

// Stats 返回当前计数
func (e *Engine) Stats() Stats {
	s := e.stats
	s.Subscriptions = len(e.subs)
	s.Topics = e.members.Topics()
	s.KnownPeers = len(e.known)
	s.SeenEntries = e.seen.Len()
	return s
}

// Seen 消息是否在去重缓存中
func (e *Engine) Seen(id types.MessageID) bool {
	return e.seen.Contains(id)
}

// RefreshMetrics 把当前计数写入 gauge（由心跳调用）
func (e *Engine) RefreshMetrics() {
	m := e.config.Metrics
	m.SetKnownPeers(len(e.known))
	m.SetSubscribedTopics(len(e.subs))
	m.SetSeenEntries(e.seen.Len())
}
