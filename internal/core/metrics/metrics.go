package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const subsystemPubSub = "pubsub"

// Metrics Prometheus 指标集合
type Metrics struct {
	registry *prometheus.Registry

	published         prometheus.Counter
	delivered         prometheus.Counter
	forwarded         prometheus.Counter
	duplicates        prometheus.Counter
	authFailures      prometheus.Counter
	malformed         prometheus.Counter
	transportFailures prometheus.Counter

	knownPeers       prometheus.Gauge
	subscribedTopics prometheus.Gauge
	seenEntries      prometheus.Gauge
}

// New 创建并注册全部指标
func New(namespace string) *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemPubSub,
			Name:      name,
			Help:      help,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemPubSub,
			Name:      name,
			Help:      help,
		})
	}

	m := &Metrics{
		registry:          prometheus.NewRegistry(),
		published:         counter("published_total", "Messages published by the local node."),
		delivered:         counter("delivered_total", "Messages delivered to the local application."),
		forwarded:         counter("forwarded_total", "Frames forwarded to mesh peers."),
		duplicates:        counter("duplicates_total", "Inbound messages dropped as already seen."),
		authFailures:      counter("auth_failures_total", "Inbound messages dropped for a bad signature."),
		malformed:         counter("malformed_total", "Inbound frames that failed to decode."),
		transportFailures: counter("transport_failures_total", "Per-peer sends that could not be queued."),
		knownPeers:        gauge("known_peers", "Peers currently known through discovery."),
		subscribedTopics:  gauge("subscribed_topics", "Topics the local node is subscribed to."),
		seenEntries:       gauge("seen_entries", "Entries held by the duplicate filter."),
	}

	m.registry.MustRegister(
		m.published, m.delivered, m.forwarded, m.duplicates,
		m.authFailures, m.malformed, m.transportFailures,
		m.knownPeers, m.subscribedTopics, m.seenEntries,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry 返回底层注册表
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler 返回 /metrics 的 HTTP 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// MessagePublished 本地发布一条消息
func (m *Metrics) MessagePublished() {
	if m != nil {
		m.published.Inc()
	}
}

// MessageDelivered 一条消息交付给本地应用
func (m *Metrics) MessageDelivered() {
	if m != nil {
		m.delivered.Inc()
	}
}

// MessageForwarded 向 n 个节点转发
func (m *Metrics) MessageForwarded(n int) {
	if m != nil && n > 0 {
		m.forwarded.Add(float64(n))
	}
}

// DuplicateDropped 重复消息被丢弃
func (m *Metrics) DuplicateDropped() {
	if m != nil {
		m.duplicates.Inc()
	}
}

// AuthFailure 签名校验失败
func (m *Metrics) AuthFailure() {
	if m != nil {
		m.authFailures.Inc()
	}
}

// MalformedFrame 帧解码失败
func (m *Metrics) MalformedFrame() {
	if m != nil {
		m.malformed.Inc()
	}
}

// TransportFailure 单个节点发送失败
func (m *Metrics) TransportFailure() {
	if m != nil {
		m.transportFailures.Inc()
	}
}

// SetKnownPeers 更新已知节点数
func (m *Metrics) SetKnownPeers(n int) {
	if m != nil {
		m.knownPeers.Set(float64(n))
	}
}

// SetSubscribedTopics 更新订阅主题数
func (m *Metrics) SetSubscribedTopics(n int) {
	if m != nil {
		m.subscribedTopics.Set(float64(n))
	}
}

// SetSeenEntries 更新去重缓存条目数
func (m *Metrics) SetSeenEntries(n int) {
	if m != nil {
		m.seenEntries.Set(float64(n))
	}
}
