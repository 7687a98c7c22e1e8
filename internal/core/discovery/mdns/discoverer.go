package mdns

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/hashicorp/mdns"

	"github.com/dep2p/go-meshchat/internal/util/logger"
	"github.com/dep2p/go-meshchat/pkg/interfaces"
	"github.com/dep2p/go-meshchat/pkg/types"
)

var log = logger.Logger("discovery/mdns")

var _ interfaces.Discovery = (*Discoverer)(nil)

// ============================================================================
//                              mDNS 发现器
// ============================================================================

// Discoverer mDNS 发现器
type Discoverer struct {
	config   Config
	localID  types.PeerID
	instance string
	clock    clock.Clock

	server *mdns.Server

	mu    sync.Mutex
	peers map[types.PeerID]peerEntry

	events chan types.DiscoveryEvent

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started atomic.Bool
	stopped atomic.Bool
}

// peerEntry 已发现节点
type peerEntry struct {
	addr     string
	lastSeen time.Time
}

// Option 构造选项
type Option func(*Discoverer)

// WithClock 替换时间源（测试用）
func WithClock(clk clock.Clock) Option {
	return func(d *Discoverer) {
		d.clock = clk
	}
}

// NewDiscoverer 创建 mDNS 发现器
func NewDiscoverer(cfg Config, localID types.PeerID, opts ...Option) *Discoverer {
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Discoverer{
		config:   cfg,
		localID:  localID,
		instance: "meshchat-" + uuid.NewString(),
		clock:    clock.New(),
		peers:    make(map[types.PeerID]peerEntry),
		events:   make(chan types.DiscoveryEvent, cfg.EventBuffer),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Events 发现事件通道，Stop 后关闭
func (d *Discoverer) Events() <-chan types.DiscoveryEvent {
	return d.events
}

// Instance 本节点的 mDNS 实例名
func (d *Discoverer) Instance() string {
	return d.instance
}

// ============================================================================
//                              生命周期
// ============================================================================

// Start 开始广播 port 并启动查询与过期循环
//
// 找不到可广播的地址时只作为客户端运行。
func (d *Discoverer) Start(_ context.Context, port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}
	if !d.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	serverMode := true
	if err := d.startServer(port); err != nil {
		serverMode = false
		log.Warn("mDNS 服务器启动失败，仅作为客户端运行", "err", err)
	}

	ticker := d.clock.Ticker(d.config.QueryInterval)
	d.wg.Add(2)
	go d.queryLoop()
	go d.expireLoop(ticker)

	log.Info("mDNS 发现器已启动",
		"service", d.config.ServiceTag,
		"instance", d.instance,
		"port", port,
		"server_mode", serverMode)
	return nil
}

// Stop 停止广播与查询，关闭事件通道
func (d *Discoverer) Stop() error {
	if !d.stopped.CompareAndSwap(false, true) {
		return nil
	}
	d.cancel()

	d.mu.Lock()
	server := d.server
	d.server = nil
	d.mu.Unlock()
	if server != nil {
		_ = server.Shutdown()
	}

	d.wg.Wait()
	close(d.events)
	log.Info("mDNS 发现器已停止")
	return nil
}

// startServer 以随机实例名广播服务
func (d *Discoverer) startServer(port int) error {
	ips, err := localIPs(d.config.Interface, d.config.DisableIPv6)
	if err != nil {
		return err
	}
	if len(ips) == 0 {
		return ErrNoLocalIP
	}

	service, err := mdns.NewMDNSService(
		d.instance,
		d.config.ServiceTag,
		d.config.Domain,
		"",
		port,
		ips,
		buildTXT(d.localID),
	)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	serverConfig := &mdns.Config{Zone: service}
	if d.config.Interface != "" {
		iface, err := net.InterfaceByName(d.config.Interface)
		if err != nil {
			return fmt.Errorf("interface %q: %w", d.config.Interface, err)
		}
		serverConfig.Iface = iface
	}

	server, err := mdns.NewServer(serverConfig)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	d.mu.Lock()
	d.server = server
	d.mu.Unlock()

	log.Debug("mDNS 服务器已启动", "ips", len(ips), "port", port)
	return nil
}

// ============================================================================
//                              查询与过期
// ============================================================================

// queryLoop 立即查询一次，之后每 QueryInterval 查询一次
func (d *Discoverer) queryLoop() {
	defer d.wg.Done()

	for {
		d.runQuery()

		select {
		case <-d.ctx.Done():
			return
		case <-d.clock.After(d.config.QueryInterval):
		}
	}
}

// runQuery 执行一次查询，阻塞至 QueryTimeout
func (d *Discoverer) runQuery() {
	entries := make(chan *mdns.ServiceEntry, 16)
	params := &mdns.QueryParam{
		Service:             d.config.ServiceTag,
		Domain:              d.config.Domain,
		Timeout:             d.config.QueryTimeout,
		Entries:             entries,
		DisableIPv6:         d.config.DisableIPv6,
		WantUnicastResponse: true,
	}
	if d.config.Interface != "" {
		if iface, err := net.InterfaceByName(d.config.Interface); err == nil {
			params.Interface = iface
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for entry := range entries {
			d.handleEntry(entry)
		}
	}()

	if err := mdns.Query(params); err != nil {
		log.Debug("mDNS 查询失败", "err", err)
	}
	close(entries)
	<-done
}

// handleEntry 处理一条查询结果
func (d *Discoverer) handleEntry(entry *mdns.ServiceEntry) {
	if entry == nil {
		return
	}
	id, ok := parseTXT(entry.InfoFields)
	if !ok || id == d.localID {
		return
	}
	addr := entryAddr(entry)
	if addr == "" {
		return
	}
	d.observe(id, addr)
}

// entryAddr 取 A 记录（其次 AAAA）与端口组成拨号地址
func entryAddr(entry *mdns.ServiceEntry) string {
	if entry.Port <= 0 {
		return ""
	}
	port := strconv.Itoa(entry.Port)
	switch {
	case entry.AddrV4 != nil && !entry.AddrV4.IsUnspecified():
		return net.JoinHostPort(entry.AddrV4.String(), port)
	case entry.AddrV6 != nil && !entry.AddrV6.IsUnspecified():
		return net.JoinHostPort(entry.AddrV6.String(), port)
	}
	return ""
}

// observe 记录一次发现，新节点或地址变化时发出 PeerAppeared
func (d *Discoverer) observe(id types.PeerID, addr string) {
	d.mu.Lock()
	prev, known := d.peers[id]
	d.peers[id] = peerEntry{addr: addr, lastSeen: d.clock.Now()}
	d.mu.Unlock()

	if known && prev.addr == addr {
		return
	}
	log.Debug("发现节点", "peer", id.ShortString(), "addr", addr, "new", !known)
	d.emit(types.Appeared(id, addr))
}

// expireLoop 周期清理过期节点
func (d *Discoverer) expireLoop(ticker *clock.Ticker) {
	defer d.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.expire()
		}
	}
}

// expire 移除超过 PeerTTL 的节点并发出 PeerVanished
func (d *Discoverer) expire() {
	cutoff := d.clock.Now().Add(-d.config.PeerTTL)

	var gone []types.PeerID
	d.mu.Lock()
	for id, e := range d.peers {
		if e.lastSeen.Before(cutoff) {
			delete(d.peers, id)
			gone = append(gone, id)
		}
	}
	d.mu.Unlock()

	for _, id := range gone {
		log.Debug("节点发现记录过期", "peer", id.ShortString())
		d.emit(types.Vanished(id))
	}
}

func (d *Discoverer) emit(ev types.DiscoveryEvent) {
	select {
	case d.events <- ev:
	case <-d.ctx.Done():
	}
}

// Peers 当前已知节点及其地址
func (d *Discoverer) Peers() map[types.PeerID]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[types.PeerID]string, len(d.peers))
	for id, e := range d.peers {
		out[id] = e.addr
	}
	return out
}
