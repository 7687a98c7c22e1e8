package mdns

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/hashicorp/mdns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-meshchat/internal/core/identity"
	"github.com/dep2p/go-meshchat/pkg/types"
)

func newPeerID(t *testing.T) types.PeerID {
	t.Helper()
	id, err := identity.Generate()
	require.NoError(t, err)
	return id.ID()
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.QueryInterval = 10 * time.Second
	cfg.PeerTTL = 30 * time.Second
	return cfg
}

func nextEvent(t *testing.T, d *Discoverer) types.DiscoveryEvent {
	t.Helper()
	select {
	case ev := <-d.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for discovery event")
		return types.DiscoveryEvent{}
	}
}

func assertNoEvent(t *testing.T, d *Discoverer) {
	t.Helper()
	select {
	case ev := <-d.Events():
		t.Fatalf("unexpected event %s for %s", ev.Type, ev.Peer.ShortString())
	default:
	}
}

func entryFor(id types.PeerID, ip string, port int) *mdns.ServiceEntry {
	return &mdns.ServiceEntry{
		Name:       "meshchat-test._meshchat._tcp.local.",
		AddrV4:     net.ParseIP(ip),
		Port:       port,
		InfoFields: buildTXT(id),
	}
}

func TestTXT_RoundTrip(t *testing.T) {
	id := newPeerID(t)
	got, ok := parseTXT(buildTXT(id))
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = parseTXT([]string{"v=1"})
	assert.False(t, ok)

	_, ok = parseTXT([]string{"id=not-base58-0OIl"})
	assert.False(t, ok)
}

func TestDiscoverer_HandleEntry(t *testing.T) {
	local := newPeerID(t)
	d := NewDiscoverer(testConfig(), local, WithClock(clock.NewMock()))
	defer d.Stop()

	remote := newPeerID(t)
	d.handleEntry(entryFor(remote, "192.168.1.20", 4001))

	ev := nextEvent(t, d)
	assert.Equal(t, types.PeerAppeared, ev.Type)
	assert.Equal(t, remote, ev.Peer)
	assert.Equal(t, "192.168.1.20:4001", ev.Addr)

	// 重复的记录只刷新时间
	d.handleEntry(entryFor(remote, "192.168.1.20", 4001))
	assertNoEvent(t, d)

	// 地址变化重新发出 appeared
	d.handleEntry(entryFor(remote, "192.168.1.21", 4001))
	ev = nextEvent(t, d)
	assert.Equal(t, "192.168.1.21:4001", ev.Addr)
	assert.Equal(t, map[types.PeerID]string{remote: "192.168.1.21:4001"}, d.Peers())
}

func TestDiscoverer_IgnoresSelfAndInvalid(t *testing.T) {
	local := newPeerID(t)
	d := NewDiscoverer(testConfig(), local, WithClock(clock.NewMock()))
	defer d.Stop()

	d.handleEntry(nil)
	d.handleEntry(entryFor(local, "192.168.1.20", 4001))
	d.handleEntry(&mdns.ServiceEntry{AddrV4: net.ParseIP("192.168.1.30"), Port: 4001})
	d.handleEntry(entryFor(newPeerID(t), "192.168.1.40", 0))
	d.handleEntry(&mdns.ServiceEntry{Port: 4001, InfoFields: buildTXT(newPeerID(t))})

	assertNoEvent(t, d)
	assert.Empty(t, d.Peers())
}

func TestDiscoverer_IPv6Fallback(t *testing.T) {
	d := NewDiscoverer(testConfig(), newPeerID(t), WithClock(clock.NewMock()))
	defer d.Stop()

	remote := newPeerID(t)
	d.handleEntry(&mdns.ServiceEntry{
		AddrV6:     net.ParseIP("fd00::1"),
		Port:       4001,
		InfoFields: buildTXT(remote),
	})
	ev := nextEvent(t, d)
	assert.Equal(t, "[fd00::1]:4001", ev.Addr)
}

func TestDiscoverer_Expire(t *testing.T) {
	mock := clock.NewMock()
	cfg := testConfig()
	d := NewDiscoverer(cfg, newPeerID(t), WithClock(mock))
	defer d.Stop()

	stale := newPeerID(t)
	fresh := newPeerID(t)

	d.observe(stale, "192.168.1.2:4001")
	nextEvent(t, d)

	mock.Add(cfg.PeerTTL / 2)
	d.observe(fresh, "192.168.1.3:4001")
	nextEvent(t, d)

	mock.Add(cfg.PeerTTL/2 + time.Second)
	d.expire()

	ev := nextEvent(t, d)
	assert.Equal(t, types.PeerVanished, ev.Type)
	assert.Equal(t, stale, ev.Peer)
	assertNoEvent(t, d)
	assert.Contains(t, d.Peers(), fresh)

	// 过期后再次出现
	d.observe(stale, "192.168.1.2:4001")
	ev = nextEvent(t, d)
	assert.Equal(t, types.PeerAppeared, ev.Type)
}

func TestDiscoverer_StartRejectsBadPort(t *testing.T) {
	d := NewDiscoverer(testConfig(), newPeerID(t))
	defer d.Stop()

	assert.ErrorIs(t, d.Start(context.Background(), 0), ErrInvalidPort)
	assert.ErrorIs(t, d.Start(context.Background(), 70000), ErrInvalidPort)
}

func TestDiscoverer_StopClosesEvents(t *testing.T) {
	d := NewDiscoverer(testConfig(), newPeerID(t))
	require.NoError(t, d.Stop())
	require.NoError(t, d.Stop())

	_, ok := <-d.Events()
	assert.False(t, ok)
}

func TestDiscoverer_InstanceName(t *testing.T) {
	a := NewDiscoverer(testConfig(), newPeerID(t))
	b := NewDiscoverer(testConfig(), newPeerID(t))
	defer a.Stop()
	defer b.Stop()

	assert.Contains(t, a.Instance(), "meshchat-")
	assert.NotEqual(t, a.Instance(), b.Instance())
}

func TestScoreLANIP(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"192.168.1.1", true},
		{"10.0.0.1", true},
		{"172.16.5.4", true},
		{"fd00::1", true},
		{"169.254.1.1", true},
		{"127.0.0.1", false},
		{"0.0.0.0", false},
		{"8.8.8.8", false},
		{"100.64.1.1", false},
	}
	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.want, scoreLANIP(net.ParseIP(tt.ip)) > 0)
		})
	}

	assert.Greater(t, scoreLANIP(net.ParseIP("192.168.1.1")), scoreLANIP(net.ParseIP("10.0.0.1")))
	assert.Greater(t, scoreLANIP(net.ParseIP("10.0.0.1")), scoreLANIP(net.ParseIP("fd00::1")))
}

func TestIsVirtualInterface(t *testing.T) {
	assert.True(t, isVirtualInterface("docker0"))
	assert.True(t, isVirtualInterface("utun3"))
	assert.True(t, isVirtualInterface("WG0"))
	assert.False(t, isVirtualInterface("eth0"))
	assert.False(t, isVirtualInterface("en0"))
}
