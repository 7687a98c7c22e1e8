package host

import (
	"sync"

	"github.com/dep2p/go-meshchat/pkg/types"
)

// addrBook 对端拨号地址表
type addrBook struct {
	mu    sync.RWMutex
	addrs map[types.PeerID]string
}

func newAddrBook() *addrBook {
	return &addrBook{addrs: make(map[types.PeerID]string)}
}

// set 记录地址，返回地址是否发生变化
func (b *addrBook) set(peer types.PeerID, addr string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	old, ok := b.addrs[peer]
	b.addrs[peer] = addr
	return ok && old != addr
}

func (b *addrBook) get(peer types.PeerID) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	addr, ok := b.addrs[peer]
	return addr, ok
}

func (b *addrBook) remove(peer types.PeerID) {
	b.mu.Lock()
	delete(b.addrs, peer)
	b.mu.Unlock()
}

func (b *addrBook) len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.addrs)
}
