package pubsub

import (
	"bytes"
	"slices"

	"github.com/dep2p/go-meshchat/pkg/types"
)

// membershipTable 主题 -> 可扇出的节点集合
//
// 只由 Engine 持有和修改，不加锁。主题一旦出现就不会被删除，
// 节点离开后可能留下空集合。
type membershipTable struct {
	topics map[string]map[types.PeerID]struct{}
}

func newMembershipTable() *membershipTable {
	return &membershipTable{
		topics: make(map[string]map[types.PeerID]struct{}),
	}
}

// AddPeer 把节点加入主题，幂等
func (mt *membershipTable) AddPeer(topic string, peer types.PeerID) bool {
	set, ok := mt.topics[topic]
	if !ok {
		set = make(map[types.PeerID]struct{})
		mt.topics[topic] = set
	}
	if _, exists := set[peer]; exists {
		return false
	}
	set[peer] = struct{}{}
	return true
}

// RemovePeer 把节点从所有主题移除，返回受影响的主题数
func (mt *membershipTable) RemovePeer(peer types.PeerID) int {
	removed := 0
	for _, set := range mt.topics {
		if _, ok := set[peer]; ok {
			delete(set, peer)
			removed++
		}
	}
	return removed
}

// PeersFor 返回主题的节点列表副本，按字节序排序；未知主题返回空
func (mt *membershipTable) PeersFor(topic string) []types.PeerID {
	set := mt.topics[topic]
	if len(set) == 0 {
		return nil
	}
	peers := make([]types.PeerID, 0, len(set))
	for p := range set {
		peers = append(peers, p)
	}
	slices.SortFunc(peers, func(a, b types.PeerID) int {
		return bytes.Compare(a[:], b[:])
	})
	return peers
}

// Has 节点是否在主题中
func (mt *membershipTable) Has(topic string, peer types.PeerID) bool {
	_, ok := mt.topics[topic][peer]
	return ok
}

// Topics 已出现过的主题数
func (mt *membershipTable) Topics() int {
	return len(mt.topics)
}
