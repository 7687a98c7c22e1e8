package pubsub

import (
	"time"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dep2p/go-meshchat/pkg/types"
)

// seenSet 有界的已见消息集合
//
// 只通过 ContainsOrAdd / Contains / Peek 访问底层 LRU，这三个操作都不刷新
// 条目的新旧顺序，因此淘汰顺序就是插入顺序（FIFO）。被淘汰的 ID 再次到达
// 时会被当作新消息。
type seenSet struct {
	cache *lru.Cache[types.MessageID, time.Time]
	clock clock.Clock
}

func newSeenSet(capacity int, clk clock.Clock) (*seenSet, error) {
	cache, err := lru.New[types.MessageID, time.Time](capacity)
	if err != nil {
		return nil, err
	}
	return &seenSet{cache: cache, clock: clk}, nil
}

// AlreadySeen 原子地检查并标记，返回调用前是否已见
func (s *seenSet) AlreadySeen(id types.MessageID) bool {
	seen, _ := s.cache.ContainsOrAdd(id, s.clock.Now())
	return seen
}

// Contains 只读检查
func (s *seenSet) Contains(id types.MessageID) bool {
	return s.cache.Contains(id)
}

// ArrivedAt 首次标记的时间
func (s *seenSet) ArrivedAt(id types.MessageID) (time.Time, bool) {
	return s.cache.Peek(id)
}

// Len 当前条目数
func (s *seenSet) Len() int {
	return s.cache.Len()
}
