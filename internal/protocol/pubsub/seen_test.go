package pubsub

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-meshchat/pkg/types"
)

func TestSeenSet_CheckAndMark(t *testing.T) {
	s, err := newSeenSet(8, clock.NewMock())
	require.NoError(t, err)

	id := ComputeMessageID([]byte("hello"))
	assert.False(t, s.Contains(id))
	assert.False(t, s.AlreadySeen(id))
	assert.True(t, s.AlreadySeen(id))
	assert.True(t, s.Contains(id))
	assert.Equal(t, 1, s.Len())
}

// 容量 K 时插入 K+1 个不同 ID，最早插入的被淘汰，重放它会被当作新消息
func TestSeenSet_FIFOEviction(t *testing.T) {
	const capacity = 3
	s, err := newSeenSet(capacity, clock.NewMock())
	require.NoError(t, err)

	ids := make([]types.MessageID, capacity+1)
	for i := range ids {
		ids[i] = ComputeMessageID([]byte(fmt.Sprintf("m%d", i)))
	}

	for _, id := range ids[:capacity] {
		require.False(t, s.AlreadySeen(id))
	}
	// 重复检查不会刷新顺序
	require.True(t, s.AlreadySeen(ids[0]))

	require.False(t, s.AlreadySeen(ids[capacity]))
	assert.Equal(t, capacity, s.Len())
	assert.False(t, s.Contains(ids[0]))
	assert.True(t, s.Contains(ids[1]))

	assert.False(t, s.AlreadySeen(ids[0]), "evicted id is treated as unseen")
	assert.False(t, s.Contains(ids[1]), "next oldest evicted in turn")
}

func TestSeenSet_ArrivedAt(t *testing.T) {
	clk := clock.NewMock()
	clk.Set(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	s, err := newSeenSet(4, clk)
	require.NoError(t, err)

	id := ComputeMessageID([]byte("x"))
	s.AlreadySeen(id)
	first := clk.Now()

	clk.Add(time.Minute)
	s.AlreadySeen(id)

	at, ok := s.ArrivedAt(id)
	require.True(t, ok)
	assert.Equal(t, first, at)

	_, ok = s.ArrivedAt(ComputeMessageID([]byte("y")))
	assert.False(t, ok)
}

func TestSeenSet_InvalidCapacity(t *testing.T) {
	_, err := newSeenSet(0, clock.NewMock())
	assert.Error(t, err)
}

func TestSeenSet_ConcurrentCheckAndMark(t *testing.T) {
	s, err := newSeenSet(16, clock.New())
	require.NoError(t, err)

	id := ComputeMessageID([]byte("race"))
	var firsts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !s.AlreadySeen(id) {
				firsts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), firsts.Load())
}
