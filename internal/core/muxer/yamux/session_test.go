package yamux

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-meshchat/pkg/types"
)

func newSessionPair(t *testing.T) (*Session, *Session) {
	t.Helper()
	c1, c2 := net.Pipe()

	now := time.Now()
	client, err := NewSession(c1, false, types.EmptyPeerID, nil, now)
	require.NoError(t, err)
	server, err := NewSession(c2, true, types.EmptyPeerID, nil, now)
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return client, server
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 256, cfg.AcceptBacklog)
	assert.True(t, cfg.EnableKeepAlive)
	assert.Equal(t, uint32(256*1024), cfg.MaxStreamWindowSize)
	assert.Equal(t, io.Discard, cfg.LogOutput)
}

func TestSession_OpenAccept(t *testing.T) {
	client, server := newSessionPair(t)

	go func() {
		st, err := client.OpenStream(context.Background())
		if err != nil {
			return
		}
		_, _ = st.Write([]byte("frame"))
		_ = st.Close()
	}()

	st, err := server.AcceptStream()
	require.NoError(t, err)
	data, err := io.ReadAll(st)
	require.NoError(t, err)
	assert.Equal(t, "frame", string(data))
}

func TestSession_AcceptAfterClose(t *testing.T) {
	_, server := newSessionPair(t)
	require.NoError(t, server.Close())

	_, err := server.AcceptStream()
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.True(t, server.IsClosed())

	select {
	case <-server.CloseChan():
	case <-time.After(time.Second):
		t.Fatal("close chan not closed")
	}
}

func TestSession_OpenOnClosed(t *testing.T) {
	client, _ := newSessionPair(t)
	require.NoError(t, client.Close())

	_, err := client.OpenStream(context.Background())
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSession_Touch(t *testing.T) {
	client, _ := newSessionPair(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	client.Touch(at)
	assert.True(t, client.IdleSince().Equal(at))
}
