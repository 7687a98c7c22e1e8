package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Valid(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "topic-broadcast", cfg.PubSub.BroadcastTopic)
	assert.Equal(t, 60*time.Second, cfg.Transport.IdleConnTimeout)
	assert.Equal(t, 10*time.Second, cfg.PubSub.HeartbeatInterval)
	assert.False(t, cfg.Metrics.Enabled())
}

func TestValidate_Nil(t *testing.T) {
	var cfg *Config
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestValidate_ListenAddr(t *testing.T) {
	cfg := NewConfig()
	cfg.Transport.ListenAddr = "not-an-address"

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "ListenAddr")

	cfg.Transport.ListenAddr = "127.0.0.1:4001"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_DiscoveryTimings(t *testing.T) {
	cfg := NewConfig()
	cfg.Discovery.QueryTimeout = cfg.Discovery.QueryInterval
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QueryTimeout")

	cfg = NewConfig()
	cfg.Discovery.PeerTTL = cfg.Discovery.QueryInterval / 2
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PeerTTL")
}

func TestValidate_ServiceTagRequiredWhenEnabled(t *testing.T) {
	cfg := NewConfig()
	cfg.Discovery.ServiceTag = ""
	assert.Error(t, cfg.Validate())

	cfg.Discovery.EnableMDNS = false
	assert.NoError(t, cfg.Validate())
}

func TestValidate_PubSub(t *testing.T) {
	cfg := NewConfig()
	cfg.PubSub.BroadcastTopic = ""
	cfg.PubSub.SeenCapacity = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BroadcastTopic")
	assert.Contains(t, err.Error(), "SeenCapacity")
}

func TestValidate_MetricsAddr(t *testing.T) {
	cfg := NewConfig()
	cfg.Metrics.ListenAddr = "127.0.0.1:9464"
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Metrics.Enabled())

	cfg.Metrics.ListenAddr = "9464"
	assert.Error(t, cfg.Validate())
}

func TestRandomPersonalTopic(t *testing.T) {
	topic := RandomPersonalTopic()
	assert.True(t, strings.HasPrefix(topic, "topic-"))
	assert.Greater(t, len(topic), len("topic-"))
}

func TestMustValidate(t *testing.T) {
	cfg := NewConfig()
	assert.NotPanics(t, func() { MustValidate(cfg) })

	cfg.PubSub.MaxMessageSize = 0
	assert.Panics(t, func() { MustValidate(cfg) })
}
