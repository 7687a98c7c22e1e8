package config

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// PubSubConfig 发布订阅配置
type PubSubConfig struct {
	// BroadcastTopic 没有 t: 前缀的输入行发布到的主题
	BroadcastTopic string `validate:"required,max=256"`

	// PersonalTopic 本节点启动时订阅的私有主题，为空时随机生成
	PersonalTopic string `validate:"omitempty,max=256"`

	// SeenCapacity 去重缓存容量，超出后按插入顺序淘汰
	SeenCapacity int `validate:"min=1"`

	// MaxMessageSize 单条消息载荷上限
	MaxMessageSize int `validate:"min=1"`

	// MaxTopicLength 主题名长度上限
	MaxTopicLength int `validate:"min=1"`

	// HeartbeatInterval 心跳周期，用于统计与指标刷新
	HeartbeatInterval time.Duration `validate:"gt=0"`
}

// DefaultPubSubConfig 返回默认配置
func DefaultPubSubConfig() PubSubConfig {
	return PubSubConfig{
		BroadcastTopic:    "topic-broadcast",
		SeenCapacity:      4096,
		MaxMessageSize:    64 << 10,
		MaxTopicLength:    256,
		HeartbeatInterval: 10 * time.Second,
	}
}

// RandomPersonalTopic 生成 topic-<u32> 形式的私有主题
func RandomPersonalTopic() string {
	return fmt.Sprintf("topic-%d", rand.Uint32())
}
