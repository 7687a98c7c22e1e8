package types

import (
	"errors"

	"github.com/mr-tron/base58"
)

// ============================================================================
//                              PeerID - 节点标识
// ============================================================================

// PeerIDLen PeerID 原始字节长度（公钥 SHA256 摘要）
const PeerIDLen = 32

// PeerID 节点标识，由节点公钥派生，进程生命周期内不变
//
// 外部表示为 Base58 字符串。
type PeerID [PeerIDLen]byte

// EmptyPeerID 零值
var EmptyPeerID PeerID

// ErrInvalidPeerID 无效的 PeerID
var ErrInvalidPeerID = errors.New("invalid peer id")

// String 返回 Base58 表示
func (id PeerID) String() string {
	if id.IsEmpty() {
		return ""
	}
	return base58.Encode(id[:])
}

// ShortString 日志用的短标识
func (id PeerID) ShortString() string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// Bytes 返回原始字节
func (id PeerID) Bytes() []byte {
	return id[:]
}

// IsEmpty 是否为零值
func (id PeerID) IsEmpty() bool {
	return id == EmptyPeerID
}

// PeerIDFromBytes 从 32 字节摘要构造 PeerID
func PeerIDFromBytes(b []byte) (PeerID, error) {
	var id PeerID
	if len(b) != PeerIDLen {
		return id, ErrInvalidPeerID
	}
	copy(id[:], b)
	return id, nil
}

// ParsePeerID 解析 Base58 字符串
func ParsePeerID(s string) (PeerID, error) {
	if s == "" {
		return EmptyPeerID, ErrInvalidPeerID
	}
	b, err := base58.Decode(s)
	if err != nil {
		return EmptyPeerID, ErrInvalidPeerID
	}
	return PeerIDFromBytes(b)
}

// ============================================================================
//                              MessageID - 消息标识
// ============================================================================

// MessageID 消息内容标识（载荷哈希的十六进制）
//
// 只由载荷决定：不同发送者发布的相同载荷得到相同的 MessageID。
type MessageID string

// String 返回字符串形式
func (id MessageID) String() string {
	return string(id)
}

// ============================================================================
//                              Topic - 主题
// ============================================================================

// Topic 人类可读的主题名，首次订阅或发布时隐式创建
type Topic = string
