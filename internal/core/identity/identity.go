package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/dep2p/go-meshchat/pkg/types"
)

// Identity 本节点的签名身份，创建后不可变
type Identity struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
	id   types.PeerID
}

// Generate 使用 crypto/rand 生成新身份
func Generate() (*Identity, error) {
	return GenerateFrom(rand.Reader)
}

// GenerateFrom 使用指定随机源生成身份
func GenerateFrom(r io.Reader) (*Identity, error) {
	pub, priv, err := ed25519.GenerateKey(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}
	return newIdentity(priv, pub), nil
}

// FromPrivateKey 从已有私钥构造身份
func FromPrivateKey(priv ed25519.PrivateKey) *Identity {
	return newIdentity(priv, priv.Public().(ed25519.PublicKey))
}

func newIdentity(priv ed25519.PrivateKey, pub ed25519.PublicKey) *Identity {
	return &Identity{
		priv: priv,
		pub:  pub,
		id:   peerIDFromKey(pub),
	}
}

// ID 返回 PeerID
func (i *Identity) ID() types.PeerID {
	return i.id
}

// PublicKey 返回原始公钥字节（32 字节）
func (i *Identity) PublicKey() []byte {
	return i.pub
}

// Sign 对数据签名
func (i *Identity) Sign(data []byte) []byte {
	return ed25519.Sign(i.priv, data)
}
