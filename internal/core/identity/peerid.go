package identity

import (
	"crypto/ed25519"

	"github.com/minio/sha256-simd"

	"github.com/dep2p/go-meshchat/pkg/types"
)

// PeerIDFromPublicKey 从原始 Ed25519 公钥派生 PeerID
func PeerIDFromPublicKey(pub []byte) (types.PeerID, error) {
	if len(pub) != ed25519.PublicKeySize {
		return types.EmptyPeerID, ErrInvalidPublicKey
	}
	return peerIDFromKey(pub), nil
}

func peerIDFromKey(pub []byte) types.PeerID {
	return types.PeerID(sha256.Sum256(pub))
}
