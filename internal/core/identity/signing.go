package identity

import (
	"crypto/ed25519"

	"github.com/dep2p/go-meshchat/pkg/types"
)

// Verify 用原始公钥校验签名
func Verify(pub, data, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(pub, data, sig)
}

// VerifyFrom 校验签名确实出自 peer
//
// 先确认公钥派生出 peer，再校验签名。
func VerifyFrom(peer types.PeerID, pub, data, sig []byte) error {
	derived, err := PeerIDFromPublicKey(pub)
	if err != nil {
		return err
	}
	if derived != peer {
		return ErrPeerIDMismatch
	}
	if !Verify(pub, data, sig) {
		return ErrInvalidSignature
	}
	return nil
}
