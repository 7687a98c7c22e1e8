package noise

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-meshchat/internal/core/identity"
	"github.com/dep2p/go-meshchat/pkg/types"
)

// staticKeySigPrefix 绑定签名的域分隔前缀
const staticKeySigPrefix = "noise-meshchat-static-key:"

const (
	fieldIdentityKey protowire.Number = 1
	fieldIdentitySig protowire.Number = 2
)

func buildPayload(id *identity.Identity, staticPub []byte) []byte {
	sig := id.Sign(append([]byte(staticKeySigPrefix), staticPub...))

	b := protowire.AppendTag(nil, fieldIdentityKey, protowire.BytesType)
	b = protowire.AppendBytes(b, id.PublicKey())
	b = protowire.AppendTag(b, fieldIdentitySig, protowire.BytesType)
	b = protowire.AppendBytes(b, sig)
	return b
}

// verifyPayload 校验对端 payload 确实把 remoteStatic 绑定到其身份，返回对端 PeerID
func verifyPayload(payload, remoteStatic []byte) (types.PeerID, error) {
	var key, sig []byte
	for len(payload) > 0 {
		num, typ, n := protowire.ConsumeTag(payload)
		if n < 0 {
			return types.EmptyPeerID, fmt.Errorf("%w: %v", ErrInvalidPayload, protowire.ParseError(n))
		}
		payload = payload[n:]

		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, payload)
		} else {
			var v []byte
			v, n = protowire.ConsumeBytes(payload)
			switch num {
			case fieldIdentityKey:
				key = v
			case fieldIdentitySig:
				sig = v
			}
		}
		if n < 0 {
			return types.EmptyPeerID, fmt.Errorf("%w: %v", ErrInvalidPayload, protowire.ParseError(n))
		}
		payload = payload[n:]
	}

	peer, err := identity.PeerIDFromPublicKey(key)
	if err != nil {
		return types.EmptyPeerID, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if !identity.Verify(key, append([]byte(staticKeySigPrefix), remoteStatic...), sig) {
		return types.EmptyPeerID, fmt.Errorf("%w: static key not signed by identity", ErrInvalidPayload)
	}
	return peer, nil
}
