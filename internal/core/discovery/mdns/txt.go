package mdns

import (
	"strings"

	"github.com/dep2p/go-meshchat/pkg/types"
)

const (
	txtPeerID  = "id="
	txtVersion = "v="

	protocolVersion = "1"
)

// buildTXT 构建 TXT 记录
func buildTXT(id types.PeerID) []string {
	return []string{
		txtPeerID + id.String(),
		txtVersion + protocolVersion,
	}
}

// parseTXT 从 TXT 记录中取出 PeerID
func parseTXT(fields []string) (types.PeerID, bool) {
	for _, f := range fields {
		if !strings.HasPrefix(f, txtPeerID) {
			continue
		}
		id, err := types.ParsePeerID(strings.TrimPrefix(f, txtPeerID))
		if err != nil {
			return types.EmptyPeerID, false
		}
		return id, true
	}
	return types.EmptyPeerID, false
}
