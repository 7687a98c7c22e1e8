// Package noise 用 Noise XX 握手保护 TCP 连接并认证对端 PeerID
//
// 握手使用 Noise_XX_25519_ChaChaPoly_SHA256：
//
//	-> e
//	<- e, ee, s, es, payload
//	-> s, se, payload
//
// 每个 Transport 持有一把独立生成的 X25519 静态密钥，通过握手 payload
// 绑定到节点的 Ed25519 身份：
//
//	payload = { identity_key: Ed25519 公钥, identity_sig: Sign(prefix || x25519 静态公钥) }
//
// 对端 PeerID 由 identity_key 派生。发起方可以指定期望的 PeerID，不一致时握手失败。
//
// 握手之后每条记录是 2 字节大端长度 + 密文，单条明文最多 MaxPlaintextSize 字节，
// 更大的写入会被拆分。
package noise
