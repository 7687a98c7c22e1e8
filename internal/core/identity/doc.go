// Package identity 管理本节点的签名身份
//
// 进程启动时生成一对 Ed25519 密钥，PeerID 由公钥派生：
//
//	PeerID = SHA256(公钥)，外部表示为 Base58
//
// 身份只存在于内存中，进程退出即丢弃。随机源失败视为致命的启动错误。
//
// 使用示例:
//
//	id, err := identity.Generate()
//	sig := id.Sign(data)
//	err = identity.VerifyFrom(id.ID(), id.PublicKey(), data, sig)
package identity
