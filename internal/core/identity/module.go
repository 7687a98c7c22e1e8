package identity

import (
	"context"
	"crypto/ed25519"

	"go.uber.org/fx"

	"github.com/dep2p/go-meshchat/internal/util/logger"
)

var log = logger.Logger("identity")

// ModuleInput 模块输入
type ModuleInput struct {
	fx.In

	// PrivateKey 可选的固定私钥（测试用），为空时随机生成
	PrivateKey ed25519.PrivateKey `optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Identity *Identity
}

// ProvideIdentity 提供本节点身份
func ProvideIdentity(in ModuleInput) (ModuleOutput, error) {
	if len(in.PrivateKey) == ed25519.PrivateKeySize {
		return ModuleOutput{Identity: FromPrivateKey(in.PrivateKey)}, nil
	}
	id, err := Generate()
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Identity: id}, nil
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("identity",
		fx.Provide(ProvideIdentity),
		fx.Invoke(registerLifecycle),
	)
}

func registerLifecycle(lc fx.Lifecycle, id *Identity) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			log.Info("local identity ready", "peer", id.ID().String())
			return nil
		},
	})
}
