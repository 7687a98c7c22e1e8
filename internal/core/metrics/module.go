package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-meshchat/config"
	"github.com/dep2p/go-meshchat/internal/util/logger"
)

var log = logger.Logger("metrics")

// Params 模块依赖
type Params struct {
	fx.In

	Config *config.Config `optional:"true"`
}

// Module 是 metrics 的 fx 模块
var Module = fx.Module("metrics",
	fx.Provide(NewFromParams),
	fx.Invoke(registerLifecycle),
)

// NewFromParams 从统一配置创建指标集合
func NewFromParams(p Params) *Metrics {
	cfg := config.DefaultMetricsConfig()
	if p.Config != nil {
		cfg = p.Config.Metrics
	}
	return New(cfg.Namespace)
}

type lifecycleInput struct {
	fx.In

	LC      fx.Lifecycle
	Metrics *Metrics
	Config  *config.Config `optional:"true"`
}

func registerLifecycle(in lifecycleInput) {
	if in.Config == nil || !in.Config.Metrics.Enabled() {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", in.Metrics.Handler())
	srv := &http.Server{
		Addr:              in.Config.Metrics.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	in.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("metrics endpoint listening", "addr", ln.Addr().String())
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Warn("metrics server stopped", "err", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
