// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops background work before closing connections so no job
// fires against a disconnected database.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if reminder != nil {
		reminder.Stop()
	}
	if jobRunner != nil {
		jobRunner.Stop()
	}

	if deps.NATS != nil {
		if err := deps.NATS.Drain(); err != nil {
			logger.Warn("nats drain failed", zap.Error(err))
			deps.NATS.Close()
		}
	}

	if deps.MongoClient != nil {
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Warn("mongo disconnect failed", zap.Error(err))
			return err
		}
	}

	logger.Info("shutdown complete")
	return nil
}
