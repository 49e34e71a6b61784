// Package store 提供 core.Store 的实现，接口定义在 core 包。
//
// 示例：
//
//	var s core.Store = store.NewMemoryStore()
package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rushteam/shoprec/config"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/logger"
)

// Open 按配置选择存储后端：memory / badger / redis / postgres。
func Open(ctx context.Context, cfg config.StoreSettings, l *zap.Logger) (core.Store, error) {
	log := logger.OrNop(l)

	var (
		s   core.Store
		err error
	)
	switch cfg.Backend {
	case "memory":
		s = NewMemoryStore()
	case "", "badger":
		s, err = NewBadgerStore(BadgerOptions{
			Path:     cfg.Badger.Path,
			InMemory: cfg.Badger.InMemory,
			Logger:   log,
		})
	case "redis":
		s, err = NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	case "postgres":
		s, err = OpenSQLStore(ctx, cfg.Postgres.DSN, cfg.Postgres.Table)
	default:
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotSupported,
			fmt.Sprintf("store: unknown backend %q", cfg.Backend))
	}
	if err != nil {
		return nil, err
	}

	log.Info("store opened", zap.String("backend", s.Name()))
	return s, nil
}
