package repository

import (
	"context"
	"fmt"

	"github.com/ariane/internal/config"
	"github.com/ariane/internal/db"
)

// Open 按配置的存储驱动创建 Store。
func Open(ctx context.Context, cfg config.AppConfig) (*Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.StoreSQLite, "":
		gdb, err := db.Open(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.DatabasePath, err)
		}
		return NewGormStore(gdb), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
