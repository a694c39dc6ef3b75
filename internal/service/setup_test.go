package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ariane/internal/assets"
	"github.com/ariane/internal/db"
	"github.com/ariane/internal/repository"
)

type stubIssuer struct{}

func (stubIssuer) Generate(userID string) (string, error) {
	return "token-" + userID, nil
}

func setupServiceStore(t *testing.T) *repository.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	store := repository.NewGormStore(gdb)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func setupAssetStore(t *testing.T) *assets.FileStore {
	t.Helper()
	fs, err := assets.NewFileStore(t.TempDir(), "/static/uploads")
	if err != nil {
		t.Fatalf("failed to create asset store: %v", err)
	}
	return fs
}
