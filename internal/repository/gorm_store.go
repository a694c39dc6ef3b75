package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ariane/internal/entity"
)

// NewGormStore wires gorm-backed repositories around a single connection pool.
func NewGormStore(gdb *gorm.DB) *Store {
	return &Store{
		Stories: NewGormStoryRepository(gdb),
		Pages:   NewGormPageRepository(gdb),
		Choices: NewGormChoiceRepository(gdb),
		Users:   NewGormUserRepository(gdb),
		close: func(context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

// notFoundOr translates gorm's missing-record error into the application taxonomy.
func notFoundOr(err error, format string, args ...any) error {
	op := fmt.Sprintf(format, args...)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, entity.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func orderByCreation(table string) string {
	return table + ".created_at asc, " + table + ".id asc"
}
