package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ariane/internal/db"
	"github.com/ariane/internal/entity"
)

type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository returns a UserRepository backed by gorm.
func NewGormUserRepository(gdb *gorm.DB) UserRepository {
	return &gormUserRepository{db: gdb}
}

func (r *gormUserRepository) List(ctx context.Context) ([]*entity.User, error) {
	var records []db.User
	if err := r.db.WithContext(ctx).Order("email asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]*entity.User, 0, len(records))
	for i := range records {
		users = append(users, records[i].ToEntity())
	}
	return users, nil
}

func (r *gormUserRepository) Get(ctx context.Context, id string) (*entity.User, error) {
	var record db.User
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "get user %s", id)
	}
	return record.ToEntity(), nil
}

func (r *gormUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var record db.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&record).Error; err != nil {
		return nil, notFoundOr(err, "get user by email")
	}
	return record.ToEntity(), nil
}

func (r *gormUserRepository) Create(ctx context.Context, user *entity.User) (*entity.User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}

	record := db.UserFromEntity(user)
	record.ID = ""
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return record.ToEntity(), nil
}

func (r *gormUserRepository) Update(ctx context.Context, user *entity.User) (*entity.User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).Model(&db.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"user_name":  user.UserName,
			"email":      user.Email,
			"password":   user.Password,
			"salt":       user.Salt,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("update user %s: %w", user.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("update user %s: %w", user.ID, entity.ErrNotFound)
	}
	return r.Get(ctx, user.ID)
}

func (r *gormUserRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&db.User{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete user %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete user %s: %w", id, entity.ErrNotFound)
	}
	return nil
}
