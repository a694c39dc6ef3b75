// Package repository 定义按实体划分的持久化接口，以及 gorm(sqlite) 与 MongoDB 两种实现。
package repository

import (
	"context"

	"github.com/ariane/internal/entity"
)

// StoryRepository persists stories.
type StoryRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*entity.Story, error)
	Get(ctx context.Context, id string) (*entity.Story, error)
	// GetFull returns the story with its pages, each page carrying its outgoing choices.
	GetFull(ctx context.Context, id string) (*entity.Story, error)
	Create(ctx context.Context, story *entity.Story) (*entity.Story, error)
	Update(ctx context.Context, story *entity.Story) (*entity.Story, error)
	Delete(ctx context.Context, id string) error
}

// PageRepository persists pages.
type PageRepository interface {
	ListByStory(ctx context.Context, storyID string) ([]*entity.Page, error)
	Get(ctx context.Context, id string) (*entity.Page, error)
	Create(ctx context.Context, page *entity.Page) (*entity.Page, error)
	Update(ctx context.Context, page *entity.Page) (*entity.Page, error)
	Delete(ctx context.Context, id string) error
	DeleteByStory(ctx context.Context, storyID string) (int64, error)
}

// ChoiceRepository persists choices.
type ChoiceRepository interface {
	ListByPage(ctx context.Context, pageID string) ([]*entity.Choice, error)
	// ListByStory returns every choice whose origin page belongs to the story.
	ListByStory(ctx context.Context, storyID string) ([]*entity.Choice, error)
	Get(ctx context.Context, id string) (*entity.Choice, error)
	GetBySendToPage(ctx context.Context, pageID string) (*entity.Choice, error)
	Create(ctx context.Context, choice *entity.Choice) (*entity.Choice, error)
	Update(ctx context.Context, choice *entity.Choice) (*entity.Choice, error)
	Delete(ctx context.Context, id string) error
	DeleteByPage(ctx context.Context, pageID string) (int64, error)
}

// UserRepository persists users.
type UserRepository interface {
	List(ctx context.Context) ([]*entity.User, error)
	Get(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Create(ctx context.Context, user *entity.User) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) (*entity.User, error)
	Delete(ctx context.Context, id string) error
}

// Store 聚合一次启动创建的全部仓储，由 main 注入到各个服务。
type Store struct {
	Stories StoryRepository
	Pages   PageRepository
	Choices ChoiceRepository
	Users   UserRepository

	close func(ctx context.Context) error
}

// Close releases the underlying connection pool.
func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close(ctx)
}
