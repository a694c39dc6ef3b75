package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ariane/internal/db"
	"github.com/ariane/internal/entity"
)

type gormStoryRepository struct {
	db *gorm.DB
}

// NewGormStoryRepository returns a StoryRepository backed by gorm.
func NewGormStoryRepository(gdb *gorm.DB) StoryRepository {
	return &gormStoryRepository{db: gdb}
}

func (r *gormStoryRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Story, error) {
	var records []db.Story
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(orderByCreation("stories")).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list stories of user %s: %w", userID, err)
	}

	stories := make([]*entity.Story, 0, len(records))
	for i := range records {
		stories = append(stories, records[i].ToEntity())
	}
	return stories, nil
}

func (r *gormStoryRepository) Get(ctx context.Context, id string) (*entity.Story, error) {
	var record db.Story
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "get story %s", id)
	}
	return record.ToEntity(), nil
}

// GetFull 对应文档库中的 match → lookup pages → lookup choices → group 聚合。
func (r *gormStoryRepository) GetFull(ctx context.Context, id string) (*entity.Story, error) {
	var record db.Story
	err := r.db.WithContext(ctx).
		Preload("Pages", func(tx *gorm.DB) *gorm.DB {
			return tx.Order(orderByCreation("pages"))
		}).
		Preload("Pages.Choices", func(tx *gorm.DB) *gorm.DB {
			return tx.Order(orderByCreation("choices"))
		}).
		First(&record, "id = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err, "get full story %s", id)
	}
	return record.ToEntity(), nil
}

func (r *gormStoryRepository) Create(ctx context.Context, story *entity.Story) (*entity.Story, error) {
	if err := story.Validate(); err != nil {
		return nil, err
	}

	record := db.StoryFromEntity(story)
	record.ID = ""
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("create story: %w", err)
	}
	return record.ToEntity(), nil
}

func (r *gormStoryRepository) Update(ctx context.Context, story *entity.Story) (*entity.Story, error) {
	if err := story.Validate(); err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).Model(&db.Story{}).
		Where("id = ?", story.ID).
		Updates(map[string]any{
			"title":            story.Title,
			"summary":          story.Summary,
			"cover":            story.Cover,
			"total_characters": story.TotalCharacters,
			"total_end":        story.TotalEnd,
			"total_pages":      story.TotalPages,
			"total_open_node":  story.TotalOpenNode,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("update story %s: %w", story.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("update story %s: %w", story.ID, entity.ErrNotFound)
	}
	return r.Get(ctx, story.ID)
}

func (r *gormStoryRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&db.Story{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete story %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete story %s: %w", id, entity.ErrNotFound)
	}
	return nil
}
