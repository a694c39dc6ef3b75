package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ariane/internal/db"
	"github.com/ariane/internal/entity"
)

type gormPageRepository struct {
	db *gorm.DB
}

// NewGormPageRepository returns a PageRepository backed by gorm.
func NewGormPageRepository(gdb *gorm.DB) PageRepository {
	return &gormPageRepository{db: gdb}
}

func (r *gormPageRepository) ListByStory(ctx context.Context, storyID string) ([]*entity.Page, error) {
	var records []db.Page
	if err := r.db.WithContext(ctx).
		Where("story_id = ?", storyID).
		Order(orderByCreation("pages")).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list pages of story %s: %w", storyID, err)
	}

	pages := make([]*entity.Page, 0, len(records))
	for i := range records {
		pages = append(pages, records[i].ToEntity())
	}
	return pages, nil
}

func (r *gormPageRepository) Get(ctx context.Context, id string) (*entity.Page, error) {
	var record db.Page
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "get page %s", id)
	}
	return record.ToEntity(), nil
}

func (r *gormPageRepository) Create(ctx context.Context, page *entity.Page) (*entity.Page, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	record := db.PageFromEntity(page)
	record.ID = ""
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return record.ToEntity(), nil
}

func (r *gormPageRepository) Update(ctx context.Context, page *entity.Page) (*entity.Page, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).Model(&db.Page{}).
		Where("id = ?", page.ID).
		Updates(map[string]any{
			"previous_page_id": page.PreviousPageID,
			"title":            page.Title,
			"text":             page.Text,
			"first":            page.First,
			"end":              page.End,
			"total_characters": page.TotalCharacters,
			"image":            page.Image,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("update page %s: %w", page.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("update page %s: %w", page.ID, entity.ErrNotFound)
	}
	return r.Get(ctx, page.ID)
}

func (r *gormPageRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&db.Page{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete page %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete page %s: %w", id, entity.ErrNotFound)
	}
	return nil
}

func (r *gormPageRepository) DeleteByStory(ctx context.Context, storyID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("story_id = ?", storyID).Delete(&db.Page{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete pages of story %s: %w", storyID, result.Error)
	}
	return result.RowsAffected, nil
}
