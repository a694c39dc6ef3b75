package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ariane/internal/db"
	"github.com/ariane/internal/entity"
)

type gormChoiceRepository struct {
	db *gorm.DB
}

// NewGormChoiceRepository returns a ChoiceRepository backed by gorm.
func NewGormChoiceRepository(gdb *gorm.DB) ChoiceRepository {
	return &gormChoiceRepository{db: gdb}
}

func (r *gormChoiceRepository) ListByPage(ctx context.Context, pageID string) ([]*entity.Choice, error) {
	var records []db.Choice
	if err := r.db.WithContext(ctx).
		Where("page_id = ?", pageID).
		Order(orderByCreation("choices")).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list choices of page %s: %w", pageID, err)
	}
	return choicesToEntities(records), nil
}

func (r *gormChoiceRepository) ListByStory(ctx context.Context, storyID string) ([]*entity.Choice, error) {
	var records []db.Choice
	pages := r.db.Model(&db.Page{}).Select("id").Where("story_id = ?", storyID)
	if err := r.db.WithContext(ctx).
		Where("page_id IN (?)", pages).
		Order(orderByCreation("choices")).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list choices of story %s: %w", storyID, err)
	}
	return choicesToEntities(records), nil
}

func (r *gormChoiceRepository) Get(ctx context.Context, id string) (*entity.Choice, error) {
	var record db.Choice
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "get choice %s", id)
	}
	return record.ToEntity(), nil
}

func (r *gormChoiceRepository) GetBySendToPage(ctx context.Context, pageID string) (*entity.Choice, error) {
	var record db.Choice
	if err := r.db.WithContext(ctx).
		Where("send_to_page_id = ?", pageID).
		Order(orderByCreation("choices")).
		First(&record).Error; err != nil {
		return nil, notFoundOr(err, "get choice sending to page %s", pageID)
	}
	return record.ToEntity(), nil
}

func (r *gormChoiceRepository) Create(ctx context.Context, choice *entity.Choice) (*entity.Choice, error) {
	if err := choice.Validate(); err != nil {
		return nil, err
	}

	record := db.ChoiceFromEntity(choice)
	record.ID = ""
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("create choice: %w", err)
	}
	return record.ToEntity(), nil
}

func (r *gormChoiceRepository) Update(ctx context.Context, choice *entity.Choice) (*entity.Choice, error) {
	if err := choice.Validate(); err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).Model(&db.Choice{}).
		Where("id = ?", choice.ID).
		Updates(map[string]any{
			"page_id":         choice.PageID,
			"send_to_page_id": choice.SendToPageID,
			"title":           choice.Title,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("update choice %s: %w", choice.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("update choice %s: %w", choice.ID, entity.ErrNotFound)
	}
	return r.Get(ctx, choice.ID)
}

func (r *gormChoiceRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&db.Choice{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete choice %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete choice %s: %w", id, entity.ErrNotFound)
	}
	return nil
}

func (r *gormChoiceRepository) DeleteByPage(ctx context.Context, pageID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("page_id = ?", pageID).Delete(&db.Choice{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete choices of page %s: %w", pageID, result.Error)
	}
	return result.RowsAffected, nil
}

func choicesToEntities(records []db.Choice) []*entity.Choice {
	choices := make([]*entity.Choice, 0, len(records))
	for i := range records {
		choices = append(choices, records[i].ToEntity())
	}
	return choices
}
