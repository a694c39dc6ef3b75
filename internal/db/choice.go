package db

import (
	"time"

	"github.com/ariane/internal/entity"
)

// Choice 是选项的存储结构。
type Choice struct {
	ID           string `gorm:"primaryKey;size:36"`
	PageID       string `gorm:"index;not null"`
	SendToPageID string `gorm:"index;not null"`
	Title        string `gorm:"not null"`
	CreatedAt    time.Time
}

func ChoiceFromEntity(c *entity.Choice) Choice {
	return Choice{
		ID:           c.ID,
		PageID:       c.PageID,
		SendToPageID: c.SendToPageID,
		Title:        c.Title,
	}
}

func (c *Choice) ToEntity() *entity.Choice {
	return &entity.Choice{
		ID:           c.ID,
		PageID:       c.PageID,
		SendToPageID: c.SendToPageID,
		Title:        c.Title,
	}
}
