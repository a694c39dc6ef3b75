package db

import (
	"time"

	"github.com/ariane/internal/entity"
)

// Story 是故事在 sqlite 中的存储结构。
type Story struct {
	ID              string `gorm:"primaryKey;size:36"`
	UserID          string `gorm:"index;not null"`
	Title           string `gorm:"not null"`
	Summary         string `gorm:"type:text"`
	Cover           *string
	TotalCharacters int
	TotalEnd        int
	TotalPages      int
	TotalOpenNode   int
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Pages           []Page `gorm:"foreignKey:StoryID"`
}

// StoryFromEntity converts a story into its storage record. Pages are not copied.
func StoryFromEntity(s *entity.Story) Story {
	return Story{
		ID:              s.ID,
		UserID:          s.UserID,
		Title:           s.Title,
		Summary:         s.Summary,
		Cover:           s.Cover,
		TotalCharacters: s.TotalCharacters,
		TotalEnd:        s.TotalEnd,
		TotalPages:      s.TotalPages,
		TotalOpenNode:   s.TotalOpenNode,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// ToEntity converts the record, including preloaded pages and their choices.
func (s *Story) ToEntity() *entity.Story {
	out := &entity.Story{
		ID:              s.ID,
		UserID:          s.UserID,
		Title:           s.Title,
		Summary:         s.Summary,
		Cover:           s.Cover,
		TotalCharacters: s.TotalCharacters,
		TotalEnd:        s.TotalEnd,
		TotalPages:      s.TotalPages,
		TotalOpenNode:   s.TotalOpenNode,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
	if len(s.Pages) > 0 {
		out.Pages = make([]*entity.Page, 0, len(s.Pages))
		for i := range s.Pages {
			out.Pages = append(out.Pages, s.Pages[i].ToEntity())
		}
	}
	return out
}
