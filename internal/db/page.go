package db

import (
	"time"

	"github.com/ariane/internal/entity"
)

// Page 是页面的存储结构；Section 与 ChoiceTitle 不落库。
type Page struct {
	ID              string `gorm:"primaryKey;size:36"`
	StoryID         string `gorm:"index;not null"`
	PreviousPageID  *string
	Title           string `gorm:"not null"`
	Text            string `gorm:"type:text"`
	First           bool
	End             bool
	TotalCharacters int
	Image           *string
	CreatedAt       time.Time
	Choices         []Choice `gorm:"foreignKey:PageID"`
}

// PageFromEntity converts a page into its storage record. Choices are not copied.
func PageFromEntity(p *entity.Page) Page {
	return Page{
		ID:              p.ID,
		StoryID:         p.StoryID,
		PreviousPageID:  p.PreviousPageID,
		Title:           p.Title,
		Text:            p.Text,
		First:           p.First,
		End:             p.End,
		TotalCharacters: p.TotalCharacters,
		Image:           p.Image,
	}
}

// ToEntity converts the record, including preloaded choices.
func (p *Page) ToEntity() *entity.Page {
	out := &entity.Page{
		ID:              p.ID,
		StoryID:         p.StoryID,
		PreviousPageID:  p.PreviousPageID,
		Title:           p.Title,
		Text:            p.Text,
		First:           p.First,
		End:             p.End,
		TotalCharacters: p.TotalCharacters,
		Image:           p.Image,
	}
	if len(p.Choices) > 0 {
		out.Choices = make([]*entity.Choice, 0, len(p.Choices))
		for i := range p.Choices {
			out.Choices = append(out.Choices, p.Choices[i].ToEntity())
		}
	}
	return out
}
