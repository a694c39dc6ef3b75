package entity

import (
	"fmt"
	"strings"
	"time"
)

// Story 是一个可交互故事，页面通过 Page.StoryID 归属于它。
type Story struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	Title           string    `json:"title"`
	Summary         string    `json:"summary"`
	Cover           *string   `json:"cover"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	TotalCharacters int       `json:"totalCharacters"`
	TotalEnd        int       `json:"totalEnd"`
	TotalPages      int       `json:"totalPages"`
	TotalOpenNode   int       `json:"totalOpenNode"`
	Pages           []*Page   `json:"pages,omitempty"`
}

// Validate checks the fields every stored story must carry.
func (s *Story) Validate() error {
	if strings.TrimSpace(s.UserID) == "" {
		return fmt.Errorf("%w: story user id cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("%w: story title cannot be empty", ErrValidation)
	}
	return nil
}

// HasCover reports whether a cover asset is referenced.
func (s *Story) HasCover() bool {
	return s.Cover != nil && strings.TrimSpace(*s.Cover) != ""
}

// Stats 汇总故事的四个冗余计数。
type Stats struct {
	TotalCharacters int
	TotalEnd        int
	TotalPages      int
	TotalOpenNode   int
}

// ComputeStats derives the denormalized counters from pages with their outgoing choices attached.
// An open node is a page that is neither an end nor has any outgoing choice.
func ComputeStats(pages []*Page) Stats {
	var stats Stats
	for _, page := range pages {
		stats.TotalPages++
		stats.TotalCharacters += CountCharacters(page.Text)
		if page.End {
			stats.TotalEnd++
			continue
		}
		if len(page.Choices) == 0 {
			stats.TotalOpenNode++
		}
	}
	return stats
}

// ApplyStats copies counters onto the story.
func (s *Story) ApplyStats(stats Stats) {
	s.TotalCharacters = stats.TotalCharacters
	s.TotalEnd = stats.TotalEnd
	s.TotalPages = stats.TotalPages
	s.TotalOpenNode = stats.TotalOpenNode
}
