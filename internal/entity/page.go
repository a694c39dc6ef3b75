package entity

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Page 是故事图中的一个节点。
// Section 与 ChoiceTitle 只在组装、渲染和导出时临时计算，不会被持久化。
type Page struct {
	ID              string    `json:"id"`
	StoryID         string    `json:"storyId"`
	PreviousPageID  *string   `json:"previousPageId"`
	Title           string    `json:"title"`
	Text            string    `json:"text"`
	First           bool      `json:"first"`
	End             bool      `json:"end"`
	TotalCharacters int       `json:"totalCharacters"`
	Image           *string   `json:"image"`
	Section         int       `json:"section"`
	ChoiceTitle     string    `json:"choiceTitle"`
	Choices         []*Choice `json:"choices,omitempty"`
}

// Validate checks the fields every stored page must carry.
func (p *Page) Validate() error {
	if strings.TrimSpace(p.StoryID) == "" {
		return fmt.Errorf("%w: page story id cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: page title cannot be empty", ErrValidation)
	}
	return nil
}

// HasImage reports whether an image asset is referenced.
func (p *Page) HasImage() bool {
	return p.Image != nil && strings.TrimSpace(*p.Image) != ""
}

// Heading returns the display heading used when the page is reached through a choice.
func (p *Page) Heading() string {
	if p.ChoiceTitle != "" {
		return p.ChoiceTitle
	}
	return p.Title
}

// RefreshCharacters recomputes the cached text length.
func (p *Page) RefreshCharacters() {
	p.TotalCharacters = CountCharacters(p.Text)
}

// CountCharacters counts runes, not bytes.
func CountCharacters(text string) int {
	return utf8.RuneCountInString(text)
}

// StringPtr returns nil for blank values.
func StringPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// StringValue dereferences a nullable string.
func StringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
