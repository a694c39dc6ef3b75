package entity

import (
	"fmt"
	"strings"
)

// Choice 是从 PageID 指向 SendToPageID 的有向边，Title 是展示给读者的选项文字。
type Choice struct {
	ID           string `json:"id"`
	PageID       string `json:"pageId"`
	SendToPageID string `json:"sendToPageId"`
	Title        string `json:"title"`
}

// Validate checks that both endpoints and the label are present.
func (c *Choice) Validate() error {
	if strings.TrimSpace(c.PageID) == "" {
		return fmt.Errorf("%w: choice page id cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(c.SendToPageID) == "" {
		return fmt.Errorf("%w: choice destination page id cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("%w: choice title cannot be empty", ErrValidation)
	}
	return nil
}
