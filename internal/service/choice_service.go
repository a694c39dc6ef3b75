package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ariane/internal/entity"
	"github.com/ariane/internal/repository"
)

// ChoiceInput 是创建与更新选项的载荷。
type ChoiceInput struct {
	SendToPageID string `json:"sendToPageId"`
	Title        string `json:"title"`
}

// ChoiceService manages the edges between pages.
type ChoiceService struct {
	pages   repository.PageRepository
	choices repository.ChoiceRepository
}

// NewChoiceService returns a new ChoiceService instance.
func NewChoiceService(store *repository.Store) *ChoiceService {
	return &ChoiceService{pages: store.Pages, choices: store.Choices}
}

func (s *ChoiceService) ListByPage(ctx context.Context, pageID string) ([]*entity.Choice, error) {
	return s.choices.ListByPage(ctx, pageID)
}

func (s *ChoiceService) DeleteByPage(ctx context.Context, pageID string) (int64, error) {
	return s.choices.DeleteByPage(ctx, pageID)
}

func (s *ChoiceService) Get(ctx context.Context, id string) (*entity.Choice, error) {
	return s.choices.Get(ctx, id)
}

// GetBySendTo returns the first choice leading to pageID.
func (s *ChoiceService) GetBySendTo(ctx context.Context, pageID string) (*entity.Choice, error) {
	return s.choices.GetBySendToPage(ctx, pageID)
}

func (s *ChoiceService) Create(ctx context.Context, pageID string, input ChoiceInput) (*entity.Choice, error) {
	choice := &entity.Choice{
		PageID:       strings.TrimSpace(pageID),
		SendToPageID: strings.TrimSpace(input.SendToPageID),
		Title:        strings.TrimSpace(input.Title),
	}
	if err := s.checkEndpoints(ctx, choice); err != nil {
		return nil, err
	}
	return s.choices.Create(ctx, choice)
}

func (s *ChoiceService) Update(ctx context.Context, id string, input ChoiceInput) (*entity.Choice, error) {
	choice, err := s.choices.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	choice.SendToPageID = strings.TrimSpace(input.SendToPageID)
	choice.Title = strings.TrimSpace(input.Title)
	if err := s.checkEndpoints(ctx, choice); err != nil {
		return nil, err
	}
	return s.choices.Update(ctx, choice)
}

func (s *ChoiceService) Delete(ctx context.Context, id string) error {
	return s.choices.Delete(ctx, id)
}

// checkEndpoints 要求起点与终点页面都存在，且属于同一个故事。
func (s *ChoiceService) checkEndpoints(ctx context.Context, choice *entity.Choice) error {
	if err := choice.Validate(); err != nil {
		return err
	}

	origin, err := s.endpoint(ctx, choice.PageID, "origin")
	if err != nil {
		return err
	}
	destination, err := s.endpoint(ctx, choice.SendToPageID, "destination")
	if err != nil {
		return err
	}
	if origin.StoryID != destination.StoryID {
		return fmt.Errorf("%w: choice cannot link pages of different stories", entity.ErrValidation)
	}
	return nil
}

func (s *ChoiceService) endpoint(ctx context.Context, pageID, role string) (*entity.Page, error) {
	page, err := s.pages.Get(ctx, pageID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s page %s does not exist", entity.ErrValidation, role, pageID)
		}
		return nil, err
	}
	return page, nil
}
