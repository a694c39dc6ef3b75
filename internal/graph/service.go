package graph

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ariane/internal/entity"
	"github.com/ariane/internal/repository"
)

// Service loads pages and choices from the store and assembles them.
type Service struct {
	stories repository.StoryRepository
	pages   repository.PageRepository
	choices repository.ChoiceRepository
	log     *zap.Logger
}

// NewService returns a new graph assembly service.
func NewService(store *repository.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		stories: store.Stories,
		pages:   store.Pages,
		choices: store.Choices,
		log:     log.Named("graph"),
	}
}

// Pages 返回故事的全部页面（附带选项与到达标题）。故事不存在时返回空集合。
func (s *Service) Pages(ctx context.Context, storyID string) ([]*entity.Page, error) {
	pages, err := s.pages.ListByStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return pages, nil
	}
	choices, err := s.choices.ListByStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	Build(nil, pages, choices)
	return pages, nil
}

// Assemble 组装用于渲染的故事图。没有页面时返回 entity.ErrNoContent。
func (s *Service) Assemble(ctx context.Context, storyID string) (*Graph, error) {
	pages, err := s.pages.ListByStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("story %s has no pages: %w", storyID, entity.ErrNoContent)
	}

	story, err := s.stories.Get(ctx, storyID)
	if err != nil {
		return nil, err
	}
	choices, err := s.choices.ListByStory(ctx, storyID)
	if err != nil {
		return nil, err
	}

	g := Build(story, pages, choices)
	s.warnDangling(g)
	return g, nil
}

// FullStory 返回带 pages 集合的故事，每个页面内嵌其发出的选项。
func (s *Service) FullStory(ctx context.Context, storyID string) (*entity.Story, error) {
	story, err := s.stories.GetFull(ctx, storyID)
	if err != nil {
		return nil, err
	}
	g := Build(story, story.Pages, Choices(story.Pages))
	s.warnDangling(g)
	return story, nil
}

// FullGraph is FullStory as a Graph; an empty story yields entity.ErrNoContent.
func (s *Service) FullGraph(ctx context.Context, storyID string) (*Graph, error) {
	story, err := s.stories.GetFull(ctx, storyID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, fmt.Errorf("story %s: %w", storyID, entity.ErrNoContent)
		}
		return nil, err
	}
	if len(story.Pages) == 0 {
		return nil, fmt.Errorf("story %s has no pages: %w", storyID, entity.ErrNoContent)
	}
	g := Build(story, story.Pages, Choices(story.Pages))
	s.warnDangling(g)
	return g, nil
}

func (s *Service) warnDangling(g *Graph) {
	for _, choice := range g.Dangling() {
		s.log.Warn("choice points to a page outside the story",
			zap.String("story_id", g.Story.ID),
			zap.String("choice_id", choice.ID),
			zap.String("page_id", choice.PageID),
			zap.String("send_to_page_id", choice.SendToPageID),
		)
	}
}
