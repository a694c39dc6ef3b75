package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ariane/internal/assets"
	"github.com/ariane/internal/entity"
	"github.com/ariane/internal/repository"
)

// StoryInput 是创建与更新故事的载荷。
type StoryInput struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// StoryService manages stories owned by a user.
type StoryService struct {
	stories repository.StoryRepository
	assets  assets.Store
	log     *zap.Logger
}

// NewStoryService returns a new StoryService instance.
func NewStoryService(store *repository.Store, assetStore assets.Store, log *zap.Logger) *StoryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &StoryService{stories: store.Stories, assets: assetStore, log: log.Named("stories")}
}

func (s *StoryService) ListByUser(ctx context.Context, userID string) ([]*entity.Story, error) {
	return s.stories.ListByUser(ctx, userID)
}

// Get 返回属于 userID 的故事，其他用户的故事视为不存在。
func (s *StoryService) Get(ctx context.Context, userID, id string) (*entity.Story, error) {
	story, err := s.stories.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if story.UserID != userID {
		return nil, fmt.Errorf("story %s of user %s: %w", id, userID, entity.ErrNotFound)
	}
	return story, nil
}

func (s *StoryService) Create(ctx context.Context, userID string, input StoryInput) (*entity.Story, error) {
	return s.stories.Create(ctx, &entity.Story{
		UserID:  userID,
		Title:   strings.TrimSpace(input.Title),
		Summary: strings.TrimSpace(input.Summary),
	})
}

func (s *StoryService) Update(ctx context.Context, userID, id string, input StoryInput) (*entity.Story, error) {
	story, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	story.Title = strings.TrimSpace(input.Title)
	story.Summary = strings.TrimSpace(input.Summary)
	return s.stories.Update(ctx, story)
}

// Delete removes only the story record; pages and choices have their own bulk deletes.
func (s *StoryService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.stories.Delete(ctx, id)
}

// SetCover 保存封面图片并更新故事的 cover 字段。
func (s *StoryService) SetCover(ctx context.Context, userID, id string, data []byte) (*entity.Story, error) {
	story, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	img, err := assets.Probe(data)
	if err != nil {
		return nil, err
	}

	rel := assets.CoverPath(story.ID, assets.ExtensionFor(img.Format))
	if err := s.assets.Save(rel, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	if story.HasCover() && *story.Cover != rel {
		if err := s.assets.Remove(*story.Cover); err != nil {
			s.log.Warn("failed to remove previous cover", zap.String("story_id", story.ID), zap.Error(err))
		}
	}

	story.Cover = &rel
	return s.stories.Update(ctx, story)
}

// RefreshStats 根据当前页面与选项重新计算故事的冗余计数。
func (s *StoryService) RefreshStats(ctx context.Context, userID, id string) (*entity.Story, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	full, err := s.stories.GetFull(ctx, id)
	if err != nil {
		return nil, err
	}

	full.ApplyStats(entity.ComputeStats(full.Pages))
	full.Pages = nil
	return s.stories.Update(ctx, full)
}
