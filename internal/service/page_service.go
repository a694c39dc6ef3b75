package service

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/ariane/internal/assets"
	"github.com/ariane/internal/entity"
	"github.com/ariane/internal/repository"
)

// PageInput 是创建与更新页面的载荷。
type PageInput struct {
	Title          string  `json:"title"`
	Text           string  `json:"text"`
	First          bool    `json:"first"`
	End            bool    `json:"end"`
	PreviousPageID *string `json:"previousPageId"`
}

// PageService manages the pages of a story.
type PageService struct {
	stories repository.StoryRepository
	pages   repository.PageRepository
	choices repository.ChoiceRepository
	assets  assets.Store
	log     *zap.Logger
}

// NewPageService returns a new PageService instance.
func NewPageService(store *repository.Store, assetStore assets.Store, log *zap.Logger) *PageService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PageService{
		stories: store.Stories,
		pages:   store.Pages,
		choices: store.Choices,
		assets:  assetStore,
		log:     log.Named("pages"),
	}
}

// ListByStory returns an empty list for unknown stories.
func (s *PageService) ListByStory(ctx context.Context, storyID string) ([]*entity.Page, error) {
	return s.pages.ListByStory(ctx, storyID)
}

// DeleteByStory 删除故事下的全部页面，并一并删除这些页面发出的选项。
func (s *PageService) DeleteByStory(ctx context.Context, storyID string) (int64, error) {
	pages, err := s.pages.ListByStory(ctx, storyID)
	if err != nil {
		return 0, err
	}
	for _, page := range pages {
		if _, err := s.choices.DeleteByPage(ctx, page.ID); err != nil {
			return 0, err
		}
		s.removeImage(page)
	}
	return s.pages.DeleteByStory(ctx, storyID)
}

func (s *PageService) Get(ctx context.Context, id string) (*entity.Page, error) {
	return s.pages.Get(ctx, id)
}

func (s *PageService) Create(ctx context.Context, storyID string, input PageInput) (*entity.Page, error) {
	if _, err := s.stories.Get(ctx, storyID); err != nil {
		return nil, err
	}

	page := &entity.Page{StoryID: storyID}
	applyPageInput(page, input)
	if err := page.Validate(); err != nil {
		return nil, err
	}
	if page.First {
		if err := s.demoteFirst(ctx, storyID, ""); err != nil {
			return nil, err
		}
	}
	return s.pages.Create(ctx, page)
}

func (s *PageService) Update(ctx context.Context, id string, input PageInput) (*entity.Page, error) {
	page, err := s.pages.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	wasFirst := page.First
	applyPageInput(page, input)
	if err := page.Validate(); err != nil {
		return nil, err
	}
	if page.First && !wasFirst {
		if err := s.demoteFirst(ctx, page.StoryID, page.ID); err != nil {
			return nil, err
		}
	}
	return s.pages.Update(ctx, page)
}

// Delete 删除页面及其发出的选项。
func (s *PageService) Delete(ctx context.Context, id string) error {
	page, err := s.pages.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.choices.DeleteByPage(ctx, id); err != nil {
		return err
	}
	if err := s.pages.Delete(ctx, id); err != nil {
		return err
	}
	s.removeImage(page)
	return nil
}

// SetImage 保存页面插图并更新 image 字段。
func (s *PageService) SetImage(ctx context.Context, id string, data []byte) (*entity.Page, error) {
	page, err := s.pages.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	img, err := assets.Probe(data)
	if err != nil {
		return nil, err
	}

	rel := assets.ImagePath(page.ID, assets.ExtensionFor(img.Format))
	if err := s.assets.Save(rel, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	if page.HasImage() && *page.Image != rel {
		s.removeImage(page)
	}

	page.Image = &rel
	return s.pages.Update(ctx, page)
}

// demoteFirst keeps a single entry page per story.
func (s *PageService) demoteFirst(ctx context.Context, storyID, keepID string) error {
	pages, err := s.pages.ListByStory(ctx, storyID)
	if err != nil {
		return err
	}
	for _, other := range pages {
		if !other.First || other.ID == keepID {
			continue
		}
		other.First = false
		if _, err := s.pages.Update(ctx, other); err != nil && !errors.Is(err, entity.ErrNotFound) {
			return err
		}
		s.log.Info("demoted previous first page", zap.String("story_id", storyID), zap.String("page_id", other.ID))
	}
	return nil
}

func (s *PageService) removeImage(page *entity.Page) {
	if !page.HasImage() {
		return
	}
	if err := s.assets.Remove(*page.Image); err != nil {
		s.log.Warn("failed to remove page image", zap.String("page_id", page.ID), zap.Error(err))
	}
}

func applyPageInput(page *entity.Page, input PageInput) {
	page.Title = strings.TrimSpace(input.Title)
	page.Text = input.Text
	page.First = input.First
	page.End = input.End
	page.PreviousPageID = entity.StringPtr(entity.StringValue(input.PreviousPageID))
	page.RefreshCharacters()
}
