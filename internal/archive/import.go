package archive

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"

	"github.com/ariane/internal/assets"
	"github.com/ariane/internal/entity"
)

// Result 汇总一次导入创建的记录数量。
type Result struct {
	Story   *entity.Story `json:"story"`
	Pages   int           `json:"pages"`
	Choices int           `json:"choices"`
	Skipped int           `json:"skippedChoices"`
}

// importer 以原始页面 ID 为键保存页面，并记录每个已导入页面的新 ID。
type importer struct {
	s       *Service
	story   *entity.Story
	files   map[string]*zip.File
	byID    map[string]*entity.Page
	newIDs  map[string]string
	created map[string]*entity.Page
	result  Result
}

// Import 从归档创建一个属于 userID 的新故事。所有 ID 都重新生成，图片按新 ID 重命名。
// 中途失败时已写入的记录会保留。
func (s *Service) Import(ctx context.Context, userID string, r io.ReaderAt, size int64) (*Result, error) {
	zr, payload, err := readPayload(r, size)
	if err != nil {
		return nil, err
	}

	story, err := s.store.Stories.Create(ctx, &entity.Story{
		UserID:  userID,
		Title:   payload.Title,
		Summary: payload.Summary,
	})
	if err != nil {
		return nil, err
	}

	im := &importer{
		s:       s,
		story:   story,
		files:   assetIndex(zr),
		byID:    make(map[string]*entity.Page, len(payload.Pages)),
		newIDs:  make(map[string]string, len(payload.Pages)),
		created: make(map[string]*entity.Page, len(payload.Pages)),
	}
	for _, page := range payload.Pages {
		if page != nil {
			im.byID[page.ID] = page
		}
	}

	if err := im.relinkCover(ctx, payload.Cover); err != nil {
		return nil, err
	}
	if err := im.importPages(ctx, payload.Pages); err != nil {
		return nil, err
	}
	if err := im.relinkPrevious(ctx, payload.Pages); err != nil {
		return nil, err
	}
	if err := im.refreshStats(ctx); err != nil {
		return nil, err
	}

	s.metrics.RecordArchiveImported(im.result.Pages)
	s.log.Info("story imported",
		zap.String("story_id", im.story.ID),
		zap.Int("pages", im.result.Pages),
		zap.Int("choices", im.result.Choices),
		zap.Int("skipped_choices", im.result.Skipped),
	)
	im.result.Story = im.story
	return &im.result, nil
}

// importPages 从 first 页面开始深度优先导入，再补上无法从入口到达的页面。
func (im *importer) importPages(ctx context.Context, pages []*entity.Page) error {
	var entry *entity.Page
	for _, page := range pages {
		if page != nil && page.First {
			entry = page
			break
		}
	}
	if entry != nil {
		if _, err := im.importPage(ctx, entry); err != nil {
			return err
		}
	}
	for _, page := range pages {
		if page == nil {
			continue
		}
		if _, err := im.importPage(ctx, page); err != nil {
			return err
		}
	}
	return nil
}

func (im *importer) importPage(ctx context.Context, orig *entity.Page) (string, error) {
	if id, ok := im.newIDs[orig.ID]; ok {
		return id, nil
	}

	page, err := im.s.store.Pages.Create(ctx, &entity.Page{
		StoryID:         im.story.ID,
		Title:           orig.Title,
		Text:            orig.Text,
		First:           orig.First,
		End:             orig.End,
		TotalCharacters: entity.CountCharacters(orig.Text),
	})
	if err != nil {
		return "", fmt.Errorf("import page %s: %w", orig.ID, err)
	}
	im.newIDs[orig.ID] = page.ID
	im.created[orig.ID] = page
	im.result.Pages++

	if orig.HasImage() {
		rel, err := im.extract(*orig.Image, page.ID, "image", zap.String("page_id", page.ID))
		if err != nil {
			return "", err
		}
		if rel != "" {
			page.Image = &rel
			updated, err := im.s.store.Pages.Update(ctx, page)
			if err != nil {
				return "", fmt.Errorf("relink image of page %s: %w", page.ID, err)
			}
			page = updated
			im.created[orig.ID] = page
		}
	}

	for _, choice := range orig.Choices {
		if choice == nil {
			continue
		}
		dest, ok := im.byID[choice.SendToPageID]
		if !ok {
			im.s.log.Warn("skipping choice with unknown destination",
				zap.String("story_id", im.story.ID),
				zap.String("choice_id", choice.ID),
				zap.String("send_to_page_id", choice.SendToPageID),
			)
			im.s.metrics.RecordDanglingChoice()
			im.result.Skipped++
			continue
		}

		destID, err := im.importPage(ctx, dest)
		if err != nil {
			return "", err
		}
		if _, err := im.s.store.Choices.Create(ctx, &entity.Choice{
			PageID:       page.ID,
			SendToPageID: destID,
			Title:        choice.Title,
		}); err != nil {
			return "", fmt.Errorf("import choice %s: %w", choice.ID, err)
		}
		im.result.Choices++
	}
	return page.ID, nil
}

// relinkPrevious 把 previousPageId 改写为新 ID，指向归档外的页面时清空。
func (im *importer) relinkPrevious(ctx context.Context, pages []*entity.Page) error {
	for _, orig := range pages {
		if orig == nil || orig.PreviousPageID == nil {
			continue
		}
		prev, ok := im.newIDs[*orig.PreviousPageID]
		if !ok {
			continue
		}
		page := im.created[orig.ID]
		if page == nil || entity.StringValue(page.PreviousPageID) == prev {
			continue
		}
		page.PreviousPageID = &prev
		updated, err := im.s.store.Pages.Update(ctx, page)
		if err != nil {
			return fmt.Errorf("relink previous page of %s: %w", page.ID, err)
		}
		im.created[orig.ID] = updated
	}
	return nil
}

func (im *importer) relinkCover(ctx context.Context, cover *string) error {
	if cover == nil || *cover == "" {
		return nil
	}
	rel, err := im.extract(*cover, im.story.ID, "cover", zap.String("story_id", im.story.ID))
	if err != nil || rel == "" {
		return err
	}

	im.story.Cover = &rel
	updated, err := im.s.store.Stories.Update(ctx, im.story)
	if err != nil {
		return fmt.Errorf("relink cover of story %s: %w", im.story.ID, err)
	}
	im.story = updated
	return nil
}

// extract copies the archived asset to a name derived from newID.
// A missing, unreadable or oversized asset is logged and yields "".
func (im *importer) extract(rel, newID, kind string, field zap.Field) (string, error) {
	name, err := assets.Clean(rel)
	if err != nil {
		im.s.skipAsset(kind, rel, err, field)
		return "", nil
	}
	file, ok := im.files[name]
	if !ok {
		im.s.skipAsset(kind, rel, errAssetMissing, field)
		return "", nil
	}

	if file.UncompressedSize64 > uint64(maxAssetSize) {
		im.s.skipAsset(kind, rel, errAssetTooLarge, field)
		return "", nil
	}

	rc, err := file.Open()
	if err != nil {
		im.s.skipAsset(kind, rel, err, field)
		return "", nil
	}
	defer rc.Close()

	target := assets.Renamed(name, newID)
	if err := im.s.assets.Save(target, &cappedReader{r: rc, n: maxAssetSize}); err != nil {
		if errors.Is(err, errAssetTooLarge) {
			im.s.skipAsset(kind, rel, err, field)
			return "", nil
		}
		return "", err
	}
	return target, nil
}

func (im *importer) refreshStats(ctx context.Context) error {
	full, err := im.s.store.Stories.GetFull(ctx, im.story.ID)
	if err != nil {
		return err
	}
	full.ApplyStats(entity.ComputeStats(full.Pages))
	full.Pages = nil
	updated, err := im.s.store.Stories.Update(ctx, full)
	if err != nil {
		return fmt.Errorf("refresh stats of story %s: %w", im.story.ID, err)
	}
	im.story = updated
	return nil
}
