// Package archive 把故事连同页面、选项和图片打包为 zip 归档，并能从归档重新导入。
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"

	"github.com/ariane/internal/assets"
	"github.com/ariane/internal/entity"
	"github.com/ariane/internal/graph"
	"github.com/ariane/internal/metrics"
	"github.com/ariane/internal/repository"
)

// PayloadName 是归档中保存故事结构的条目。
const PayloadName = "story.json"

const maxPayloadSize = 16 << 20

// maxAssetSize 是单个归档图片允许的最大解压后大小。
var maxAssetSize int64 = 32 << 20

// Service exports and imports story archives.
type Service struct {
	graphs  *graph.Service
	store   *repository.Store
	assets  assets.Store
	metrics metrics.Recorder
	log     *zap.Logger
}

// NewService returns a new archive service.
func NewService(graphs *graph.Service, store *repository.Store, assetStore assets.Store, rec metrics.Recorder, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{
		graphs:  graphs,
		store:   store,
		assets:  assetStore,
		metrics: rec,
		log:     log.Named("archive"),
	}
}

// Export 写出故事归档：story.json 加上封面和各页面引用的图片。缺失的图片会被跳过。
func (s *Service) Export(ctx context.Context, storyID string, w io.Writer) error {
	g, err := s.graphs.FullGraph(ctx, storyID)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	payload, err := json.MarshalIndent(g.Story, "", "  ")
	if err != nil {
		return fmt.Errorf("encode story payload: %w", err)
	}
	entry, err := zw.Create(PayloadName)
	if err != nil {
		return fmt.Errorf("create payload entry: %w", err)
	}
	if _, err := entry.Write(payload); err != nil {
		return fmt.Errorf("write payload entry: %w", err)
	}

	written := make(map[string]bool)
	if g.Story.HasCover() {
		s.exportAsset(zw, *g.Story.Cover, "cover", written, zap.String("story_id", storyID))
	}
	for _, page := range g.Pages {
		if page.HasImage() {
			s.exportAsset(zw, *page.Image, "image", written, zap.String("page_id", page.ID))
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}
	s.metrics.RecordArchiveExported()
	s.log.Info("story exported", zap.String("story_id", storyID), zap.Int("pages", len(g.Pages)), zap.Int("assets", len(written)))
	return nil
}

func (s *Service) exportAsset(zw *zip.Writer, rel, kind string, written map[string]bool, field zap.Field) {
	name, err := assets.Clean(rel)
	if err != nil {
		s.skipAsset(kind, rel, err, field)
		return
	}
	if written[name] {
		return
	}

	rc, err := s.assets.Open(name)
	if err != nil {
		s.skipAsset(kind, rel, err, field)
		return
	}
	defer rc.Close()

	entry, err := zw.Create(name)
	if err == nil {
		_, err = io.Copy(entry, rc)
	}
	if err != nil {
		s.skipAsset(kind, rel, err, field)
		return
	}
	written[name] = true
}

func (s *Service) skipAsset(kind, rel string, err error, field zap.Field) {
	s.log.Warn("skipping asset", field, zap.String("asset", rel), zap.Error(err))
	s.metrics.RecordAssetSkipped(kind)
}

// readPayload 打开归档并解析 story.json。
func readPayload(r io.ReaderAt, size int64) (*zip.Reader, *entity.Story, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: not a zip archive: %v", entity.ErrArchiveFormat, err)
	}

	file := findPayload(zr)
	if file == nil {
		return nil, nil, fmt.Errorf("%w: %s is missing", entity.ErrArchiveFormat, PayloadName)
	}
	rc, err := file.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open %s: %v", entity.ErrArchiveFormat, PayloadName, err)
	}
	defer rc.Close()

	var story entity.Story
	dec := json.NewDecoder(io.LimitReader(rc, maxPayloadSize))
	if err := dec.Decode(&story); err != nil {
		return nil, nil, fmt.Errorf("%w: decode %s: %v", entity.ErrArchiveFormat, PayloadName, err)
	}
	return zr, &story, nil
}

func findPayload(zr *zip.Reader) *zip.File {
	var nested *zip.File
	for _, f := range zr.File {
		if f.Name == PayloadName {
			return f
		}
		if nested == nil && path.Base(f.Name) == PayloadName {
			nested = f
		}
	}
	return nested
}

func assetIndex(zr *zip.Reader) map[string]*zip.File {
	index := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || f.Name == PayloadName {
			continue
		}
		if name, err := assets.Clean(f.Name); err == nil {
			index[name] = f
		}
	}
	return index
}

var (
	errAssetMissing  = errors.New("asset not in archive")
	errAssetTooLarge = errors.New("asset exceeds size limit")
)

// cappedReader fails with errAssetTooLarge once more than n bytes have been read.
type cappedReader struct {
	r io.Reader
	n int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n -= int64(n)
	if c.n < 0 {
		return n, errAssetTooLarge
	}
	return n, err
}
