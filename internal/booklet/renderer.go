// Package booklet 把组装好的故事图排版为 A5 纵向 PDF 小册子。
package booklet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/ariane/internal/assets"
	"github.com/ariane/internal/entity"
	"github.com/ariane/internal/graph"
	"github.com/ariane/internal/metrics"
	"github.com/ariane/internal/repository"
)

// Renderer draws a graph into a PDF document.
type Renderer struct {
	labels  Labels
	assets  assets.Store
	log     *zap.Logger
	metrics metrics.Recorder
}

// NewRenderer returns a renderer reading images from store.
func NewRenderer(store assets.Store, rec metrics.Recorder, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Renderer{labels: DefaultLabels(), assets: store, log: log.Named("booklet"), metrics: rec}
}

// Render writes the booklet for g to w. An empty graph yields entity.ErrNoContent and writes nothing.
func (r *Renderer) Render(g *graph.Graph, author string, w io.Writer) error {
	if g.IsEmpty() || g.Story == nil {
		return entity.ErrNoContent
	}

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, bottomMargin)
	pdf.SetTitle(g.Story.Title, true)
	pdf.SetAuthor(author, true)
	pdf.SetSubject(g.Story.Summary, true)

	p := r.painter(pdf, pdf.UnicodeTranslatorFromDescriptor(""), g)
	if err := p.paint(author); err != nil {
		return fmt.Errorf("render booklet: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write booklet: %w", err)
	}
	return nil
}

func (r *Renderer) painter(c Canvas, tr func(string) string, g *graph.Graph) *painter {
	return &painter{
		c:       c,
		tr:      tr,
		labels:  r.labels,
		assets:  r.assets,
		log:     r.log.With(zap.String("story_id", g.Story.ID)),
		metrics: r.metrics,
		g:       g,
	}
}

// Service 负责加载故事图与作者名并输出 PDF。
type Service struct {
	graphs         *graph.Service
	users          repository.UserRepository
	renderer       *Renderer
	authorFallback string
	metrics        metrics.Recorder
	log            *zap.Logger
}

// NewService returns a booklet service; authorFallback is printed when the owner has no name.
func NewService(graphs *graph.Service, users repository.UserRepository, renderer *Renderer, authorFallback string, rec metrics.Recorder, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{
		graphs:         graphs,
		users:          users,
		renderer:       renderer,
		authorFallback: authorFallback,
		metrics:        rec,
		log:            log.Named("booklet"),
	}
}

// Render assembles the story and writes its booklet to w.
func (s *Service) Render(ctx context.Context, storyID string, w io.Writer) error {
	start := time.Now()
	g, err := s.graphs.Assemble(ctx, storyID)
	if err != nil {
		return err
	}
	if err := s.renderer.Render(g, s.author(ctx, g.Story.UserID), w); err != nil {
		return err
	}

	s.metrics.RecordBookletRendered(time.Since(start))
	s.log.Info("booklet rendered", zap.String("story_id", storyID), zap.Int("pages", len(g.Pages)))
	return nil
}

func (s *Service) author(ctx context.Context, userID string) string {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, entity.ErrNotFound) {
			s.log.Warn("failed to load story author", zap.String("user_id", userID), zap.Error(err))
		}
		return s.authorFallback
	}
	if name := strings.TrimSpace(user.DisplayName()); name != "" {
		return name
	}
	return s.authorFallback
}
