package booklet

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/ariane/internal/assets"
	"github.com/ariane/internal/entity"
	"github.com/ariane/internal/graph"
	"github.com/ariane/internal/metrics"
)

// 版面参数，单位为毫米（A5 纵向）。
const (
	pageMargin       = 10.0
	bottomMargin     = 15.0
	headingThreshold = 150.0
	pixelsPerInch    = 96.0
	mmPerInch        = 25.4
)

// Labels 是小册子中固定出现的文字。
type Labels struct {
	Prologue string
	Summary  string
	GoTo     string
	End      string
}

// DefaultLabels 沿用原有小册子的法语措辞。
func DefaultLabels() Labels {
	return Labels{
		Prologue: "Prologue",
		Summary:  "Résumé",
		GoTo:     "Rendez-vous à la section n° ",
		End:      "The End",
	}
}

// painter 在一个 Canvas 上按顺序绘制封面、标题页和各个页面。
type painter struct {
	c       Canvas
	tr      func(string) string
	labels  Labels
	assets  assets.Store
	log     *zap.Logger
	metrics metrics.Recorder
	g       *graph.Graph
}

func (p *painter) paint(author string) error {
	story := p.g.Story
	p.drawCover(story)
	p.drawTitle(story, author)

	p.drawPage(p.g.First, true)
	for _, page := range p.g.Ordered {
		p.drawPage(page, false)
	}
	return p.c.Error()
}

func (p *painter) drawCover(story *entity.Story) {
	if !story.HasCover() {
		return
	}
	img, ok := p.loadImage(*story.Cover, "cover", zap.String("story_id", story.ID))
	if !ok {
		return
	}

	p.c.AddPage()
	w, h := p.c.GetPageSize()
	p.placeImage(*story.Cover, img, 0, 0, w, h, false)
}

func (p *painter) drawTitle(story *entity.Story, author string) {
	p.c.AddPage()

	p.c.Ln(24)
	p.c.SetFont("Times", "", 18)
	p.c.CellFormat(0, 6, p.text(author), "", 0, "C", false, 0, "")

	p.c.Ln(12)
	p.c.SetFont("Times", "B", 24)
	p.c.CellFormat(0, 6, p.text(story.Title), "", 0, "C", false, 0, "")

	p.c.Ln(24)
	p.c.SetFont("Times", "B", 14)
	p.c.CellFormat(0, 6, p.text(p.labels.Summary), "", 0, "C", false, 0, "")

	p.c.Ln(12)
	p.c.SetFont("Times", "", 13)
	p.c.MultiCell(0, 6, p.text(story.Summary), "", "J", false)

	p.c.AddPage()
}

func (p *painter) drawPage(page *entity.Page, first bool) {
	heading := page.Heading()
	section := ""
	if first {
		heading = p.labels.Prologue
	} else if page.Section != 0 {
		section = strconv.Itoa(page.Section)
	}

	if !first {
		p.c.Ln(24)
	}
	if p.c.GetY() > headingThreshold {
		p.c.AddPage()
	}

	p.c.SetFont("Times", "B", 15)
	p.c.MultiCell(0, 8, section, "", "C", false)
	p.c.Ln(3)
	p.c.SetFont("Times", "I", 16)
	p.c.MultiCell(0, 8, p.text(heading), "", "C", false)

	if page.HasImage() {
		p.drawPageImage(page)
	}

	p.c.Ln(6)
	p.c.SetFont("Times", "", 14)
	p.c.MultiCell(0, 6, p.text(page.Text), "", "J", false)

	if len(page.Choices) == 0 {
		p.drawEnd()
		return
	}
	for _, choice := range page.Choices {
		p.drawChoice(page, choice)
	}
}

func (p *painter) drawPageImage(page *entity.Page) {
	img, ok := p.loadImage(*page.Image, "image", zap.String("page_id", page.ID))
	if !ok {
		return
	}

	w, h := p.fit(img.Width, img.Height)
	_, pageHeight := p.c.GetPageSize()
	p.c.Ln(6)
	if p.c.GetY()+h > pageHeight-bottomMargin {
		p.c.AddPage()
	}

	pageWidth, _ := p.c.GetPageSize()
	x := (pageWidth - w) / 2
	p.placeImage(*page.Image, img, x, -1, w, h, true)
}

func (p *painter) drawChoice(page *entity.Page, choice *entity.Choice) {
	section, ok := p.g.Section(choice)
	if !ok {
		p.log.Warn("skipping choice with unknown destination",
			zap.String("page_id", page.ID),
			zap.String("choice_id", choice.ID),
			zap.String("send_to_page_id", choice.SendToPageID),
		)
		p.metrics.RecordDanglingChoice()
		return
	}

	p.c.Ln(12)
	p.c.SetFont("Times", "I", 14)
	p.c.MultiCell(0, 6, p.text(choice.Title), "", "L", false)
	p.c.Ln(3)
	p.c.SetFont("Arial", "B", 10)
	p.c.CellFormat(0, 6, p.text(p.labels.GoTo+strconv.Itoa(section)), "", 0, "R", false, 0, "")
}

func (p *painter) drawEnd() {
	p.c.Ln(12)
	p.c.SetFont("Times", "BI", 14)
	p.c.CellFormat(0, 6, p.text(p.labels.End), "", 0, "C", false, 0, "")
}

// fit converts pixels to millimetres at 96 dpi and scales the image down to the printable area.
func (p *painter) fit(pxWidth, pxHeight int) (float64, float64) {
	pageWidth, pageHeight := p.c.GetPageSize()
	left, top, right, _ := p.c.GetMargins()
	return FitImage(pxWidth, pxHeight, pageWidth-left-right, pageHeight-top-bottomMargin)
}

// FitImage scales a bitmap so that it fits maxWidth x maxHeight millimetres, keeping its ratio.
func FitImage(pxWidth, pxHeight int, maxWidth, maxHeight float64) (float64, float64) {
	if pxWidth <= 0 || pxHeight <= 0 {
		return 0, 0
	}
	w := float64(pxWidth) * mmPerInch / pixelsPerInch
	h := float64(pxHeight) * mmPerInch / pixelsPerInch
	if w > maxWidth {
		h = h * maxWidth / w
		w = maxWidth
	}
	if h > maxHeight {
		w = w * maxHeight / h
		h = maxHeight
	}
	return w, h
}

func (p *painter) loadImage(rel, kind string, field zap.Field) (assets.Image, bool) {
	img, err := p.readImage(rel)
	if err != nil {
		p.log.Warn("skipping unreadable asset", field, zap.String("asset", rel), zap.Error(err))
		p.metrics.RecordAssetSkipped(kind)
		return assets.Image{}, false
	}
	return img, true
}

func (p *painter) readImage(rel string) (assets.Image, error) {
	if p.assets == nil {
		return assets.Image{}, fmt.Errorf("asset %s: %w", rel, entity.ErrNotFound)
	}
	rc, err := p.assets.Open(rel)
	if err != nil {
		return assets.Image{}, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return assets.Image{}, fmt.Errorf("read asset %s: %w", rel, err)
	}
	return assets.Normalize(data)
}

func (p *painter) placeImage(name string, img assets.Image, x, y, w, h float64, flow bool) {
	opts := fpdf.ImageOptions{ImageType: imageType(img.Format)}
	p.c.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	p.c.ImageOptions(name, x, y, w, h, flow, opts, 0, "")
}

func imageType(format string) string {
	switch format {
	case "jpeg":
		return "JPG"
	case "gif":
		return "GIF"
	default:
		return "PNG"
	}
}

// text 把排版引号替换为直引号，再转换为核心字体使用的编码。
func (p *painter) text(s string) string {
	return p.tr(strings.ReplaceAll(s, "’", "'"))
}
