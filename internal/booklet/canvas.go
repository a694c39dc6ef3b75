package booklet

import (
	"io"

	"github.com/go-pdf/fpdf"
)

// Canvas is the subset of *fpdf.Fpdf the layout code draws with.
type Canvas interface {
	AddPage()
	SetFont(familyStr, styleStr string, size float64)
	Ln(h float64)
	CellFormat(w, h float64, txtStr, borderStr string, ln int, alignStr string, fill bool, link int, linkStr string)
	MultiCell(w, h float64, txtStr, borderStr, alignStr string, fill bool)
	GetY() float64
	GetPageSize() (width, height float64)
	GetMargins() (left, top, right, bottom float64)
	RegisterImageOptionsReader(imgName string, options fpdf.ImageOptions, r io.Reader) *fpdf.ImageInfoType
	ImageOptions(imageNameStr string, x, y, w, h float64, flow bool, options fpdf.ImageOptions, link int, linkStr string)
	Error() error
}

var _ Canvas = (*fpdf.Fpdf)(nil)
