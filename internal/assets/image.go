package assets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ariane/internal/entity"
)

// MaxImageSide 超过该边长（像素）的图片在嵌入前会被等比缩小。
const MaxImageSide = 2400

// Image 是可直接嵌入 PDF 的图片数据。
type Image struct {
	Data   []byte
	Format string // jpeg, png 或 gif
	Width  int
	Height int
}

// Probe decodes only the header to report format and pixel size.
func Probe(data []byte) (Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: unsupported image: %v", entity.ErrValidation, err)
	}
	return Image{Data: data, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Normalize returns data in a format the PDF writer can embed.
// JPEG, PNG and GIF pass through unless oversized; other formats are re-encoded as PNG.
func Normalize(data []byte) (Image, error) {
	probed, err := Probe(data)
	if err != nil {
		return Image{}, err
	}

	oversized := probed.Width > MaxImageSide || probed.Height > MaxImageSide
	switch probed.Format {
	case "jpeg", "png", "gif":
		if !oversized {
			return probed, nil
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: decode image: %v", entity.ErrValidation, err)
	}
	if oversized {
		img = downscale(img, MaxImageSide)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Image{}, fmt.Errorf("encode png: %w", err)
	}
	b := img.Bounds()
	return Image{Data: buf.Bytes(), Format: "png", Width: b.Dx(), Height: b.Dy()}, nil
}

func downscale(src image.Image, maxSide int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w >= h {
		h = max(1, h*maxSide/w)
		w = maxSide
	} else {
		w = max(1, w*maxSide/h)
		h = maxSide
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// ExtensionFor maps a decoded format name to a file extension.
func ExtensionFor(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "":
		return ""
	default:
		return "." + format
	}
}
