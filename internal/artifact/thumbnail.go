package artifact

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"
)

// ErrUndecodable is returned for artifacts the terminal cannot rasterise,
// such as SVG output.
var ErrUndecodable = errors.New("artifact cannot be shown in the terminal")

// Thumb is an artifact rasterised into terminal cells. Every cell holds two
// vertically stacked pixels drawn with half blocks.
type Thumb struct {
	SourceWidth  int
	SourceHeight int
	Cols         int
	Rows         int
	Lines        []string
}

// String joins the rendered lines.
func (t Thumb) String() string {
	return strings.Join(t.Lines, "\n")
}

// Thumbnail decodes the image at path and renders it to fit in cols x rows
// cells, keeping its aspect ratio.
func Thumbnail(path string, cols, rows int) (Thumb, error) {
	f, err := os.Open(path)
	if err != nil {
		return Thumb{}, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return Thumb{}, ErrUndecodable
		}
		return Thumb{}, fmt.Errorf("decode artifact: %w", err)
	}
	return Render(src, cols, rows), nil
}

// Render downsamples img into at most cols x rows cells.
func Render(img image.Image, cols, rows int) Thumb {
	b := img.Bounds()
	thumb := Thumb{SourceWidth: b.Dx(), SourceHeight: b.Dy()}
	if cols <= 0 || rows <= 0 || b.Empty() {
		return thumb
	}

	w, h := fitPixels(b.Dx(), b.Dy(), cols, rows*2)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	thumb.Cols = w
	thumb.Rows = (h + 1) / 2
	thumb.Lines = make([]string, 0, thumb.Rows)
	for y := 0; y < h; y += 2 {
		var line strings.Builder
		for x := 0; x < w; x++ {
			top := dst.NRGBAAt(x, y)
			bottom := color.NRGBA{}
			if y+1 < h {
				bottom = dst.NRGBAAt(x, y+1)
			}
			line.WriteString(cell(top, bottom))
		}
		thumb.Lines = append(thumb.Lines, line.String())
	}
	return thumb
}

// fitPixels scales w x h to the largest size inside maxW x maxH.
func fitPixels(w, h, maxW, maxH int) (int, int) {
	if w*maxH > h*maxW {
		nh := h * maxW / w
		if nh < 1 {
			nh = 1
		}
		return maxW, nh
	}
	nw := w * maxH / h
	if nw < 1 {
		nw = 1
	}
	return nw, maxH
}

func cell(top, bottom color.NRGBA) string {
	topOn, bottomOn := top.A >= 128, bottom.A >= 128
	switch {
	case topOn && bottomOn:
		return lipgloss.NewStyle().Foreground(hex(top)).Background(hex(bottom)).Render("▀")
	case topOn:
		return lipgloss.NewStyle().Foreground(hex(top)).Render("▀")
	case bottomOn:
		return lipgloss.NewStyle().Foreground(hex(bottom)).Render("▄")
	default:
		return " "
	}
}

func hex(c color.NRGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
