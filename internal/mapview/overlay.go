package mapview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/golang/freetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	fontDPI     = 72
	fontSize    = 12
	lineSpacing = 1.25
)

// annotator draws text onto the rendered frame. With font data it uses
// the TrueType rasterizer, otherwise it falls back to the built-in
// bitmap face.
type annotator struct {
	context    *freetype.Context
	lineHeight int
}

func newAnnotator(fontData []byte) (*annotator, error) {
	if fontData == nil {
		return &annotator{lineHeight: basicfont.Face7x13.Height + 2}, nil
	}

	parsedFont, err := freetype.ParseFont(fontData)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	context := freetype.NewContext()
	context.SetDPI(fontDPI)
	context.SetFont(parsedFont)
	context.SetFontSize(fontSize)
	context.SetHinting(font.HintingFull)

	return &annotator{
		context:    context,
		lineHeight: int(math.Ceil(fontSize * lineSpacing)),
	}, nil
}

// drawString draws s with its baseline at (x, y).
func (a *annotator) drawString(img *image.RGBA, x, y int, s string, col color.NRGBA) {
	if a.context == nil {
		d := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(col),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(x, y),
		}
		d.DrawString(s)
		return
	}

	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)
	a.context.SetSrc(image.NewUniform(col))
	_, _ = a.context.DrawString(s, freetype.Pt(x, y))
}

// stringWidth estimates the pixel width of s.
func (a *annotator) stringWidth(s string) int {
	if a.context == nil {
		return font.MeasureString(basicfont.Face7x13, s).Ceil()
	}
	// The freetype context has no measuring API. The average advance
	// at this size is close enough for panel sizing.
	return int(float64(len(s)) * fontSize * 0.55)
}

// drawDisc fills a circle of the given radius around center.
func drawDisc(img *image.RGBA, center Point, radius float64, col color.NRGBA) {
	r2 := radius * radius
	x0, y0 := int(center.X-radius), int(center.Y-radius)
	x1, y1 := int(center.X+radius)+1, int(center.Y+radius)+1

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := float64(x) - center.X
			dy := float64(y) - center.Y
			if dx*dx+dy*dy <= r2 {
				img.Set(x, y, col)
			}
		}
	}
}

// drawLine draws a straight line from a to b. The segment is clipped
// to the frame first: at high zoom an off-screen endpoint can sit tens
// of millions of pixels away, and stepping the unclipped span would
// stall the frame.
func drawLine(img *image.RGBA, a, b Point, col color.NRGBA) {
	a, b, ok := clipLine(a, b, img.Bounds())
	if !ok {
		return
	}

	dx, dy := b.X-a.X, b.Y-a.Y
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	if steps == 0 {
		img.Set(int(a.X), int(a.Y), col)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		img.Set(int(a.X+dx*t), int(a.Y+dy*t), col)
	}
}

// clipLine clips the segment a-b to the rectangle r (Liang-Barsky).
// ok is false when the segment lies entirely outside.
func clipLine(a, b Point, r image.Rectangle) (_, _ Point, ok bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := b.X-a.X, b.Y-a.Y

	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return false
			}
			if t < t1 {
				t1 = t
			}
		}
		return true
	}

	xmin, ymin := float64(r.Min.X), float64(r.Min.Y)
	xmax, ymax := float64(r.Max.X-1), float64(r.Max.Y-1)
	if !clip(-dx, a.X-xmin) || !clip(dx, xmax-a.X) ||
		!clip(-dy, a.Y-ymin) || !clip(dy, ymax-a.Y) {
		return Point{}, Point{}, false
	}

	return Point{X: a.X + dx*t0, Y: a.Y + dy*t0},
		Point{X: a.X + dx*t1, Y: a.Y + dy*t1}, true
}

// panel colors
var (
	panelBackground = color.NRGBA{R: 0x20, G: 0x20, B: 0x28, A: 0xe0}
	panelText       = color.NRGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}
)

// drawPanel draws the detail panel near anchor, nudged to stay inside
// the frame.
func (a *annotator) drawPanel(img *image.RGBA, anchor Point, lines []string) {
	if len(lines) == 0 {
		return
	}

	const pad = 6
	width := 0
	for _, line := range lines {
		if w := a.stringWidth(line); w > width {
			width = w
		}
	}
	width += 2 * pad
	height := len(lines)*a.lineHeight + 2*pad

	bounds := img.Bounds()
	x := int(anchor.X) + 12
	y := int(anchor.Y) - height/2
	if x+width > bounds.Max.X {
		x = int(anchor.X) - 12 - width
	}
	if x < bounds.Min.X {
		x = bounds.Min.X
	}
	if y+height > bounds.Max.Y {
		y = bounds.Max.Y - height
	}
	if y < bounds.Min.Y {
		y = bounds.Min.Y
	}

	panel := image.Rect(x, y, x+width, y+height).Intersect(bounds)
	draw.Draw(img, panel, image.NewUniform(panelBackground), image.Point{}, draw.Over)

	baseline := y + pad + a.lineHeight - 3
	for _, line := range lines {
		a.drawString(img, x+pad, baseline, line, panelText)
		baseline += a.lineHeight
	}
}
