package mapview

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"io"
	"log/slog"

	xdraw "golang.org/x/image/draw"
)

const defaultMarkerRadius = 5.0

var (
	pendingTileFill = color.NRGBA{R: 0xd8, G: 0xd8, B: 0xd8, A: 0xff}
	failedTileFill  = color.NRGBA{R: 0xb0, G: 0xa8, B: 0xa8, A: 0xff}
	attributionText = color.NRGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xff}
)

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the logger. The default discards everything.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithFontData supplies TrueType font data for overlay text. Without
// it a built-in bitmap face is used.
func WithFontData(data []byte) EngineOption {
	return func(e *Engine) { e.fontData = data }
}

// WithMarkerRadius sets the marker disc radius in pixels.
func WithMarkerRadius(r float64) EngineOption {
	return func(e *Engine) {
		if r > 0 {
			e.markerRadius = r
		}
	}
}

// Engine draws one map: tiles from a provider, markers on top, and a
// detail panel for the hovered or selected marker. It is driven from a
// single frame loop and is not safe for concurrent use; the tile
// manager behind it is shared and does its own locking.
type Engine struct {
	viewport *Viewport
	tiles    *Manager
	provider Provider
	logger   *slog.Logger

	markers      []Marker
	markerRadius float64

	hoveredID  uint64
	hoveredOK  bool
	selectedID uint64
	selectedOK bool

	pointer   Point
	pointerIn bool

	fontData []byte
	ann      *annotator
}

// NewEngine creates a map engine rendering at the given size.
func NewEngine(provider Provider, tiles *Manager, width, height int, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		viewport:     NewViewport(width, height),
		tiles:        tiles,
		provider:     provider,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		markerRadius: defaultMarkerRadius,
	}
	for _, opt := range opts {
		opt(e)
	}

	ann, err := newAnnotator(e.fontData)
	if err != nil {
		return nil, err
	}
	e.ann = ann
	return e, nil
}

// Viewport exposes the engine's viewport.
func (e *Engine) Viewport() *Viewport { return e.viewport }

// SetProvider switches the tile provider. Cached tiles for other
// providers stay cached.
func (e *Engine) SetProvider(p Provider) { e.provider = p }

// SetMarkers replaces the marker set. Hover and selection survive the
// swap when a marker with the same identity is still present.
func (e *Engine) SetMarkers(markers []Marker) {
	e.markers = markers
	if e.hoveredOK && !e.hasMarker(e.hoveredID) {
		e.hoveredOK = false
	}
	if e.selectedOK && !e.hasMarker(e.selectedID) {
		e.selectedOK = false
	}
	e.updateHover()
}

// Markers returns the current marker set.
func (e *Engine) Markers() []Marker { return e.markers }

func (e *Engine) hasMarker(id uint64) bool {
	for _, m := range e.markers {
		if m.ID() == id {
			return true
		}
	}
	return false
}

// Resize changes the output size.
func (e *Engine) Resize(width, height int) {
	e.viewport.Width = width
	e.viewport.Height = height
}

// Pan shifts the view by a pointer drag in screen pixels.
func (e *Engine) Pan(dx, dy float64) {
	e.viewport.Pan(dx, dy)
	e.updateHover()
}

// ZoomBy changes zoom around the viewport center.
func (e *Engine) ZoomBy(delta float64) {
	e.viewport.ZoomBy(delta)
	e.updateHover()
}

// DoubleClick resets the view to the whole world.
func (e *Engine) DoubleClick() {
	e.viewport.Reset()
	e.updateHover()
}

// PointerMoved tracks the pointer for hovering.
func (e *Engine) PointerMoved(x, y float64) {
	e.pointer = Point{X: x, Y: y}
	e.pointerIn = true
	e.updateHover()
}

// PointerLeft clears the hover state when the pointer leaves the map.
func (e *Engine) PointerLeft() {
	e.pointerIn = false
	e.hoveredOK = false
}

// Click toggles selection of the marker under the pointer. Clicking
// empty map clears the selection.
func (e *Engine) Click(x, y float64) {
	e.PointerMoved(x, y)
	m, ok := e.hitTest(Point{X: x, Y: y})
	if !ok {
		e.selectedOK = false
		return
	}
	if e.selectedOK && e.selectedID == m.ID() {
		e.selectedOK = false
		return
	}
	e.selectedID = m.ID()
	e.selectedOK = true
}

// Hovered returns the hovered marker, if any.
func (e *Engine) Hovered() (Marker, bool) { return e.markerByID(e.hoveredID, e.hoveredOK) }

// Selected returns the selected marker, if any.
func (e *Engine) Selected() (Marker, bool) { return e.markerByID(e.selectedID, e.selectedOK) }

func (e *Engine) markerByID(id uint64, ok bool) (Marker, bool) {
	if !ok {
		return nil, false
	}
	for _, m := range e.markers {
		if m.ID() == id {
			return m, true
		}
	}
	return nil, false
}

func (e *Engine) updateHover() {
	if !e.pointerIn {
		e.hoveredOK = false
		return
	}
	m, ok := e.hitTest(e.pointer)
	if !ok {
		e.hoveredOK = false
		return
	}
	e.hoveredID = m.ID()
	e.hoveredOK = true
}

// hitTest returns the topmost marker whose disc covers p. Markers draw
// in slice order, so the scan runs back to front.
func (e *Engine) hitTest(p Point) (Marker, bool) {
	r2 := e.markerRadius * e.markerRadius
	for i := len(e.markers) - 1; i >= 0; i-- {
		m := e.markers[i]
		pos := e.viewport.ScreenPos(m.Location())
		dx, dy := p.X-pos.X, p.Y-pos.Y
		if dx*dx+dy*dy <= r2 {
			return m, true
		}
	}
	return nil, false
}

// Render composes the current frame.
func (e *Engine) Render(ctx context.Context) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, e.viewport.Width, e.viewport.Height))

	e.renderTiles(ctx, img)
	e.renderMarkers(img)
	e.renderPanel(img)

	e.ann.drawString(img, 8, e.viewport.Height-8, e.provider.Attribution(), attributionText)
	return img
}

func (e *Engine) renderTiles(ctx context.Context, img *image.RGBA) {
	for id, rect := range e.viewport.VisibleTiles() {
		full := image.Rect(
			int(rect.Min.X+0.5), int(rect.Min.Y+0.5),
			int(rect.Max.X+0.5), int(rect.Max.Y+0.5),
		)
		dst := full.Intersect(img.Bounds())
		if dst.Empty() {
			continue
		}

		tile := e.tiles.Get(ctx, e.provider, id)
		switch tile.State {
		case TileReady:
			// Scale the whole tile into its fractional-zoom scaled
			// screen rectangle. The rasterizer clips to the frame.
			xdraw.ApproxBiLinear.Scale(img, full, tile.Image, tile.Image.Bounds(), xdraw.Src, nil)
		case TileFailed:
			draw.Draw(img, dst, image.NewUniform(failedTileFill), image.Point{}, draw.Src)
		default:
			draw.Draw(img, dst, image.NewUniform(pendingTileFill), image.Point{}, draw.Src)
		}
	}
}

func (e *Engine) renderMarkers(img *image.RGBA) {
	margin := e.markerRadius
	for _, m := range e.markers {
		pos := e.viewport.ScreenPos(m.Location())
		if pos.X < -margin || pos.Y < -margin ||
			pos.X > float64(e.viewport.Width)+margin || pos.Y > float64(e.viewport.Height)+margin {
			continue
		}
		drawDisc(img, pos, e.markerRadius, m.Color())
	}
}

// renderPanel draws the connecting line and detail panel for the
// hovered marker, or the selected one when nothing is hovered.
func (e *Engine) renderPanel(img *image.RGBA) {
	m, ok := e.Hovered()
	if !ok {
		m, ok = e.Selected()
	}
	if !ok {
		return
	}

	pos := e.viewport.ScreenPos(m.Location())
	if peer, ok := m.LineTo(); ok {
		drawLine(img, pos, e.viewport.ScreenPos(peer), m.Color())
	}
	e.ann.drawPanel(img, pos, m.Details())
}
