package mapview

import (
	"math"

	"github.com/hamview/hamview/internal/geo"
)

// Viewport is the visible window onto the tiled world. It tracks a
// center tile, a sub-tile pixel offset and a fractional zoom level.
//
// The geographic point under the viewport center sits at the center
// tile's midpoint plus Offset, in effective tile pixels. Panning and
// zooming renormalize so the offset never exceeds half a tile on
// either axis except when clamped at the world edge.
type Viewport struct {
	Center TileID
	Offset Point
	Zoom   float64

	Width, Height int
}

// NewViewport returns a viewport showing the whole world in a window
// of the given size.
func NewViewport(width, height int) *Viewport {
	return &Viewport{Width: width, Height: height}
}

// TileSizePx returns the effective tile edge in pixels. Fractional
// zoom scales the native 256 px tiles up to just under 512 px before
// the next integer zoom level takes over.
func (v *Viewport) TileSizePx() float64 {
	_, frac := math.Modf(v.Zoom)
	return BaseTileSize * (frac + 1)
}

// tileZoom returns the integer zoom level tiles are fetched at.
func (v *Viewport) tileZoom() uint8 {
	z := math.Floor(v.Zoom)
	if z < 0 {
		return 0
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return uint8(z)
}

// Pan shifts the view by a pointer drag of (dx, dy) screen pixels.
// Dragging the map right moves the view west.
func (v *Viewport) Pan(dx, dy float64) {
	v.Offset.X -= dx
	v.Offset.Y -= dy
	v.renormalize()
}

// renormalize walks the center tile toward the offset until the offset
// is within half a tile, clamping at the world edges.
func (v *Viewport) renormalize() {
	half := v.TileSizePx() / 2
	size := v.TileSizePx()

	for v.Offset.X > half {
		next, ok := v.Center.East()
		if !ok {
			v.Offset.X = half
			break
		}
		v.Center = next
		v.Offset.X -= size
	}
	for v.Offset.X < -half {
		next, ok := v.Center.West()
		if !ok {
			v.Offset.X = -half
			break
		}
		v.Center = next
		v.Offset.X += size
	}
	for v.Offset.Y > half {
		next, ok := v.Center.South()
		if !ok {
			v.Offset.Y = half
			break
		}
		v.Center = next
		v.Offset.Y -= size
	}
	for v.Offset.Y < -half {
		next, ok := v.Center.North()
		if !ok {
			v.Offset.Y = -half
			break
		}
		v.Center = next
		v.Offset.Y += size
	}
}

// ZoomBy changes the zoom level by delta while keeping the geographic
// point under the viewport center fixed.
func (v *Viewport) ZoomBy(delta float64) {
	v.SetZoom(v.Zoom + delta)
}

// SetZoom sets the zoom level, clamped to [0, MaxZoom], keeping the
// viewport center fixed.
func (v *Viewport) SetZoom(zoom float64) {
	loc := v.CenterLocation()
	v.Zoom = math.Max(0, math.Min(float64(MaxZoom), zoom))
	v.SetCenterLocation(loc)
}

// Reset returns to the whole-world view.
func (v *Viewport) Reset() {
	v.Zoom = 0
	v.Center = TileID{}
	v.Offset = Point{}
}

// CenterLocation returns the geographic point under the viewport
// center.
func (v *Viewport) CenterLocation() geo.Coord {
	size := v.TileSizePx()
	center := Point{
		X: (float64(v.Center.X)+0.5)*size + v.Offset.X,
		Y: (float64(v.Center.Y)+0.5)*size + v.Offset.Y,
	}
	return unproject(center, v.Center.Zoom, size)
}

// SetCenterLocation moves the viewport so the given point sits under
// its center.
func (v *Viewport) SetCenterLocation(c geo.Coord) {
	zoom := v.tileZoom()
	size := v.TileSizePx()
	g := project(c, zoom, size)

	n := TilesPerAxis(zoom)
	clampTile := func(f float64) uint32 {
		i := math.Floor(f)
		if i < 0 {
			return 0
		}
		if i >= float64(n) {
			return n - 1
		}
		return uint32(i)
	}

	v.Center = TileID{X: clampTile(g.X / size), Y: clampTile(g.Y / size), Zoom: zoom}
	v.Offset = Point{
		X: g.X - (float64(v.Center.X)+0.5)*size,
		Y: g.Y - (float64(v.Center.Y)+0.5)*size,
	}
}

// ScreenPos maps a geographic point to screen pixels for the current
// view.
func (v *Viewport) ScreenPos(c geo.Coord) Point {
	size := v.TileSizePx()
	g := project(c, v.Center.Zoom, size)
	center := Point{
		X: (float64(v.Center.X)+0.5)*size + v.Offset.X,
		Y: (float64(v.Center.Y)+0.5)*size + v.Offset.Y,
	}
	return Point{
		X: float64(v.Width)/2 + g.X - center.X,
		Y: float64(v.Height)/2 + g.Y - center.Y,
	}
}

// ScreenRect returns the viewport's own rectangle in screen pixels.
func (v *Viewport) ScreenRect() Rect {
	return RectFromSize(Point{}, float64(v.Width), float64(v.Height))
}

// centerTileRect returns the center tile's screen rectangle.
func (v *Viewport) centerTileRect() Rect {
	size := v.TileSizePx()
	min := Point{
		X: float64(v.Width)/2 - v.Offset.X - size/2,
		Y: float64(v.Height)/2 - v.Offset.Y - size/2,
	}
	return RectFromSize(min, size, size)
}

// VisibleTiles returns every tile overlapping the viewport, mapped to
// its screen rectangle.
func (v *Viewport) VisibleTiles() map[TileID]Rect {
	return visibleTiles(v.ScreenRect(), v.Center, v.centerTileRect())
}
